package validate

import (
	"fmt"
	"strings"

	customerdomain "demo/ordersvc/internal/customer/domain"
	itemdomain "demo/ordersvc/internal/item/domain"
	orderdomain "demo/ordersvc/internal/order/domain"
)

type multiErr []error

func (m multiErr) Error() string {
	var b strings.Builder
	for i, e := range m {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (m multiErr) OrNil() error {
	if len(m) == 0 {
		return nil
	}
	return m
}

// ValidateOrder checks the composite order payload. An empty item list is
// legal; an order without items is still an order.
func ValidateOrder(o orderdomain.Order) error {
	var errs multiErr

	if strings.TrimSpace(o.Customer) == "" {
		errs = append(errs, fmt.Errorf("name: required"))
	}
	if strings.TrimSpace(o.Phone) == "" {
		errs = append(errs, fmt.Errorf("phone: required"))
	}
	if o.Timestamp <= 0 {
		errs = append(errs, fmt.Errorf("timestamp: must be > 0"))
	}
	for i, it := range o.Items {
		if strings.TrimSpace(it.Name) == "" {
			errs = append(errs, fmt.Errorf("items[%d].name: required", i))
		}
		if it.Price < 0 {
			errs = append(errs, fmt.Errorf("items[%d].price: must be >= 0", i))
		}
	}

	return errs.OrNil()
}

func ValidateCustomer(c customerdomain.Customer) error {
	var errs multiErr

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, fmt.Errorf("name: required"))
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs = append(errs, fmt.Errorf("phone: required"))
	}

	return errs.OrNil()
}

func ValidateItem(it itemdomain.Item) error {
	var errs multiErr

	if strings.TrimSpace(it.Name) == "" {
		errs = append(errs, fmt.Errorf("name: required"))
	}
	if it.Price < 0 {
		errs = append(errs, fmt.Errorf("price: must be >= 0"))
	}

	return errs.OrNil()
}
