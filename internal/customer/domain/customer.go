package domain

import "errors"

var ErrCustomerNotFound = errors.New("customer not found")

// Customer identity for order reconciliation is the (Name, Phone) pair, not
// the surrogate ID. Both columns carry a combined unique constraint.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
