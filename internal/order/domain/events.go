package domain

const (
	EventOrderCreated = "OrderCreated"
	EventOrderUpdated = "OrderUpdated"
	EventOrderDeleted = "OrderDeleted"
)

// OrderEvent is the outbox payload for creates and updates: a full snapshot
// of the order as submitted, plus the generated order id.
type OrderEvent struct {
	OrderID   int64       `json:"order_id"`
	Timestamp int64       `json:"timestamp"`
	Customer  string      `json:"customer"`
	Phone     string      `json:"phone"`
	Notes     string      `json:"notes"`
	Items     []OrderItem `json:"items"`
}

func NewOrderEvent(orderID int64, o Order) OrderEvent {
	return OrderEvent{
		OrderID:   orderID,
		Timestamp: o.Timestamp,
		Customer:  o.Customer,
		Phone:     o.Phone,
		Notes:     o.Notes,
		Items:     o.Items,
	}
}

type OrderDeleted struct {
	OrderID int64 `json:"order_id"`
}
