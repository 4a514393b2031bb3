package domain

import "errors"

var ErrOrderNotFound = errors.New("order not found")

// Order is the composite aggregate as the API sees it: the customer is
// referenced by natural key (Customer, Phone), items by name. Surrogate ids
// are filled in on reads.
type Order struct {
	ID        int64       `json:"id"`
	Timestamp int64       `json:"timestamp"`
	Customer  string      `json:"customer"`
	Phone     string      `json:"phone"`
	Notes     string      `json:"notes"`
	Items     []OrderItem `json:"items"`
}

type OrderItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
