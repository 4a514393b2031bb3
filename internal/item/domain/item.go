package domain

import "errors"

var ErrItemNotFound = errors.New("item not found")

// Item identity for order reconciliation is Name alone; Price is whatever was
// stored when the name was first seen and is not touched on reuse.
type Item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
