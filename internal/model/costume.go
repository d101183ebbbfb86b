package model

import (
	"time"

	"github.com/google/uuid"
)

// Costume represents a quantity-tracked inventory item stored at a location.
type Costume struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Size          string         `json:"size,omitempty"`
	Color         string         `json:"color,omitempty"`
	Category      string         `json:"category,omitempty"`
	TotalQuantity int            `json:"total_quantity"`
	LocationID    uuid.UUID      `json:"location_id"`
	Notes         string         `json:"notes,omitempty"`
	CheckOuts     []CheckOutInfo `json:"check_outs,omitempty"`
	ImageCount    int            `json:"image_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Joined fields (not always populated).
	LocationName string `json:"location_name,omitempty"`
}

// CheckOutInfo is a single outstanding loan against a costume.
type CheckOutInfo struct {
	ID           uuid.UUID `json:"id"`
	CostumeID    uuid.UUID `json:"costume_id"`
	CheckedOutBy string    `json:"checked_out_by"`
	Quantity     int       `json:"quantity"`
	DueDate      time.Time `json:"due_date"`
	CheckedOutAt time.Time `json:"checked_out_at"`
}

// Costume statuses, derived from quantities and never stored.
const (
	CostumeAvailable           = "available"
	CostumePartiallyCheckedOut = "partiallyCheckedOut"
	CostumeCheckedOut          = "checkedOut"
)

// CheckedOutQuantity returns the total quantity currently on loan.
func (c Costume) CheckedOutQuantity() int {
	total := 0
	for _, co := range c.CheckOuts {
		total += co.Quantity
	}
	return total
}

// AvailableQuantity returns how many pieces are left to check out.
// Always within [0, TotalQuantity] as long as the store's quantity
// invariant holds.
func (c Costume) AvailableQuantity() int {
	return c.TotalQuantity - c.CheckedOutQuantity()
}

// Status derives the costume status from its quantities.
func (c Costume) Status() string {
	switch available := c.AvailableQuantity(); {
	case available == c.TotalQuantity:
		return CostumeAvailable
	case available == 0:
		return CostumeCheckedOut
	default:
		return CostumePartiallyCheckedOut
	}
}
