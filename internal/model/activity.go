package model

import "time"

// ActivityRecord is an audit log entry appended by the store on every
// externally meaningful mutation. Read-only to callers.
type ActivityRecord struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity types.
const (
	ActivityCostumeAdded   = "costumeAdded"
	ActivityCostumeEdited  = "costumeEdited"
	ActivityCostumeDeleted = "costumeDeleted"
	ActivityCheckedIn      = "checkedIn"
	ActivityCheckedOut     = "checkedOut"
	ActivityEventAdded     = "eventAdded"
	ActivityEventEdited    = "eventEdited"
	ActivityEventDeleted   = "eventDeleted"
)
