package model

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a scheduled occasion that reserves costumes.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Date      time.Time         `json:"date"`
	AllDay    bool              `json:"all_day"`
	Completed bool              `json:"completed"`
	Organizer string            `json:"organizer,omitempty"`
	Assigned  []AssignedCostume `json:"assigned_costumes,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Icon      string            `json:"icon,omitempty"`
	ImageMime string            `json:"image_mime,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AssignedCostume is a line-item reservation within an event. The
// costume name is a snapshot taken at assignment time, so the line
// survives later renames and deletions of the costume itself.
// Assignments are advisory bookkeeping: their quantities are tracked
// independently of the check-out pool and are not capped against
// current availability.
type AssignedCostume struct {
	ID          uuid.UUID  `json:"id"`
	CostumeID   *uuid.UUID `json:"costume_id,omitempty"` // nil once the costume is deleted
	CostumeName string     `json:"costume_name"`
	Quantity    int        `json:"quantity"`
}

// Event statuses, derived from the date and completed flag.
const (
	EventUpcoming = "upcoming"
	EventOngoing  = "ongoing"
	EventDone     = "done"
)

// StatusAt derives the event status at the given time: done when the
// completed flag is set, ongoing on the event day itself, upcoming
// before that. A past event that was never marked completed also reads
// as done, so it drops off upcoming lists once its day has passed.
func (e Event) StatusAt(now time.Time) string {
	if e.Completed {
		return EventDone
	}
	if sameDay(e.Date, now) {
		return EventOngoing
	}
	if e.Date.After(now) {
		return EventUpcoming
	}
	return EventDone
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
