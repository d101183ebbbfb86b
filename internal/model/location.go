package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Location represents a physical storage place for costumes.
type Location struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Room         string    `json:"room,omitempty"`
	StorageType  string    `json:"storage_type"`
	StorageLabel string    `json:"storage_label,omitempty"`
	ImageMime    string    `json:"image_mime,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Storage types.
const (
	StorageBox     = "box"
	StorageHanging = "hanging"
	StorageShelf   = "shelf"
	StorageRack    = "rack"
	StorageOther   = "other"
)

// ValidStorageType reports whether t is a known storage type.
func ValidStorageType(t string) bool {
	switch t {
	case StorageBox, StorageHanging, StorageShelf, StorageRack, StorageOther:
		return true
	}
	return false
}

// DetailLine composes the display line for a location from its room and
// storage label, e.g. "Attic · Box 3". Falls back to the storage type
// when no label is set. Display only, never part of any invariant.
func (l Location) DetailLine() string {
	storage := l.StorageLabel
	if storage == "" && l.StorageType != StorageOther {
		storage = l.StorageType
	}

	var parts []string
	if l.Room != "" {
		parts = append(parts, l.Room)
	}
	if storage != "" {
		parts = append(parts, storage)
	}
	return strings.Join(parts, " · ")
}
