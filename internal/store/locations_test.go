package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/garderoba/internal/db"
	"github.com/erazemk/garderoba/internal/model"
)

func TestCreateAndGetLocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	location, err := CreateLocation(ctx, database, "Rack A", "Backstage", model.StorageRack, "Rack A")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	if location.Name != "Rack A" || location.StorageType != model.StorageRack {
		t.Errorf("unexpected location: %+v", location)
	}

	got, err := GetLocation(ctx, database, location.ID)
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if got == nil || got.ID != location.ID {
		t.Errorf("expected to resolve location %s, got %+v", location.ID, got)
	}
}

func TestCreateLocationValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateLocation(ctx, database, "", "Attic", model.StorageBox, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty name, got %v", err)
	}
	if _, err := CreateLocation(ctx, database, "Boxes", "Attic", "drawer", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown storage type, got %v", err)
	}
}

func TestDeleteLocationBlockedWhileInUse(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	l1, _ := CreateLocation(ctx, database, "Rack A", "Backstage", model.StorageRack, "")
	l2, _ := CreateLocation(ctx, database, "Boxes", "Attic", model.StorageBox, "Box 1")

	costume, err := CreateCostume(ctx, database, model.Costume{
		Name: "Pirate Coat", TotalQuantity: 3, LocationID: l1.ID,
	})
	if err != nil {
		t.Fatalf("CreateCostume: %v", err)
	}

	inUse, err := LocationInUse(ctx, database, l1.ID)
	if err != nil || !inUse {
		t.Fatalf("expected location in use, got %v (%v)", inUse, err)
	}

	// Delete must fail and change nothing.
	if err := DeleteLocation(ctx, database, l1.ID); !errors.Is(err, ErrLocationInUse) {
		t.Fatalf("expected ErrLocationInUse, got %v", err)
	}
	if got, _ := GetLocation(ctx, database, l1.ID); got == nil {
		t.Fatal("location disappeared after blocked delete")
	}
	if got, _ := GetCostume(ctx, database, costume.ID); got == nil {
		t.Fatal("costume disappeared after blocked delete")
	}

	// After reassigning everything away, the same delete succeeds.
	moved, err := ReassignCostumes(ctx, database, l1.ID, l2.ID)
	if err != nil {
		t.Fatalf("ReassignCostumes: %v", err)
	}
	if moved != 1 {
		t.Errorf("expected 1 costume reassigned, got %d", moved)
	}

	if err := DeleteLocation(ctx, database, l1.ID); err != nil {
		t.Fatalf("DeleteLocation after reassign: %v", err)
	}
	if got, _ := GetLocation(ctx, database, l1.ID); got != nil {
		t.Error("location still present after delete")
	}

	got, _ := GetCostume(ctx, database, costume.ID)
	if got == nil || got.LocationID != l2.ID {
		t.Errorf("expected costume at %s, got %+v", l2.ID, got)
	}
}

func TestDeleteLocationNotFound(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	l, _ := CreateLocation(ctx, database, "Shelf", "Cellar", model.StorageShelf, "")
	if err := DeleteLocation(ctx, database, l.ID); err != nil {
		t.Fatalf("DeleteLocation: %v", err)
	}
	if err := DeleteLocation(ctx, database, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestReassignCostumesRejectsSameLocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	l, _ := CreateLocation(ctx, database, "Rack A", "Backstage", model.StorageRack, "")
	if _, err := ReassignCostumes(ctx, database, l.ID, l.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestLocationImageRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	l, _ := CreateLocation(ctx, database, "Rack A", "Backstage", model.StorageRack, "")
	blob := []byte{0xff, 0xd8, 0xff, 0xe0}

	if err := SetLocationImage(ctx, database, l.ID, blob, "image/jpeg"); err != nil {
		t.Fatalf("SetLocationImage: %v", err)
	}

	data, mime, err := GetLocationImage(ctx, database, l.ID)
	if err != nil {
		t.Fatalf("GetLocationImage: %v", err)
	}
	if mime != "image/jpeg" || len(data) != len(blob) {
		t.Errorf("unexpected image: mime=%s len=%d", mime, len(data))
	}
}
