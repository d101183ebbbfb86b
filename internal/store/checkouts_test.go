package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/db"
	"github.com/erazemk/garderoba/internal/model"
)

// Walks the full check-out lifecycle from the dashboard's point of
// view: 3 pirate coats on a rack, loaned out piece by piece and
// brought back.
func TestCheckOutLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 3, location.ID)
	due := time.Now().AddDate(0, 0, 7)

	// Check out 2 to Jane.
	jane, err := CheckOut(ctx, database, costume.ID, "Jane", 2, due)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	got, _ := GetCostume(ctx, database, costume.ID)
	if got.AvailableQuantity() != 1 || got.Status() != model.CostumePartiallyCheckedOut {
		t.Errorf("after first loan: available=%d status=%s", got.AvailableQuantity(), got.Status())
	}

	// Check out the last one to Sam.
	if _, err := CheckOut(ctx, database, costume.ID, "Sam", 1, due); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	got, _ = GetCostume(ctx, database, costume.ID)
	if got.AvailableQuantity() != 0 || got.Status() != model.CostumeCheckedOut {
		t.Errorf("after second loan: available=%d status=%s", got.AvailableQuantity(), got.Status())
	}

	// Nothing left, a third loan must be rejected.
	if _, err := CheckOut(ctx, database, costume.ID, "Ada", 1, due); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty pool, got %v", err)
	}

	// Jane returns both pieces: Sam still has 1 out.
	if err := CheckIn(ctx, database, costume.ID, jane.ID, 2); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	got, _ = GetCostume(ctx, database, costume.ID)
	if got.AvailableQuantity() != 2 || got.Status() != model.CostumePartiallyCheckedOut {
		t.Errorf("after check-in: available=%d status=%s", got.AvailableQuantity(), got.Status())
	}
	if len(got.CheckOuts) != 1 || got.CheckOuts[0].CheckedOutBy != "Sam" {
		t.Errorf("expected only Sam's loan to remain, got %+v", got.CheckOuts)
	}
}

// Check-out followed immediately by a full check-in restores the
// available quantity and removes the loan record.
func TestCheckOutCheckInRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 3, location.ID)

	loan, err := CheckOut(ctx, database, costume.ID, "Jane", 2, time.Now().AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if err := CheckIn(ctx, database, costume.ID, loan.ID, 2); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	got, _ := GetCostume(ctx, database, costume.ID)
	if got.AvailableQuantity() != 3 || got.Status() != model.CostumeAvailable {
		t.Errorf("round trip broke availability: available=%d status=%s", got.AvailableQuantity(), got.Status())
	}
	if len(got.CheckOuts) != 0 {
		t.Errorf("expected loan record removed, got %+v", got.CheckOuts)
	}
}

func TestCheckOutValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 3, location.ID)
	due := time.Now().AddDate(0, 0, 7)

	if _, err := CheckOut(ctx, database, costume.ID, "", 1, due); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty borrower, got %v", err)
	}
	if _, err := CheckOut(ctx, database, costume.ID, "Jane", 0, due); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero quantity, got %v", err)
	}
	if _, err := CheckOut(ctx, database, uuid.New(), "Jane", 1, due); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown costume, got %v", err)
	}
}

// A rejected over-quantity check-out leaves no state change and no
// activity entry behind.
func TestCheckOutOverQuantityLeavesNoTrace(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 3, location.ID)

	before, _ := ListActivity(ctx, database, 0)

	if _, err := CheckOut(ctx, database, costume.ID, "Jane", 4, time.Now().AddDate(0, 0, 7)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	got, _ := GetCostume(ctx, database, costume.ID)
	if got.AvailableQuantity() != 3 || len(got.CheckOuts) != 0 {
		t.Errorf("state changed by rejected check-out: %+v", got)
	}

	after, _ := ListActivity(ctx, database, 0)
	if len(after) != len(before) {
		t.Errorf("activity log grew from %d to %d on a rejected command", len(before), len(after))
	}
}

func TestCheckInValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 3, location.ID)

	loan, _ := CheckOut(ctx, database, costume.ID, "Jane", 2, time.Now().AddDate(0, 0, 7))

	if err := CheckIn(ctx, database, costume.ID, uuid.New(), 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown loan, got %v", err)
	}
	if err := CheckIn(ctx, database, costume.ID, loan.ID, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero quantity, got %v", err)
	}
	if err := CheckIn(ctx, database, costume.ID, loan.ID, 3); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for over-return, got %v", err)
	}

	// A loan belongs to its costume; another costume's ID must not match.
	other := seedCostume(t, database, "Top Hat", 2, location.ID)
	if err := CheckIn(ctx, database, other.ID, loan.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for mismatched costume, got %v", err)
	}
}

func TestPartialCheckInDecrementsLoan(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 3, location.ID)

	loan, _ := CheckOut(ctx, database, costume.ID, "Jane", 3, time.Now().AddDate(0, 0, 7))

	if err := CheckIn(ctx, database, costume.ID, loan.ID, 1); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	got, _ := GetCostume(ctx, database, costume.ID)
	if len(got.CheckOuts) != 1 || got.CheckOuts[0].Quantity != 2 {
		t.Errorf("expected loan decremented to 2, got %+v", got.CheckOuts)
	}
	if got.AvailableQuantity() != 1 {
		t.Errorf("expected 1 available, got %d", got.AvailableQuantity())
	}
}
