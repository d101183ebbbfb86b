package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/db"
	"github.com/erazemk/garderoba/internal/model"
)

// Every successful mutating command appends exactly one entry of the
// matching type, newest first.
func TestActivityLogPerCommand(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")

	costume, _ := CreateCostume(ctx, database, model.Costume{
		Name: "Pirate Coat", TotalQuantity: 3, LocationID: location.ID,
	})
	assertLatestActivity(t, database, 1, model.ActivityCostumeAdded)

	edited := *costume
	edited.Notes = "missing a button"
	UpdateCostume(ctx, database, edited)
	assertLatestActivity(t, database, 2, model.ActivityCostumeEdited)

	loan, _ := CheckOut(ctx, database, costume.ID, "Jane", 2, time.Now().AddDate(0, 0, 7))
	assertLatestActivity(t, database, 3, model.ActivityCheckedOut)

	CheckIn(ctx, database, costume.ID, loan.ID, 2)
	assertLatestActivity(t, database, 4, model.ActivityCheckedIn)

	event, _ := CreateEvent(ctx, database, model.Event{Name: "Spring Play", Date: time.Now().AddDate(0, 0, 14)})
	assertLatestActivity(t, database, 5, model.ActivityEventAdded)

	UpdateEvent(ctx, database, *event)
	assertLatestActivity(t, database, 6, model.ActivityEventEdited)

	DeleteEvent(ctx, database, event.ID)
	assertLatestActivity(t, database, 7, model.ActivityEventDeleted)

	DeleteCostume(ctx, database, costume.ID)
	assertLatestActivity(t, database, 8, model.ActivityCostumeDeleted)

	// Timestamps never run backwards.
	records, _ := ListActivity(ctx, database, 0)
	for i := 1; i < len(records); i++ {
		if records[i-1].CreatedAt.Before(records[i].CreatedAt) {
			t.Errorf("entry %d is newer than entry %d", i, i-1)
		}
	}
}

func assertLatestActivity(t *testing.T, database *sql.DB, wantCount int, wantType string) {
	t.Helper()
	records, err := ListActivity(context.Background(), database, 0)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(records) != wantCount {
		t.Fatalf("expected %d activity entries, got %d", wantCount, len(records))
	}
	if records[0].Type != wantType {
		t.Errorf("expected newest entry of type %s, got %s", wantType, records[0].Type)
	}
}

func TestActivityRetentionBound(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 1, location.ID)

	// Overflow the retention window with edits.
	for i := 0; i < activityRetention+20; i++ {
		edited := *costume
		edited.Notes = fmt.Sprintf("edit %d", i)
		if _, err := UpdateCostume(ctx, database, edited); err != nil {
			t.Fatalf("UpdateCostume: %v", err)
		}
	}

	records, err := ListActivity(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(records) != activityRetention {
		t.Errorf("expected log bounded at %d entries, got %d", activityRetention, len(records))
	}
	// The survivors are the newest entries.
	if records[0].Description != fmt.Sprintf("Edited costume %q", "Pirate Coat") {
		t.Errorf("unexpected newest entry: %q", records[0].Description)
	}
}

func TestListActivityLimit(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	seedCostume(t, database, "Pirate Coat", 1, location.ID)
	seedCostume(t, database, "Top Hat", 1, location.ID)
	seedCostume(t, database, "Velvet Cape", 1, location.ID)

	records, err := ListActivity(ctx, database, 2)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	if records[0].Description != `Added costume "Velvet Cape" (1 pcs)` {
		t.Errorf("expected newest first, got %q", records[0].Description)
	}
}

func TestResetAllData(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	location := seedLocation(t, database, "Rack A")
	costume := seedCostume(t, database, "Pirate Coat", 3, location.ID)
	CheckOut(ctx, database, costume.ID, "Jane", 1, time.Now().AddDate(0, 0, 7))
	CreateEvent(ctx, database, model.Event{Name: "Spring Play", Date: time.Now().AddDate(0, 0, 14)})

	if err := ResetAllData(ctx, database); err != nil {
		t.Fatalf("ResetAllData: %v", err)
	}

	locations, _ := ListLocations(ctx, database)
	costumes, _ := ListCostumes(ctx, database, uuid.Nil)
	events, _ := ListEvents(ctx, database)
	records, _ := ListActivity(ctx, database, 0)
	if len(locations)+len(costumes)+len(events)+len(records) != 0 {
		t.Errorf("expected empty store, got %d/%d/%d/%d", len(locations), len(costumes), len(events), len(records))
	}
}

// The demo seed must leave the store fully valid: every costume at a
// live location, every loan within bounds.
func TestLoadDemoData(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := LoadDemoData(ctx, database); err != nil {
		t.Fatalf("LoadDemoData: %v", err)
	}

	locations, _ := ListLocations(ctx, database)
	if len(locations) == 0 {
		t.Fatal("expected seeded locations")
	}

	costumes, err := ListCostumes(ctx, database, uuid.Nil)
	if err != nil {
		t.Fatalf("ListCostumes: %v", err)
	}
	if len(costumes) == 0 {
		t.Fatal("expected seeded costumes")
	}
	for _, c := range costumes {
		if c.LocationName == "" {
			t.Errorf("costume %q has no resolvable location", c.Name)
		}
		if available := c.AvailableQuantity(); available < 0 || available > c.TotalQuantity {
			t.Errorf("costume %q violates the quantity invariant: %d of %d", c.Name, available, c.TotalQuantity)
		}
	}

	events, _ := ListEvents(ctx, database)
	if len(events) == 0 {
		t.Fatal("expected seeded events")
	}
	for _, e := range events {
		for _, a := range e.Assigned {
			if a.CostumeName == "" || a.Quantity < 1 {
				t.Errorf("event %q has invalid assignment: %+v", e.Name, a)
			}
		}
	}

	records, _ := ListActivity(ctx, database, 0)
	if len(records) == 0 {
		t.Error("expected seeded activity log")
	}

	// Loading twice replaces rather than duplicates.
	if err := LoadDemoData(ctx, database); err != nil {
		t.Fatalf("second LoadDemoData: %v", err)
	}
	again, _ := ListCostumes(ctx, database, uuid.Nil)
	if len(again) != len(costumes) {
		t.Errorf("demo reload duplicated costumes: %d vs %d", len(again), len(costumes))
	}
}
