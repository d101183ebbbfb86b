package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/model"
)

// LoadDemoData replaces all inventory state with a fixed seed dataset
// for first-run and demo purposes. The seed satisfies every store
// invariant: all costumes resolve to live locations and no check-out
// exceeds its costume's quantity.
func LoadDemoData(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearInventory(ctx, tx); err != nil {
		return err
	}

	rackA := uuid.New()
	boxes := uuid.New()
	wardrobe := uuid.New()
	locations := []struct {
		id                              uuid.UUID
		name, room, storageType, label string
	}{
		{rackA, "Rack A", "Backstage", model.StorageRack, "Rack A"},
		{boxes, "Costume Boxes", "Attic", model.StorageBox, "Box 1"},
		{wardrobe, "Wardrobe", "Dressing Room", model.StorageHanging, ""},
	}
	for _, l := range locations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO locations (id, name, room, storage_type, storage_label)
			 VALUES (?, ?, ?, ?, ?)`,
			l.id.String(), l.name, l.room, l.storageType, l.label,
		)
		if err != nil {
			return fmt.Errorf("seeding location: %w", err)
		}
	}

	pirateCoat := uuid.New()
	victorian := uuid.New()
	costumes := []struct {
		id                          uuid.UUID
		name, size, color, category string
		total                       int
		location                    uuid.UUID
	}{
		{pirateCoat, "Pirate Coat", "M", "Brown", "Historical", 3, rackA},
		{uuid.New(), "Fairy Wings", "One Size", "Iridescent", "Fantasy", 5, boxes},
		{victorian, "Victorian Dress", "S", "Burgundy", "Historical", 2, wardrobe},
		{uuid.New(), "Top Hat", "58", "Black", "Accessories", 4, boxes},
		{uuid.New(), "Velvet Cape", "L", "Red", "Fantasy", 6, rackA},
	}
	for _, c := range costumes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO costumes (id, name, size, color, category, total_quantity, location_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.id.String(), c.name, c.size, c.color, c.category, c.total, c.location.String(),
		)
		if err != nil {
			return fmt.Errorf("seeding costume: %w", err)
		}
	}

	now := time.Now()
	checkouts := []struct {
		costume  uuid.UUID
		by       string
		quantity int
		due      time.Time
	}{
		{pirateCoat, "Sam", 1, now.AddDate(0, 0, 7)},
		{victorian, "Jane", 2, now.AddDate(0, 0, 3)},
	}
	for _, co := range checkouts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO checkouts (id, costume_id, checked_out_by, quantity, due_date)
			 VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), co.costume.String(), co.by, co.quantity, co.due,
		)
		if err != nil {
			return fmt.Errorf("seeding check-out: %w", err)
		}
	}

	springPlay := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, name, date, all_day, organizer, icon)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		springPlay.String(), "Spring Play", now.AddDate(0, 0, 14), false, "Ms. Novak", "theatermasks",
	)
	if err != nil {
		return fmt.Errorf("seeding event: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, name, date, all_day, completed, organizer, icon)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), "Winter Parade", now.AddDate(0, -2, 0), true, true, "Parents' Council", "snowflake",
	)
	if err != nil {
		return fmt.Errorf("seeding event: %w", err)
	}

	assignments := []struct {
		costume  uuid.UUID
		name     string
		quantity int
		position int
	}{
		{pirateCoat, "Pirate Coat", 2, 0},
		{victorian, "Victorian Dress", 1, 1},
	}
	for _, a := range assignments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assigned_costumes (id, event_id, costume_id, costume_name, quantity, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), springPlay.String(), a.costume.String(), a.name, a.quantity, a.position,
		)
		if err != nil {
			return fmt.Errorf("seeding assignment: %w", err)
		}
	}

	seedActivity := []struct {
		activityType, description string
	}{
		{model.ActivityCostumeAdded, `Added costume "Pirate Coat" (3 pcs)`},
		{model.ActivityCostumeAdded, `Added costume "Victorian Dress" (2 pcs)`},
		{model.ActivityCheckedOut, `Checked out 1 of "Pirate Coat" to Sam`},
		{model.ActivityCheckedOut, `Checked out 2 of "Victorian Dress" to Jane`},
		{model.ActivityEventAdded, `Added event "Spring Play"`},
	}
	for _, a := range seedActivity {
		if err := appendActivity(ctx, tx, a.activityType, a.description); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing demo data: %w", err)
	}
	return nil
}
