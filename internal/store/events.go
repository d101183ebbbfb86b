package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/model"
)

// CreateEvent inserts a new event together with its assigned-costume
// list. Each assignment snapshots the costume's current name.
func CreateEvent(ctx context.Context, db *sql.DB, e model.Event) (*model.Event, error) {
	if err := validateEvent(e); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, name, date, all_day, completed, organizer, notes, icon)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), e.Name, e.Date, e.AllDay, e.Completed, e.Organizer, e.Notes, e.Icon,
	)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	if err := replaceAssignments(ctx, tx, id, e.Assigned); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Added event %q", e.Name)
	if err := appendActivity(ctx, tx, model.ActivityEventAdded, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing event: %w", err)
	}

	return GetEvent(ctx, db, id)
}

// GetEvent returns an event with its assignment list, or nil if absent.
func GetEvent(ctx context.Context, db *sql.DB, id uuid.UUID) (*model.Event, error) {
	e := &model.Event{}
	var rawID string
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, date, all_day, completed, organizer, notes, icon, image_mime, created_at, updated_at
		 FROM events WHERE id = ?`, id.String(),
	).Scan(&rawID, &e.Name, &e.Date, &e.AllDay, &e.Completed, &e.Organizer, &e.Notes, &e.Icon,
		&imageMime, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}

	if e.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing event id: %w", err)
	}
	e.ImageMime = imageMime.String

	if e.Assigned, err = listAssignments(ctx, db, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEvents returns all events ordered by date, assignments included.
func ListEvents(ctx context.Context, db *sql.DB) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, date, all_day, completed, organizer, notes, icon, image_mime, created_at, updated_at
		 FROM events ORDER BY date, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	for i := range events {
		if events[i].Assigned, err = listAssignments(ctx, db, events[i].ID); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// UpdateEvent replaces an event by identifier, including a wholesale
// replacement of its assigned-costume list.
func UpdateEvent(ctx context.Context, db *sql.DB, e model.Event) (*model.Event, error) {
	if err := validateEvent(e); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE events SET name = ?, date = ?, all_day = ?, completed = ?,
		        organizer = ?, notes = ?, icon = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Name, e.Date, e.AllDay, e.Completed, e.Organizer, e.Notes, e.Icon, e.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, e.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM assigned_costumes WHERE event_id = ?`, e.ID.String(),
	); err != nil {
		return nil, fmt.Errorf("clearing assignments: %w", err)
	}
	if err := replaceAssignments(ctx, tx, e.ID, e.Assigned); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Edited event %q", e.Name)
	if err := appendActivity(ctx, tx, model.ActivityEventEdited, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing event update: %w", err)
	}

	return GetEvent(ctx, db, e.ID)
}

// DeleteEvent removes an event and its reservations. Costumes are
// unaffected beyond losing the reservation.
func DeleteEvent(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM events WHERE id = ?`, id.String(),
	).Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("resolving event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	description := fmt.Sprintf("Deleted event %q", name)
	if err := appendActivity(ctx, tx, model.ActivityEventDeleted, description); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing event delete: %w", err)
	}
	return nil
}

// AssignedEvents returns every event whose assignment list references
// the costume, ordered by date.
func AssignedEvents(ctx context.Context, db *sql.DB, costumeID uuid.UUID) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, date, all_day, completed, organizer, notes, icon, image_mime, created_at, updated_at
		 FROM events
		 WHERE id IN (SELECT event_id FROM assigned_costumes WHERE costume_id = ?)
		 ORDER BY date, created_at`, costumeID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing assigned events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	for i := range events {
		if events[i].Assigned, err = listAssignments(ctx, db, events[i].ID); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// SetEventImage stores an event's image blob.
func SetEventImage(ctx context.Context, db *sql.DB, id uuid.UUID, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE events SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id.String(),
	)
	if err != nil {
		return fmt.Errorf("setting event image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	return nil
}

// GetEventImage returns an event's image blob and MIME type.
func GetEventImage(ctx context.Context, db *sql.DB, id uuid.UUID) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM events WHERE id = ?`, id.String(),
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting event image: %w", err)
	}
	return image, mime.String, nil
}

// replaceAssignments inserts an event's assignment list, snapshotting
// live costume names. Assignment quantities are advisory and are not
// capped against availability.
func replaceAssignments(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, assigned []model.AssignedCostume) error {
	for i, a := range assigned {
		if a.Quantity < 1 {
			return fmt.Errorf("%w: assignment quantity must be at least 1", ErrValidation)
		}
		if a.CostumeID == nil {
			return fmt.Errorf("%w: assignment needs a costume reference", ErrValidation)
		}

		var name string
		err := tx.QueryRowContext(ctx,
			`SELECT name FROM costumes WHERE id = ?`, a.CostumeID.String(),
		).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: assigned costume %s does not exist", ErrValidation, a.CostumeID)
		}
		if err != nil {
			return fmt.Errorf("resolving assigned costume: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO assigned_costumes (id, event_id, costume_id, costume_name, quantity, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), eventID.String(), a.CostumeID.String(), name, a.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("inserting assignment: %w", err)
		}
	}
	return nil
}

// listAssignments returns an event's assignment list in order.
func listAssignments(ctx context.Context, db *sql.DB, eventID uuid.UUID) ([]model.AssignedCostume, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, costume_id, costume_name, quantity
		 FROM assigned_costumes WHERE event_id = ? ORDER BY position`, eventID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var assigned []model.AssignedCostume
	for rows.Next() {
		var a model.AssignedCostume
		var rawID string
		var rawCostumeID sql.NullString
		if err := rows.Scan(&rawID, &rawCostumeID, &a.CostumeName, &a.Quantity); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		if a.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing assignment id: %w", err)
		}
		if rawCostumeID.Valid {
			costumeID, err := uuid.Parse(rawCostumeID.String)
			if err != nil {
				return nil, fmt.Errorf("parsing assigned costume id: %w", err)
			}
			a.CostumeID = &costumeID
		}
		assigned = append(assigned, a)
	}
	return assigned, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		var e model.Event
		var rawID string
		var imageMime sql.NullString
		if err := rows.Scan(&rawID, &e.Name, &e.Date, &e.AllDay, &e.Completed, &e.Organizer,
			&e.Notes, &e.Icon, &imageMime, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		var err error
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing event id: %w", err)
		}
		e.ImageMime = imageMime.String
		events = append(events, e)
	}
	return events, rows.Err()
}

func validateEvent(e model.Event) error {
	if e.Name == "" {
		return fmt.Errorf("%w: event name required", ErrValidation)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: event date required", ErrValidation)
	}
	return nil
}
