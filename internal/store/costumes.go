package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/model"
)

// CreateCostume inserts a new costume. The referenced location must
// resolve to a live record and the total quantity must be at least 1.
func CreateCostume(ctx context.Context, db *sql.DB, c model.Costume) (*model.Costume, error) {
	if err := validateCostume(c); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireLocation(ctx, tx, c.LocationID); err != nil {
		return nil, err
	}

	id := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO costumes (id, name, size, color, category, total_quantity, location_id, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), c.Name, c.Size, c.Color, c.Category, c.TotalQuantity, c.LocationID.String(), c.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("creating costume: %w", err)
	}

	description := fmt.Sprintf("Added costume %q (%d pcs)", c.Name, c.TotalQuantity)
	if err := appendActivity(ctx, tx, model.ActivityCostumeAdded, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing costume: %w", err)
	}

	return GetCostume(ctx, db, id)
}

// GetCostume resolves the current record for a costume, including its
// outstanding check-outs. Returns nil if the ID doesn't resolve, which
// callers holding stale copies after edits must handle.
func GetCostume(ctx context.Context, db *sql.DB, id uuid.UUID) (*model.Costume, error) {
	c := &model.Costume{}
	var rawID, rawLocationID string
	err := db.QueryRowContext(ctx,
		`SELECT c.id, c.name, c.size, c.color, c.category, c.total_quantity,
		        c.location_id, c.notes, c.created_at, c.updated_at,
		        l.name AS location_name,
		        (SELECT COUNT(*) FROM costume_images ci WHERE ci.costume_id = c.id) AS image_count
		 FROM costumes c
		 JOIN locations l ON l.id = c.location_id
		 WHERE c.id = ?`, id.String(),
	).Scan(&rawID, &c.Name, &c.Size, &c.Color, &c.Category, &c.TotalQuantity,
		&rawLocationID, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &c.LocationName, &c.ImageCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting costume: %w", err)
	}

	if c.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing costume id: %w", err)
	}
	if c.LocationID, err = uuid.Parse(rawLocationID); err != nil {
		return nil, fmt.Errorf("parsing location id: %w", err)
	}

	c.CheckOuts, err = listCheckOuts(ctx, db, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCostumes returns all costumes with their check-outs, ordered by
// name. A non-nil locationID restricts the list to a single location.
func ListCostumes(ctx context.Context, db *sql.DB, locationID uuid.UUID) ([]model.Costume, error) {
	query := `SELECT c.id, c.name, c.size, c.color, c.category, c.total_quantity,
	                 c.location_id, c.notes, c.created_at, c.updated_at,
	                 l.name AS location_name,
	                 (SELECT COUNT(*) FROM costume_images ci WHERE ci.costume_id = c.id) AS image_count
	          FROM costumes c
	          JOIN locations l ON l.id = c.location_id`
	var args []any

	if locationID != uuid.Nil {
		query += ` WHERE c.location_id = ?`
		args = append(args, locationID.String())
	}
	query += ` ORDER BY c.name, c.created_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing costumes: %w", err)
	}
	defer rows.Close()

	var costumes []model.Costume
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var c model.Costume
		var rawID, rawLocationID string
		if err := rows.Scan(&rawID, &c.Name, &c.Size, &c.Color, &c.Category, &c.TotalQuantity,
			&rawLocationID, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &c.LocationName, &c.ImageCount); err != nil {
			return nil, fmt.Errorf("scanning costume: %w", err)
		}
		if c.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing costume id: %w", err)
		}
		if c.LocationID, err = uuid.Parse(rawLocationID); err != nil {
			return nil, fmt.Errorf("parsing location id: %w", err)
		}
		index[c.ID] = len(costumes)
		costumes = append(costumes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach outstanding check-outs in one pass.
	checkOuts, err := listAllCheckOuts(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, co := range checkOuts {
		if i, ok := index[co.CostumeID]; ok {
			costumes[i].CheckOuts = append(costumes[i].CheckOuts, co)
		}
	}
	return costumes, nil
}

// UpdateCostume replaces a costume's attributes by identifier. The
// check-out list lives in its own table and is never touched by an
// edit, so the quantity invariant is re-checked against the new total.
func UpdateCostume(ctx context.Context, db *sql.DB, c model.Costume) (*model.Costume, error) {
	if err := validateCostume(c); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireLocation(ctx, tx, c.LocationID); err != nil {
		return nil, err
	}

	checkedOut, err := checkedOutQuantity(ctx, tx, c.ID)
	if err != nil {
		return nil, err
	}
	if c.TotalQuantity < checkedOut {
		return nil, fmt.Errorf("%w: %d pieces are checked out, total can't drop below that", ErrValidation, checkedOut)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE costumes SET name = ?, size = ?, color = ?, category = ?,
		        total_quantity = ?, location_id = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		c.Name, c.Size, c.Color, c.Category, c.TotalQuantity, c.LocationID.String(), c.Notes, c.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("updating costume: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: costume %s", ErrNotFound, c.ID)
	}

	description := fmt.Sprintf("Edited costume %q", c.Name)
	if err := appendActivity(ctx, tx, model.ActivityCostumeEdited, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing costume update: %w", err)
	}

	return GetCostume(ctx, db, c.ID)
}

// DeleteCostume removes a costume unconditionally. Outstanding
// check-outs and images go with it; event assignments keep their
// snapshot name but lose the live reference.
func DeleteCostume(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM costumes WHERE id = ?`, id.String(),
	).Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: costume %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("resolving costume: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM costumes WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting costume: %w", err)
	}

	description := fmt.Sprintf("Deleted costume %q", name)
	if err := appendActivity(ctx, tx, model.ActivityCostumeDeleted, description); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing costume delete: %w", err)
	}
	return nil
}

// MoveCostumes reassigns the given costumes to the target location and
// returns how many actually moved. Costumes already at the target, or
// IDs that don't resolve, are silently skipped. One summary activity
// entry covers the whole move.
func MoveCostumes(ctx context.Context, db *sql.DB, costumeIDs []uuid.UUID, toLocationID uuid.UUID) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	target, err := lockLocationName(ctx, tx, toLocationID)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, id := range costumeIDs {
		result, err := tx.ExecContext(ctx,
			`UPDATE costumes SET location_id = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND location_id <> ?`,
			toLocationID.String(), id.String(), toLocationID.String(),
		)
		if err != nil {
			return 0, fmt.Errorf("moving costume: %w", err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			moved++
		}
	}

	if moved > 0 {
		description := fmt.Sprintf("Moved %d costume(s) to %q", moved, target)
		if err := appendActivity(ctx, tx, model.ActivityCostumeEdited, description); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing move: %w", err)
	}
	return moved, nil
}

// AddCostumeImage appends an image blob to a costume's ordered image
// list and returns its position.
func AddCostumeImage(ctx context.Context, db *sql.DB, costumeID uuid.UUID, image []byte, mime string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM costumes WHERE id = ?`, costumeID.String(),
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("resolving costume: %w", err)
	}
	if exists == 0 {
		return 0, fmt.Errorf("%w: costume %s", ErrNotFound, costumeID)
	}

	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM costume_images WHERE costume_id = ?`,
		costumeID.String(),
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("finding image position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO costume_images (costume_id, position, image, image_mime) VALUES (?, ?, ?, ?)`,
		costumeID.String(), position, image, mime,
	)
	if err != nil {
		return 0, fmt.Errorf("adding costume image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing costume image: %w", err)
	}
	return position, nil
}

// GetCostumeImage returns the image blob at the given position of a
// costume's image list.
func GetCostumeImage(ctx context.Context, db *sql.DB, costumeID uuid.UUID, position int) ([]byte, string, error) {
	var image []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM costume_images WHERE costume_id = ? AND position = ?`,
		costumeID.String(), position,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting costume image: %w", err)
	}
	return image, mime, nil
}

// validateCostume checks the field-level rules shared by create and update.
func validateCostume(c model.Costume) error {
	if c.Name == "" {
		return fmt.Errorf("%w: costume name required", ErrValidation)
	}
	if c.TotalQuantity < 1 {
		return fmt.Errorf("%w: total quantity must be at least 1", ErrValidation)
	}
	return nil
}

// requireLocation fails with ErrValidation when the referenced location
// doesn't resolve. A costume always points at a live location record.
func requireLocation(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM locations WHERE id = ?`, id.String(),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("resolving location: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: location %s does not exist", ErrValidation, id)
	}
	return nil
}
