package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/model"
)

// CreateLocation creates a new storage location. Names don't have to be
// unique, but they must be set.
func CreateLocation(ctx context.Context, db *sql.DB, name, room, storageType, storageLabel string) (*model.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: location name required", ErrValidation)
	}
	if !model.ValidStorageType(storageType) {
		return nil, fmt.Errorf("%w: unknown storage type %q", ErrValidation, storageType)
	}

	id := uuid.New()
	_, err := db.ExecContext(ctx,
		`INSERT INTO locations (id, name, room, storage_type, storage_label)
		 VALUES (?, ?, ?, ?, ?)`,
		id.String(), name, room, storageType, storageLabel,
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	return GetLocation(ctx, db, id)
}

// GetLocation returns a location by ID, or nil if it doesn't exist.
func GetLocation(ctx context.Context, db *sql.DB, id uuid.UUID) (*model.Location, error) {
	l := &model.Location{}
	var rawID string
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, room, storage_type, storage_label, image_mime, created_at
		 FROM locations WHERE id = ?`, id.String(),
	).Scan(&rawID, &l.Name, &l.Room, &l.StorageType, &l.StorageLabel, &imageMime, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}

	l.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parsing location id: %w", err)
	}
	l.ImageMime = imageMime.String
	return l, nil
}

// ListLocations returns all locations ordered by name.
func ListLocations(ctx context.Context, db *sql.DB) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, room, storage_type, storage_label, image_mime, created_at
		 FROM locations ORDER BY name, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		var rawID string
		var imageMime sql.NullString
		if err := rows.Scan(&rawID, &l.Name, &l.Room, &l.StorageType, &l.StorageLabel, &imageMime, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		if l.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing location id: %w", err)
		}
		l.ImageMime = imageMime.String
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// UpdateLocation updates a location's attributes.
func UpdateLocation(ctx context.Context, db *sql.DB, id uuid.UUID, name, room, storageType, storageLabel string) (*model.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: location name required", ErrValidation)
	}
	if !model.ValidStorageType(storageType) {
		return nil, fmt.Errorf("%w: unknown storage type %q", ErrValidation, storageType)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE locations SET name = ?, room = ?, storage_type = ?, storage_label = ?
		 WHERE id = ?`,
		name, room, storageType, storageLabel, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("updating location: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: location %s", ErrNotFound, id)
	}

	return GetLocation(ctx, db, id)
}

// LocationInUse reports whether any costume is stored at the location.
func LocationInUse(ctx context.Context, db *sql.DB, id uuid.UUID) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM costumes WHERE location_id = ?`, id.String(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking location use: %w", err)
	}
	return count > 0, nil
}

// DeleteLocation removes a location. A location referenced by any
// costume can never be deleted directly; reassign or move the costumes
// away first.
func DeleteLocation(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM costumes WHERE location_id = ?`, id.String(),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking location use: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d costumes stored there", ErrLocationInUse, count)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: location %s", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing location delete: %w", err)
	}
	return nil
}

// ReassignCostumes moves every costume stored at from to the target
// location and returns how many were moved. Used as a precursor to
// deleting a location.
func ReassignCostumes(ctx context.Context, db *sql.DB, from, to uuid.UUID) (int, error) {
	if from == to {
		return 0, fmt.Errorf("%w: source and target location are the same", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	target, err := lockLocationName(ctx, tx, to)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE costumes SET location_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE location_id = ?`,
		to.String(), from.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("reassigning costumes: %w", err)
	}

	moved, _ := result.RowsAffected()
	if moved > 0 {
		description := fmt.Sprintf("Moved %d costume(s) to %q", moved, target)
		if err := appendActivity(ctx, tx, model.ActivityCostumeEdited, description); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing reassignment: %w", err)
	}
	return int(moved), nil
}

// SetLocationImage stores a location's image blob.
func SetLocationImage(ctx context.Context, db *sql.DB, id uuid.UUID, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE locations SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id.String(),
	)
	if err != nil {
		return fmt.Errorf("setting location image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: location %s", ErrNotFound, id)
	}
	return nil
}

// GetLocationImage returns a location's image blob and MIME type.
func GetLocationImage(ctx context.Context, db *sql.DB, id uuid.UUID) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM locations WHERE id = ?`, id.String(),
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting location image: %w", err)
	}
	return image, mime.String, nil
}

// lockLocationName resolves a location's name inside a transaction,
// failing with ErrNotFound when the location doesn't exist.
func lockLocationName(ctx context.Context, tx *sql.Tx, id uuid.UUID) (string, error) {
	var name string
	err := tx.QueryRowContext(ctx,
		`SELECT name FROM locations WHERE id = ?`, id.String(),
	).Scan(&name)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: location %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("resolving location: %w", err)
	}
	return name, nil
}
