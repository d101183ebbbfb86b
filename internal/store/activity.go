package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/garderoba/internal/model"
)

// activityRetention bounds the log: only the newest entries are kept,
// pruned on every append.
const activityRetention = 500

// appendActivity records an audit entry as part of the surrounding
// mutation's transaction, so a rolled-back command leaves no trace.
func appendActivity(ctx context.Context, tx *sql.Tx, activityType, description string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO activity (type, description) VALUES (?, ?)`,
		activityType, description,
	)
	if err != nil {
		return fmt.Errorf("appending activity: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM activity WHERE id NOT IN
		 (SELECT id FROM activity ORDER BY id DESC LIMIT ?)`,
		activityRetention,
	)
	if err != nil {
		return fmt.Errorf("pruning activity: %w", err)
	}
	return nil
}

// ListActivity returns the activity log, newest first. A limit of 0 or
// less returns everything still retained.
func ListActivity(ctx context.Context, db *sql.DB, limit int) ([]model.ActivityRecord, error) {
	if limit <= 0 {
		limit = activityRetention
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, type, description, created_at
		 FROM activity ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		var r model.ActivityRecord
		if err := rows.Scan(&r.ID, &r.Type, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ResetAllData unconditionally clears all inventory collections and the
// activity log. Auth tables are left alone.
func ResetAllData(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearInventory(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}

// clearInventory deletes all domain rows in dependency order.
func clearInventory(ctx context.Context, tx *sql.Tx) error {
	tables := []string{
		"activity",
		"assigned_costumes",
		"checkouts",
		"costume_images",
		"costumes",
		"events",
		"locations",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}
