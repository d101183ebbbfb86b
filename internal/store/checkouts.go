package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/garderoba/internal/model"
)

// CheckOut loans out pieces of a costume. The quantity must fit within
// what is currently available, and the borrower name must be set.
func CheckOut(ctx context.Context, db *sql.DB, costumeID uuid.UUID, checkedOutBy string, quantity int, dueDate time.Time) (*model.CheckOutInfo, error) {
	if checkedOutBy == "" {
		return nil, fmt.Errorf("%w: borrower name required", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var name string
	var total int
	err = tx.QueryRowContext(ctx,
		`SELECT name, total_quantity FROM costumes WHERE id = ?`, costumeID.String(),
	).Scan(&name, &total)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: costume %s", ErrNotFound, costumeID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving costume: %w", err)
	}

	checkedOut, err := checkedOutQuantity(ctx, tx, costumeID)
	if err != nil {
		return nil, err
	}

	if available := total - checkedOut; quantity > available {
		return nil, fmt.Errorf("%w: only %d of %d available", ErrValidation, available, total)
	}

	id := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO checkouts (id, costume_id, checked_out_by, quantity, due_date)
		 VALUES (?, ?, ?, ?, ?)`,
		id.String(), costumeID.String(), checkedOutBy, quantity, dueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("recording check-out: %w", err)
	}

	description := fmt.Sprintf("Checked out %d of %q to %s", quantity, name, checkedOutBy)
	if err := appendActivity(ctx, tx, model.ActivityCheckedOut, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing check-out: %w", err)
	}

	return getCheckOut(ctx, db, id)
}

// CheckIn returns pieces from an outstanding loan. Returning the full
// remaining quantity closes the loan record entirely; anything less
// just decrements it.
func CheckIn(ctx context.Context, db *sql.DB, costumeID, checkOutID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var remaining int
	var checkedOutBy string
	err = tx.QueryRowContext(ctx,
		`SELECT quantity, checked_out_by FROM checkouts WHERE id = ? AND costume_id = ?`,
		checkOutID.String(), costumeID.String(),
	).Scan(&remaining, &checkedOutBy)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: check-out %s for costume %s", ErrNotFound, checkOutID, costumeID)
	}
	if err != nil {
		return fmt.Errorf("resolving check-out: %w", err)
	}

	if quantity > remaining {
		return fmt.Errorf("%w: only %d still out on this loan", ErrValidation, remaining)
	}

	if quantity == remaining {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM checkouts WHERE id = ?`, checkOutID.String(),
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE checkouts SET quantity = quantity - ? WHERE id = ?`,
			quantity, checkOutID.String(),
		)
	}
	if err != nil {
		return fmt.Errorf("updating check-out: %w", err)
	}

	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM costumes WHERE id = ?`, costumeID.String(),
	).Scan(&name)
	if err != nil {
		return fmt.Errorf("resolving costume: %w", err)
	}

	description := fmt.Sprintf("Checked in %d of %q from %s", quantity, name, checkedOutBy)
	if err := appendActivity(ctx, tx, model.ActivityCheckedIn, description); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing check-in: %w", err)
	}
	return nil
}

// getCheckOut returns a single loan record by ID.
func getCheckOut(ctx context.Context, db *sql.DB, id uuid.UUID) (*model.CheckOutInfo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, costume_id, checked_out_by, quantity, due_date, checked_out_at
		 FROM checkouts WHERE id = ?`, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("getting check-out: %w", err)
	}
	defer rows.Close()

	records, err := scanCheckOuts(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// listCheckOuts returns a costume's outstanding loans, oldest first.
func listCheckOuts(ctx context.Context, db *sql.DB, costumeID uuid.UUID) ([]model.CheckOutInfo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, costume_id, checked_out_by, quantity, due_date, checked_out_at
		 FROM checkouts WHERE costume_id = ?
		 ORDER BY checked_out_at, id`, costumeID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing check-outs: %w", err)
	}
	defer rows.Close()

	return scanCheckOuts(rows)
}

// listAllCheckOuts returns every outstanding loan, oldest first.
func listAllCheckOuts(ctx context.Context, db *sql.DB) ([]model.CheckOutInfo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, costume_id, checked_out_by, quantity, due_date, checked_out_at
		 FROM checkouts ORDER BY checked_out_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing check-outs: %w", err)
	}
	defer rows.Close()

	return scanCheckOuts(rows)
}

func scanCheckOuts(rows *sql.Rows) ([]model.CheckOutInfo, error) {
	var records []model.CheckOutInfo
	for rows.Next() {
		var co model.CheckOutInfo
		var rawID, rawCostumeID string
		if err := rows.Scan(&rawID, &rawCostumeID, &co.CheckedOutBy, &co.Quantity, &co.DueDate, &co.CheckedOutAt); err != nil {
			return nil, fmt.Errorf("scanning check-out: %w", err)
		}
		var err error
		if co.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing check-out id: %w", err)
		}
		if co.CostumeID, err = uuid.Parse(rawCostumeID); err != nil {
			return nil, fmt.Errorf("parsing costume id: %w", err)
		}
		records = append(records, co)
	}
	return records, rows.Err()
}

// checkedOutQuantity sums a costume's outstanding loans inside a transaction.
func checkedOutQuantity(ctx context.Context, tx *sql.Tx, costumeID uuid.UUID) (int, error) {
	var total int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM checkouts WHERE costume_id = ?`,
		costumeID.String(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing check-outs: %w", err)
	}
	return total, nil
}
