package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yuchou/tripledger/internal/models"
	"github.com/yuchou/tripledger/internal/storage"
)

// CreatePayer adds a named participant to a trip. Names are unique per
// trip; inserting a duplicate fails.
func (s *SQLiteStore) CreatePayer(ctx context.Context, payer *models.Payer) error {
	if payer.ID == "" {
		payer.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO payers (id, trip_id, name) VALUES (?, ?, ?)",
		payer.ID, payer.TripID, payer.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payer: %w", err)
	}
	return nil
}

// DeletePayer removes a participant from the trip roster. Expenses that
// reference the name keep it; the balance calculator treats such payers as
// dynamically known.
func (s *SQLiteStore) DeletePayer(ctx context.Context, tripID, name string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM payers WHERE trip_id = ? AND name = ?", tripID, name)
	if err != nil {
		return fmt.Errorf("failed to delete payer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("payer not found: %s", name)
	}
	return nil
}

// RenamePayer renames the roster entry and cascades the new name to every
// expense payer reference and split entry, all in one transaction. The new
// name must not already be on the roster; a split set listing both names
// collapses to a single entry for the new name.
func (s *SQLiteStore) RenamePayer(ctx context.Context, tripID, oldName, newName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payers WHERE trip_id = ? AND name = ?",
		tripID, newName,
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check payer name: %w", err)
	}
	if taken > 0 {
		return fmt.Errorf("cannot rename %s to %s: %w", oldName, newName, storage.ErrNameTaken)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE payers SET name = ? WHERE trip_id = ? AND name = ?",
		newName, tripID, oldName,
	)
	if err != nil {
		return fmt.Errorf("failed to rename payer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("payer not found: %s", oldName)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE expenses SET payer = ? WHERE trip_id = ? AND payer = ?",
		newName, tripID, oldName,
	)
	if err != nil {
		return fmt.Errorf("failed to cascade payer rename to expenses: %w", err)
	}

	// OR REPLACE collapses a split that already lists the new name (from a
	// payer deleted off the roster) into a single row instead of failing
	// the primary key.
	_, err = tx.ExecContext(ctx,
		`UPDATE OR REPLACE expense_splits SET name = ?
		 WHERE name = ? AND expense_id IN (SELECT id FROM expenses WHERE trip_id = ?)`,
		newName, oldName, tripID,
	)
	if err != nil {
		return fmt.Errorf("failed to cascade payer rename to splits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// listPayers returns a trip's roster in insertion order.
func (s *SQLiteStore) listPayers(ctx context.Context, tripID string) ([]models.Payer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, name FROM payers WHERE trip_id = ? ORDER BY rowid",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payers: %w", err)
	}
	defer rows.Close()

	var payers []models.Payer
	for rows.Next() {
		var p models.Payer
		if err := rows.Scan(&p.ID, &p.TripID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan payer: %w", err)
		}
		payers = append(payers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payers: %w", err)
	}
	return payers, nil
}
