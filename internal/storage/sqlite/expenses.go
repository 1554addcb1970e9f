package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/yuchou/tripledger/internal/models"
)

const expenseColumns = "id, trip_id, title, amount, payer, date, category, note, order_index"

// CreateExpense appends a new expense to its trip, placing it after the
// trip's current highest order index.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(order_index) + 1, 0) FROM expenses WHERE trip_id = ?",
		expense.TripID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to get next expense order: %w", err)
	}
	expense.OrderIndex = next

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.TripID, expense.Title, expense.Amount.String(), expense.Payer,
		expense.Date, expense.Category, expense.Note, expense.OrderIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.ID, expense.SplitBy); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateExpense rewrites an expense's editable fields and replaces its
// split set. OrderIndex is not touched here; reordering goes through
// UpsertExpenses.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET title = ?, amount = ?, payer = ?, date = ?, category = ?, note = ? WHERE id = ?`,
		expense.Title, expense.Amount.String(), expense.Payer, expense.Date,
		expense.Category, expense.Note, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense not found: %s", expense.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense.ID, expense.SplitBy); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; its split rows cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense not found: %s", expenseID)
	}
	return nil
}

// UpsertExpenses writes a reordered date group's expenses in one
// transaction, full rows per element so the upsert never nulls columns.
func (s *SQLiteStore) UpsertExpenses(ctx context.Context, expenses []models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range expenses {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   trip_id = excluded.trip_id,
			   title = excluded.title,
			   amount = excluded.amount,
			   payer = excluded.payer,
			   date = excluded.date,
			   category = excluded.category,
			   note = excluded.note,
			   order_index = excluded.order_index`,
			e.ID, e.TripID, e.Title, e.Amount.String(), e.Payer, e.Date, e.Category, e.Note, e.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert expense %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// listExpenses returns a trip's expenses sorted by order index, split sets
// populated.
func (s *SQLiteStore) listExpenses(ctx context.Context, tripID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE trip_id = ? ORDER BY order_index",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var rawAmount string
		if err := rows.Scan(&e.ID, &e.TripID, &e.Title, &rawAmount, &e.Payer,
			&e.Date, &e.Category, &e.Note, &e.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.Amount, err = parseAmount(rawAmount); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		e := &expenses[i]
		splitRows, err := s.db.QueryContext(ctx,
			"SELECT name FROM expense_splits WHERE expense_id = ? ORDER BY position",
			e.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get expense splits: %w", err)
		}
		for splitRows.Next() {
			var name string
			if err := splitRows.Scan(&name); err != nil {
				splitRows.Close()
				return nil, fmt.Errorf("failed to scan expense split: %w", err)
			}
			e.SplitBy = append(e.SplitBy, name)
		}
		splitRows.Close()
		if err := splitRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
		}
	}

	return expenses, nil
}

// insertSplits writes an expense's split set, preserving insertion order.
func insertSplits(ctx context.Context, tx *sql.Tx, expenseID string, splitBy []string) error {
	for i, name := range splitBy {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, position, name) VALUES (?, ?, ?)",
			expenseID, i, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}
	return nil
}
