package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yuchou/tripledger/internal/models"
)

const itemColumns = "id, day_id, title, start_time, end_time, note, image, order_index"

// CreateItem appends a new itinerary item to its day, placing it after the
// day's current last item.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *models.ItineraryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	var next int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(order_index) + 1, 0) FROM trip_items WHERE day_id = ?",
		item.DayID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to get next item order: %w", err)
	}
	item.OrderIndex = next

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO trip_items ("+itemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.DayID, item.Title, item.StartTime, item.EndTime, item.Note, item.Image, item.OrderIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// UpdateItem rewrites an item's editable fields. OrderIndex is not touched
// here; reordering goes through UpsertItems.
func (s *SQLiteStore) UpdateItem(ctx context.Context, item *models.ItineraryItem) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE trip_items SET title = ?, start_time = ?, end_time = ?, note = ?, image = ? WHERE id = ?`,
		item.Title, item.StartTime, item.EndTime, item.Note, item.Image, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item not found: %s", item.ID)
	}
	return nil
}

// DeleteItem removes an itinerary item.
func (s *SQLiteStore) DeleteItem(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trip_items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item not found: %s", itemID)
	}
	return nil
}

// UpsertItems writes a reordered day's items in one transaction. Each row
// carries its full column set so an upsert never nulls data.
func (s *SQLiteStore) UpsertItems(ctx context.Context, dayID string, items []models.ItineraryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO trip_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   day_id = excluded.day_id,
			   title = excluded.title,
			   start_time = excluded.start_time,
			   end_time = excluded.end_time,
			   note = excluded.note,
			   image = excluded.image,
			   order_index = excluded.order_index`,
			item.ID, dayID, item.Title, item.StartTime, item.EndTime, item.Note, item.Image, item.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// listItems returns a day's items sorted by order index.
func (s *SQLiteStore) listItems(ctx context.Context, dayID string) ([]models.ItineraryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM trip_items WHERE day_id = ? ORDER BY order_index",
		dayID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.ItineraryItem
	for rows.Next() {
		var item models.ItineraryItem
		if err := rows.Scan(&item.ID, &item.DayID, &item.Title, &item.StartTime,
			&item.EndTime, &item.Note, &item.Image, &item.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}
