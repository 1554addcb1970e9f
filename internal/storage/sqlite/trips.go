package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yuchou/tripledger/internal/models"
)

const tripColumns = "id, owner_id, title, location, start_date, end_date, image_url, created_at"

// CreateTrip persists a trip and its pre-built days in one transaction.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trips ("+tripColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		trip.ID, trip.OwnerID, trip.Title, trip.Location, trip.StartDate, trip.EndDate, trip.ImageURL, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	for i := range trip.Days {
		day := &trip.Days[i]
		if day.ID == "" {
			day.ID = uuid.New().String()
		}
		day.TripID = trip.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO trip_days (id, trip_id, day_index, date) VALUES (?, ?, ?, ?)",
			day.ID, day.TripID, day.DayIndex, day.Date,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip day: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteTrip removes a trip; days, items, expenses, payers, shares, and
// invites cascade.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("trip not found: %s", tripID)
	}
	return nil
}

// FetchTripGraph returns the user's owned and shared trips with their full
// graphs, newest first.
func (s *SQLiteStore) FetchTripGraph(ctx context.Context, userID string) ([]models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE owner_id = ?
		 UNION
		 SELECT t.id, t.owner_id, t.title, t.location, t.start_date, t.end_date, t.image_url, t.created_at
		 FROM trips t JOIN trip_shares sh ON sh.trip_id = t.id WHERE sh.user_id = ?
		 ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		if err := scanTrip(rows, &trip); err != nil {
			return nil, err
		}
		trip.IsOwner = trip.OwnerID == userID
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	for i := range trips {
		if err := s.loadTripGraph(ctx, &trips[i]); err != nil {
			return nil, err
		}
	}

	return trips, nil
}

// GetTrip retrieves one trip with its full graph. IsOwner is left false.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tripColumns+" FROM trips WHERE id = ?", tripID)

	trip := &models.Trip{}
	err := scanTrip(row, trip)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip not found: %s", tripID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTripGraph(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner, trip *models.Trip) error {
	err := row.Scan(&trip.ID, &trip.OwnerID, &trip.Title, &trip.Location,
		&trip.StartDate, &trip.EndDate, &trip.ImageURL, &trip.CreatedAt)
	if err == sql.ErrNoRows {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to scan trip: %w", err)
	}
	return nil
}

// loadTripGraph populates days, items, expenses, payers, and shares for one
// trip. Days come back sorted by day index, items and expenses by order
// index, so in-memory slice order always matches the intended sequence.
func (s *SQLiteStore) loadTripGraph(ctx context.Context, trip *models.Trip) error {
	dayRows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, day_index, date FROM trip_days WHERE trip_id = ? ORDER BY day_index",
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get trip days: %w", err)
	}
	defer dayRows.Close()

	trip.Days = nil
	for dayRows.Next() {
		var day models.Day
		if err := dayRows.Scan(&day.ID, &day.TripID, &day.DayIndex, &day.Date); err != nil {
			return fmt.Errorf("failed to scan trip day: %w", err)
		}
		trip.Days = append(trip.Days, day)
	}
	if err := dayRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate trip days: %w", err)
	}

	for i := range trip.Days {
		day := &trip.Days[i]
		day.Items, err = s.listItems(ctx, day.ID)
		if err != nil {
			return err
		}
	}

	trip.Expenses, err = s.listExpenses(ctx, trip.ID)
	if err != nil {
		return err
	}

	trip.Payers, err = s.listPayers(ctx, trip.ID)
	if err != nil {
		return err
	}

	trip.Shares, err = s.listShares(ctx, trip.ID)
	if err != nil {
		return err
	}

	return nil
}

// parseAmount converts a stored amount column back to a decimal.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse stored amount %q: %w", raw, err)
	}
	return amount, nil
}
