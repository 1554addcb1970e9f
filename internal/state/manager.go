// Package state owns the in-memory trip graph for one user session and
// exposes an explicit command API over it. Reorder commands apply
// optimistically before the store confirms the write; every other mutation
// persists first and then refetches. The only recovery mechanism for a
// failed optimistic write is a full resync from the authoritative store;
// optimistic state is never silently reverted without one.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/yuchou/tripledger/internal/models"
	"github.com/yuchou/tripledger/internal/ordering"
	"github.com/yuchou/tripledger/internal/storage"
)

// Manager holds the trip graph for one user. It assumes at most one
// in-flight reorder per scope (the UI serializes drags); concurrent edits
// from other collaborators are not reconciled here: the store stays
// last-write-wins and the manager only self-corrects after its own failed
// writes.
type Manager struct {
	store  storage.Store
	userID string

	mu    sync.RWMutex
	trips []models.Trip
}

// NewManager creates a manager for the given user. Call Resync before the
// first read.
func NewManager(store storage.Store, userID string) *Manager {
	return &Manager{store: store, userID: userID}
}

// Resync replaces the in-memory graph with the authoritative store state.
// It is idempotent and safe to call at any time.
func (m *Manager) Resync(ctx context.Context) error {
	trips, err := m.store.FetchTripGraph(ctx, m.userID)
	if err != nil {
		return fmt.Errorf("failed to fetch trip graph: %w", err)
	}

	m.mu.Lock()
	m.trips = trips
	m.mu.Unlock()
	return nil
}

// Trips returns the current snapshot. The returned trips are safe to read
// while the manager keeps mutating its own state.
func (m *Manager) Trips() []models.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Trip, len(m.trips))
	for i := range m.trips {
		out[i] = snapshotTrip(m.trips[i])
	}
	return out
}

// Trip returns the trip with the given ID from the current snapshot, or
// nil if the user has no such trip.
func (m *Manager) Trip(tripID string) *models.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.trips {
		if m.trips[i].ID == tripID {
			t := snapshotTrip(m.trips[i])
			return &t
		}
	}
	return nil
}

// snapshotTrip copies a trip for use outside the lock. The Days slice must
// be cloned because ReorderItems writes day.Items slots in place; the
// element slices themselves are always replaced wholesale, never mutated,
// so cloning the headers is enough.
func snapshotTrip(t models.Trip) models.Trip {
	t.Days = slices.Clone(t.Days)
	return t
}

// ReorderItems commits a new order for one day's items. The new order must
// contain exactly the day's current items, permuted. The snapshot is
// updated before the store write; if the write fails, the manager resyncs
// from the store and returns the write error, which callers should treat
// as recoverable.
func (m *Manager) ReorderItems(ctx context.Context, tripID, dayID string, newOrder []models.ItineraryItem) error {
	items := make([]models.ItineraryItem, len(newOrder))
	copy(items, newOrder)
	for i := range items {
		items[i].DayID = dayID
	}
	ordering.AssignItemOrder(items)

	m.mu.Lock()
	applied := false
	for i := range m.trips {
		if m.trips[i].ID != tripID {
			continue
		}
		if day := m.trips[i].Day(dayID); day != nil {
			day.Items = items
			applied = true
		}
	}
	m.mu.Unlock()
	if !applied {
		return fmt.Errorf("day not found: %s", dayID)
	}

	if err := m.store.UpsertItems(ctx, dayID, items); err != nil {
		slog.Error("Item reorder write failed, resyncing", "day_id", dayID, "error", err)
		if rerr := m.Resync(ctx); rerr != nil {
			slog.Error("Resync after failed reorder also failed", "error", rerr)
		}
		return fmt.Errorf("failed to persist item order: %w", err)
	}
	return nil
}

// ReorderExpenses commits a new order for one date group's expenses. Other
// date groups in the trip keep their indexes; the merged collection is
// stably re-sorted so each group stays internally ordered.
func (m *Manager) ReorderExpenses(ctx context.Context, tripID string, newOrder []models.Expense) error {
	group := make([]models.Expense, len(newOrder))
	copy(group, newOrder)
	for i := range group {
		group[i].TripID = tripID
	}
	ordering.AssignExpenseOrder(group)

	m.mu.Lock()
	applied := false
	for i := range m.trips {
		if m.trips[i].ID != tripID {
			continue
		}
		m.trips[i].Expenses = ordering.MergeExpenses(m.trips[i].Expenses, group)
		applied = true
	}
	m.mu.Unlock()
	if !applied {
		return fmt.Errorf("trip not found: %s", tripID)
	}

	if err := m.store.UpsertExpenses(ctx, group); err != nil {
		slog.Error("Expense reorder write failed, resyncing", "trip_id", tripID, "error", err)
		if rerr := m.Resync(ctx); rerr != nil {
			slog.Error("Resync after failed reorder also failed", "error", rerr)
		}
		return fmt.Errorf("failed to persist expense order: %w", err)
	}
	return nil
}

// AddTrip creates a trip with one day per calendar day in the range, then
// refetches.
func (m *Manager) AddTrip(ctx context.Context, title, location, startDate, endDate, imageURL string) (*models.Trip, error) {
	trip, err := models.NewTrip(m.userID, title, location, startDate, endDate, imageURL)
	if err != nil {
		return nil, err
	}
	if err := m.store.CreateTrip(ctx, trip); err != nil {
		return nil, err
	}
	return trip, m.Resync(ctx)
}

// DeleteTrip removes a trip and refetches.
func (m *Manager) DeleteTrip(ctx context.Context, tripID string) error {
	if err := m.store.DeleteTrip(ctx, tripID); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// AddItem appends an itinerary item to a day and refetches.
func (m *Manager) AddItem(ctx context.Context, item *models.ItineraryItem) error {
	if err := m.store.CreateItem(ctx, item); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// UpdateItem rewrites an item's fields and refetches.
func (m *Manager) UpdateItem(ctx context.Context, item *models.ItineraryItem) error {
	if err := m.store.UpdateItem(ctx, item); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// DeleteItem removes an item and refetches.
func (m *Manager) DeleteItem(ctx context.Context, itemID string) error {
	if err := m.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// AddExpense appends an expense and refetches. A payer name not yet on the
// trip roster is added to it implicitly.
func (m *Manager) AddExpense(ctx context.Context, expense *models.Expense) error {
	if err := m.store.CreateExpense(ctx, expense); err != nil {
		return err
	}

	if expense.Payer != "" {
		if trip := m.Trip(expense.TripID); trip != nil && !trip.HasPayer(expense.Payer) {
			payer := &models.Payer{TripID: expense.TripID, Name: expense.Payer}
			if err := m.store.CreatePayer(ctx, payer); err != nil {
				slog.Warn("Implicit payer creation failed", "payer", expense.Payer, "error", err)
			}
		}
	}

	return m.Resync(ctx)
}

// UpdateExpense rewrites an expense's fields and refetches.
func (m *Manager) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if err := m.store.UpdateExpense(ctx, expense); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// DeleteExpense removes an expense and refetches.
func (m *Manager) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := m.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// AddPayer adds a participant to a trip roster and refetches.
func (m *Manager) AddPayer(ctx context.Context, tripID, name string) error {
	if err := m.store.CreatePayer(ctx, &models.Payer{TripID: tripID, Name: name}); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// DeletePayer removes a participant and refetches.
func (m *Manager) DeletePayer(ctx context.Context, tripID, name string) error {
	if err := m.store.DeletePayer(ctx, tripID, name); err != nil {
		return err
	}
	return m.Resync(ctx)
}

// RenamePayer renames a participant, cascading to every expense that
// references the old name, then refetches.
func (m *Manager) RenamePayer(ctx context.Context, tripID, oldName, newName string) error {
	if err := m.store.RenamePayer(ctx, tripID, oldName, newName); err != nil {
		return err
	}
	return m.Resync(ctx)
}
