// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/yuchou/tripledger/internal/models"
)

// ErrNameTaken is returned by RenamePayer when the new name already exists
// on the trip's roster.
var ErrNameTaken = errors.New("payer name already in use")

// Store defines the persistence operations the rest of the application
// depends on. This abstraction allows swapping storage backends (SQLite,
// PostgreSQL, etc.) without changing the service or state layers.
type Store interface {
	// FetchTripGraph returns all trips the user owns or has been granted a
	// share on, with Days (and their Items), Expenses, Payers, and Shares
	// populated. Days are sorted by day index and Items and Expenses by
	// order index, so callers can rely on slice order.
	FetchTripGraph(ctx context.Context, userID string) ([]models.Trip, error)

	// GetTrip retrieves a single trip with its full graph. IsOwner is left
	// false; callers that know the viewer should derive it.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// CreateTrip persists a trip together with its pre-built Days in one
	// transaction.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// DeleteTrip removes a trip; owned rows cascade.
	DeleteTrip(ctx context.Context, tripID string) error

	// CreateItem persists a new itinerary item, assigning the next order
	// index within its day. The item.ID field is populated if empty.
	CreateItem(ctx context.Context, item *models.ItineraryItem) error

	UpdateItem(ctx context.Context, item *models.ItineraryItem) error
	DeleteItem(ctx context.Context, itemID string) error

	// UpsertItems writes a reordered day's items in one transaction. Every
	// element carries its full row so an upsert by primary key never nulls
	// columns.
	UpsertItems(ctx context.Context, dayID string, items []models.ItineraryItem) error

	// CreateExpense persists a new expense, assigning the next order index
	// within its trip. The expense.ID field is populated if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error

	// UpsertExpenses writes a reordered date group's expenses in one
	// transaction, full rows per element as with UpsertItems.
	UpsertExpenses(ctx context.Context, expenses []models.Expense) error

	CreatePayer(ctx context.Context, payer *models.Payer) error
	DeletePayer(ctx context.Context, tripID, name string) error

	// RenamePayer renames the payer row and cascades the new name to every
	// expense payer reference and split entry in one transaction. Renaming
	// to a name already on the roster fails with ErrNameTaken; a split that
	// listed both names collapses to a single entry.
	RenamePayer(ctx context.Context, tripID, oldName, newName string) error

	CreateShare(ctx context.Context, share *models.Share) error
	DeleteShare(ctx context.Context, tripID, userID string) error

	// GetShare returns nil, nil when no share exists.
	GetShare(ctx context.Context, tripID, userID string) (*models.Share, error)

	CreateInvite(ctx context.Context, invite *models.Invite) error

	// GetInvite returns nil, nil when no invite matches the code.
	GetInvite(ctx context.Context, code string) (*models.Invite, error)

	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return nil, nil when not found.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
