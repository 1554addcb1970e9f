package models

import "github.com/shopspring/decimal"

// Expense is a shared cost attributed to one payer and split across a set
// of participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// TripID is the trip this expense belongs to.
	TripID string `json:"trip_id"`

	Title string `json:"title"`

	// Amount is the expense total. Never negative.
	Amount decimal.Decimal `json:"amount"`

	// Payer is the participant name who advanced the money.
	Payer string `json:"payer"`

	// Date groups expenses for display and ordering (DateFormat).
	Date string `json:"date"`

	Category string `json:"category"`
	Note     string `json:"note"`

	// SplitBy lists the participant names sharing this expense. An empty
	// list means "split across all current participants", resolved at
	// calculation time rather than frozen when the expense is created.
	SplitBy []string `json:"split_by"`

	// OrderIndex is this expense's position within its date group, 0-based.
	OrderIndex int `json:"order_index"`
}

// SplitKind tags how an expense's split set is determined.
type SplitKind int

const (
	// SplitAllCurrent splits across the trip's full participant roster as
	// it exists when balances are calculated.
	SplitAllCurrent SplitKind = iota

	// SplitExplicit splits across the names listed on the expense.
	SplitExplicit
)

// SplitPolicy is the resolved split rule for one expense. Keeping the two
// cases distinct avoids conflating "split among nobody" with "split among
// everyone".
type SplitPolicy struct {
	Kind         SplitKind
	Participants []string
}

// SplitPolicy resolves the expense's split rule. The returned policy is
// evaluated lazily against the current roster by the caller.
func (e *Expense) SplitPolicy() SplitPolicy {
	if len(e.SplitBy) > 0 {
		return SplitPolicy{Kind: SplitExplicit, Participants: e.SplitBy}
	}
	return SplitPolicy{Kind: SplitAllCurrent}
}
