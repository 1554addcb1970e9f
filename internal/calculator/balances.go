// Package calculator implements the pure balance arithmetic for a trip's
// shared expenses. It performs no I/O and never fails: malformed input
// (unknown payers, empty split sets) is tolerated by the rules documented
// on ComputeBalances, with validation left to the API entry points.
package calculator

import "github.com/shopspring/decimal"

// ExpenseForBalance carries the minimal expense information needed for
// balance calculation.
type ExpenseForBalance struct {
	Amount decimal.Decimal
	Payer  string

	// SplitBy lists who shares this expense. Empty means "split across
	// all current participants", resolved against the roster passed to
	// ComputeBalances.
	SplitBy []string
}

// Summary is the result of reconciling a trip's expenses.
type Summary struct {
	// TotalSpent is the sum of all expense amounts.
	TotalSpent decimal.Decimal

	// Paid maps each participant to the sum of amounts they advanced.
	// Roster participants with no expenses appear with zero.
	Paid map[string]decimal.Decimal

	// Balance maps each participant to their net position: positive means
	// they are owed money, negative means they owe.
	Balance map[string]decimal.Decimal
}

// ComputeBalances reconciles expenses against the participant roster.
//
// For each expense the payer is credited the full amount, then each member
// of the split set is debited an equal share. A payer missing from the
// roster (deleted, or never formally added) is added dynamically with a
// zero starting balance rather than rejected. An expense whose split set
// resolves to nobody debits no one.
//
// Accumulation is exact decimal arithmetic; shares are not rounded, so the
// sum of all balances is zero up to the precision of the division itself.
func ComputeBalances(expenses []ExpenseForBalance, participants []string) Summary {
	s := Summary{
		TotalSpent: decimal.Zero,
		Paid:       make(map[string]decimal.Decimal, len(participants)),
		Balance:    make(map[string]decimal.Decimal, len(participants)),
	}
	for _, p := range participants {
		s.Paid[p] = decimal.Zero
		s.Balance[p] = decimal.Zero
	}

	for _, e := range expenses {
		s.TotalSpent = s.TotalSpent.Add(e.Amount)

		if _, known := s.Paid[e.Payer]; !known {
			s.Paid[e.Payer] = decimal.Zero
			s.Balance[e.Payer] = decimal.Zero
		}
		s.Paid[e.Payer] = s.Paid[e.Payer].Add(e.Amount)
		s.Balance[e.Payer] = s.Balance[e.Payer].Add(e.Amount)

		splitPeople := e.SplitBy
		if len(splitPeople) == 0 {
			splitPeople = participants
		}
		if len(splitPeople) == 0 {
			// No explicit splitters and an empty roster: nobody owes
			// anything for this expense.
			continue
		}

		share := e.Amount.Div(decimal.NewFromInt(int64(len(splitPeople))))
		for _, person := range splitPeople {
			s.Balance[person] = s.Balance[person].Sub(share)
		}
	}

	return s
}
