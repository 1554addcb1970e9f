package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name         string
		expenses     []ExpenseForBalance
		participants []string
		validateFunc func(t *testing.T, s Summary)
	}{
		{
			name: "explicit three-way split credits payer net of own share",
			expenses: []ExpenseForBalance{
				{Amount: dec("90"), Payer: "A", SplitBy: []string{"A", "B", "C"}},
			},
			participants: []string{"A", "B", "C"},
			validateFunc: func(t *testing.T, s Summary) {
				if !s.Paid["A"].Equal(dec("90")) {
					t.Errorf("paid[A] = %s, want 90", s.Paid["A"])
				}
				if !s.Balance["A"].Equal(dec("60")) {
					t.Errorf("balance[A] = %s, want 60", s.Balance["A"])
				}
				if !s.Balance["B"].Equal(dec("-30")) {
					t.Errorf("balance[B] = %s, want -30", s.Balance["B"])
				}
				if !s.Balance["C"].Equal(dec("-30")) {
					t.Errorf("balance[C] = %s, want -30", s.Balance["C"])
				}
			},
		},
		{
			name: "empty split set defaults to full roster",
			expenses: []ExpenseForBalance{
				{Amount: dec("100"), Payer: "A"},
			},
			participants: []string{"A", "B"},
			validateFunc: func(t *testing.T, s Summary) {
				if !s.Balance["A"].Equal(dec("50")) {
					t.Errorf("balance[A] = %s, want 50", s.Balance["A"])
				}
				if !s.Balance["B"].Equal(dec("-50")) {
					t.Errorf("balance[B] = %s, want -50", s.Balance["B"])
				}
			},
		},
		{
			name: "unknown payer is added dynamically",
			expenses: []ExpenseForBalance{
				{Amount: dec("40"), Payer: "Ghost", SplitBy: []string{"A", "B"}},
			},
			participants: []string{"A", "B"},
			validateFunc: func(t *testing.T, s Summary) {
				if !s.Paid["Ghost"].Equal(dec("40")) {
					t.Errorf("paid[Ghost] = %s, want 40", s.Paid["Ghost"])
				}
				if !s.Balance["Ghost"].Equal(dec("40")) {
					t.Errorf("balance[Ghost] = %s, want 40", s.Balance["Ghost"])
				}
				if !s.Balance["A"].Equal(dec("-20")) {
					t.Errorf("balance[A] = %s, want -20", s.Balance["A"])
				}
			},
		},
		{
			name: "empty roster and empty split debits nobody",
			expenses: []ExpenseForBalance{
				{Amount: dec("25"), Payer: "A"},
			},
			participants: nil,
			validateFunc: func(t *testing.T, s Summary) {
				if !s.TotalSpent.Equal(dec("25")) {
					t.Errorf("totalSpent = %s, want 25", s.TotalSpent)
				}
				if !s.Balance["A"].Equal(dec("25")) {
					t.Errorf("balance[A] = %s, want 25 (credited, never debited)", s.Balance["A"])
				}
			},
		},
		{
			name:         "roster participants with no expenses appear with zero",
			expenses:     nil,
			participants: []string{"A", "B"},
			validateFunc: func(t *testing.T, s Summary) {
				for _, p := range []string{"A", "B"} {
					paid, ok := s.Paid[p]
					if !ok {
						t.Fatalf("paid[%s] missing", p)
					}
					if !paid.IsZero() {
						t.Errorf("paid[%s] = %s, want 0", p, paid)
					}
					if !s.Balance[p].IsZero() {
						t.Errorf("balance[%s] = %s, want 0", p, s.Balance[p])
					}
				}
			},
		},
		{
			name: "totals accumulate across expenses",
			expenses: []ExpenseForBalance{
				{Amount: dec("10.50"), Payer: "A", SplitBy: []string{"A", "B"}},
				{Amount: dec("4.50"), Payer: "B", SplitBy: []string{"A", "B"}},
				{Amount: dec("8"), Payer: "A", SplitBy: []string{"B"}},
			},
			participants: []string{"A", "B"},
			validateFunc: func(t *testing.T, s Summary) {
				if !s.TotalSpent.Equal(dec("23")) {
					t.Errorf("totalSpent = %s, want 23", s.TotalSpent)
				}
				if !s.Paid["A"].Equal(dec("18.50")) {
					t.Errorf("paid[A] = %s, want 18.50", s.Paid["A"])
				}
				// A: (10.50-5.25) - 2.25 + 8 = 11
				if !s.Balance["A"].Equal(dec("11")) {
					t.Errorf("balance[A] = %s, want 11", s.Balance["A"])
				}
				if !s.Balance["B"].Equal(dec("-11")) {
					t.Errorf("balance[B] = %s, want -11", s.Balance["B"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeBalances(tt.expenses, tt.participants)
			tt.validateFunc(t, s)
		})
	}
}

// Every dollar credited to a payer is debited across its split set, so
// balances must sum to zero (up to division precision for uneven splits).
func TestComputeBalancesConservation(t *testing.T) {
	tolerance := dec("0.0000000001")

	cases := []struct {
		name         string
		expenses     []ExpenseForBalance
		participants []string
	}{
		{
			name: "divisible amounts",
			expenses: []ExpenseForBalance{
				{Amount: dec("90"), Payer: "A", SplitBy: []string{"A", "B", "C"}},
				{Amount: dec("100"), Payer: "B"},
				{Amount: dec("30"), Payer: "C", SplitBy: []string{"A"}},
			},
			participants: []string{"A", "B", "C"},
		},
		{
			name: "uneven three-way split",
			expenses: []ExpenseForBalance{
				{Amount: dec("100"), Payer: "A", SplitBy: []string{"A", "B", "C"}},
				{Amount: dec("0.01"), Payer: "B"},
			},
			participants: []string{"A", "B", "C"},
		},
		{
			name: "payer outside roster",
			expenses: []ExpenseForBalance{
				{Amount: dec("75"), Payer: "Ghost"},
			},
			participants: []string{"A", "B", "Ghost"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := ComputeBalances(tc.expenses, tc.participants)
			sum := decimal.Zero
			for _, b := range s.Balance {
				sum = sum.Add(b)
			}
			if sum.Abs().GreaterThan(tolerance) {
				t.Errorf("balances sum to %s, want 0", sum)
			}
		})
	}
}
