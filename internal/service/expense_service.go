package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yuchou/tripledger/internal/calculator"
	"github.com/yuchou/tripledger/internal/middleware"
	"github.com/yuchou/tripledger/internal/models"
	"github.com/yuchou/tripledger/internal/state"
	"github.com/yuchou/tripledger/internal/storage"
)

// ExpenseService handles expenses, payers, and the balance summary.
type ExpenseService struct {
	sessions *state.Registry
	trips    *TripService
}

// NewExpenseService creates an ExpenseService sharing the TripService's
// session access.
func NewExpenseService(sessions *state.Registry, trips *TripService) *ExpenseService {
	return &ExpenseService{sessions: sessions, trips: trips}
}

type expenseRequest struct {
	Title    string          `json:"title" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Payer    string          `json:"payer"`
	Date     string          `json:"date" binding:"required"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	SplitBy  []string        `json:"split_by"`
}

type reorderExpensesRequest struct {
	Expenses []models.Expense `json:"expenses" binding:"required"`
}

type payerRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddExpense records a new expense. A payer not yet on the roster is added
// implicitly.
func (s *ExpenseService) AddExpense(c *gin.Context) {
	req, ok := bindExpense(c)
	if !ok {
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.trips.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}

	expense := &models.Expense{
		TripID:   trip.ID,
		Title:    req.Title,
		Amount:   req.Amount,
		Payer:    req.Payer,
		Date:     req.Date,
		Category: req.Category,
		Note:     req.Note,
		SplitBy:  req.SplitBy,
	}
	if err := m.AddExpense(c.Request.Context(), expense); err != nil {
		slog.Error("AddExpense failed", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add expense"})
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// UpdateExpense rewrites an expense's fields and split set.
func (s *ExpenseService) UpdateExpense(c *gin.Context) {
	req, ok := bindExpense(c)
	if !ok {
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.trips.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}

	expense := &models.Expense{
		ID:       c.Param("expenseId"),
		TripID:   trip.ID,
		Title:    req.Title,
		Amount:   req.Amount,
		Payer:    req.Payer,
		Date:     req.Date,
		Category: req.Category,
		Note:     req.Note,
		SplitBy:  req.SplitBy,
	}
	if err := m.UpdateExpense(c.Request.Context(), expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}

	c.JSON(http.StatusOK, expense)
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(c *gin.Context) {
	m := s.sessions.Session(middleware.UserID(c))
	if _, ok := s.trips.tripFromSession(c, m, c.Param("tripId")); !ok {
		return
	}

	expenseID := c.Param("expenseId")
	if err := m.DeleteExpense(c.Request.Context(), expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderExpenses commits a drag-and-drop order for one date group.
func (s *ExpenseService) ReorderExpenses(c *gin.Context) {
	var req reorderExpensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.trips.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}

	if err := m.ReorderExpenses(c.Request.Context(), trip.ID, req.Expenses); err != nil {
		slog.Error("ReorderExpenses failed", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist order; state resynced"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AddPayer adds a named participant to the trip roster.
func (s *ExpenseService) AddPayer(c *gin.Context) {
	var req payerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.trips.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}
	if trip.HasPayer(req.Name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payer already exists"})
		return
	}

	if err := m.AddPayer(c.Request.Context(), trip.ID, req.Name); err != nil {
		slog.Error("AddPayer failed", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add payer"})
		return
	}

	c.Status(http.StatusCreated)
}

// DeletePayer removes a participant from the roster. Expenses referencing
// the name are untouched; the balance calculator handles them dynamically.
func (s *ExpenseService) DeletePayer(c *gin.Context) {
	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.trips.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}

	name := c.Param("name")
	if err := m.DeletePayer(c.Request.Context(), trip.ID, name); err != nil {
		slog.Error("DeletePayer failed", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "payer not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RenamePayer renames a participant, cascading to all expenses that
// reference the old name.
func (s *ExpenseService) RenamePayer(c *gin.Context) {
	var req payerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.trips.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}

	oldName := c.Param("name")
	if err := m.RenamePayer(c.Request.Context(), trip.ID, oldName, req.Name); err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": storage.ErrNameTaken.Error()})
			return
		}
		slog.Error("RenamePayer failed", "trip_id", trip.ID, "old", oldName, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "payer not found"})
		return
	}

	slog.Info("Payer renamed", "trip_id", trip.ID, "old", oldName, "new", req.Name)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Summary computes the trip's expense totals and per-participant balances.
// Amounts are rounded to two places here, at the presentation boundary
// only.
func (s *ExpenseService) Summary(c *gin.Context) {
	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.trips.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}

	expenses := make([]calculator.ExpenseForBalance, len(trip.Expenses))
	for i, e := range trip.Expenses {
		expenses[i] = calculator.ExpenseForBalance{
			Amount:  e.Amount,
			Payer:   e.Payer,
			SplitBy: e.SplitPolicy().Participants,
		}
	}

	summary := calculator.ComputeBalances(expenses, trip.PayerNames())

	paid := make(map[string]string, len(summary.Paid))
	for name, amount := range summary.Paid {
		paid[name] = amount.StringFixed(2)
	}
	balance := make(map[string]string, len(summary.Balance))
	for name, amount := range summary.Balance {
		balance[name] = amount.StringFixed(2)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_spent": summary.TotalSpent.StringFixed(2),
		"paid":        paid,
		"balance":     balance,
	})
}

// bindExpense validates the shared expense payload. The amount invariant
// is enforced here so the layers below never see a negative amount.
func bindExpense(c *gin.Context) (expenseRequest, bool) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	if req.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		return req, false
	}
	return req, true
}
