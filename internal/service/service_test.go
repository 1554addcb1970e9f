package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuchou/tripledger/internal/auth"
	"github.com/yuchou/tripledger/internal/middleware"
	"github.com/yuchou/tripledger/internal/models"
	"github.com/yuchou/tripledger/internal/state"
	"github.com/yuchou/tripledger/internal/storage/sqlite"
)

// testServer wires the full router against a temp-dir SQLite store so
// handler tests exercise the real stack end to end.
type testServer struct {
	router *gin.Engine
	store  *sqlite.SQLiteStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	sessions := state.NewRegistry(store)

	authService := NewAuthService(authenticator, jwtManager)
	tripService := NewTripService(sessions)
	expenseService := NewExpenseService(sessions, tripService)
	shareService := NewShareService(store)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/auth/register", authService.Register)
	api.POST("/auth/login", authService.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(jwtManager))
	authed.GET("/trips", tripService.ListTrips)
	authed.POST("/trips", tripService.CreateTrip)
	authed.DELETE("/trips/:tripId", tripService.DeleteTrip)
	authed.POST("/trips/:tripId/days/:dayId/items", tripService.AddItem)
	authed.PUT("/trips/:tripId/days/:dayId/items-order", tripService.ReorderItems)
	authed.POST("/trips/:tripId/expenses", expenseService.AddExpense)
	authed.PUT("/trips/:tripId/expenses-order", expenseService.ReorderExpenses)
	authed.GET("/trips/:tripId/summary", expenseService.Summary)
	authed.POST("/trips/:tripId/payers", expenseService.AddPayer)
	authed.PUT("/trips/:tripId/payers/:name", expenseService.RenamePayer)
	authed.POST("/trips/:tripId/shares", shareService.ShareByEmail)
	authed.POST("/trips/:tripId/invites", shareService.CreateInvite)
	authed.POST("/invites/:code/accept", shareService.AcceptInvite)

	return &testServer{router: router, store: store}
}

// do issues a JSON request and returns the recorder.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

// registerUser registers an account and returns its token.
func (ts *testServer) registerUser(t *testing.T, email string) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": email, "display_name": "Tester", "password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", w.Code, w.Body.String())
	}
	resp := decode[map[string]json.RawMessage](t, w)

	var token string
	if err := json.Unmarshal(resp["token"], &token); err != nil {
		t.Fatalf("no token in register response: %v", err)
	}
	return token
}

// createTrip creates a three-day trip and returns it.
func (ts *testServer) createTrip(t *testing.T, token string) models.Trip {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/trips", token, gin.H{
		"title": "Kyoto", "location": "Japan",
		"start_date": "2026-05-01", "end_date": "2026-05-03",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create trip failed with %d: %s", w.Code, w.Body.String())
	}
	return decode[models.Trip](t, w)
}
