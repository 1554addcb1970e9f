package service

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yuchou/tripledger/internal/models"
)

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "alice@example.com")

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", w.Code)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "alice@example.com", "display_name": "Alice", "password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for weak password, got %d", w.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(t, http.MethodGet, "/api/trips", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/trips", "not-a-token", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", w.Code)
	}
}

func TestCreateAndListTrips(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "alice@example.com")

	trip := ts.createTrip(t, token)
	if len(trip.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(trip.Days))
	}

	w := ts.do(t, http.MethodGet, "/api/trips", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list trips failed with %d: %s", w.Code, w.Body.String())
	}
	trips := decode[[]models.Trip](t, w)
	if len(trips) != 1 || trips[0].ID != trip.ID {
		t.Errorf("unexpected trip list: %+v", trips)
	}
}

func TestCreateTripRejectsBadDates(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "alice@example.com")

	w := ts.do(t, http.MethodPost, "/api/trips", token, gin.H{
		"title": "Backwards", "start_date": "2026-05-03", "end_date": "2026-05-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for inverted dates, got %d", w.Code)
	}
}

func TestReorderItemsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "alice@example.com")
	trip := ts.createTrip(t, token)
	day := trip.Days[0]

	var items []models.ItineraryItem
	for _, title := range []string{"Temple", "Lunch", "Market"} {
		w := ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/days/"+day.ID+"/items", token, gin.H{"title": title})
		if w.Code != http.StatusCreated {
			t.Fatalf("add item failed with %d: %s", w.Code, w.Body.String())
		}
		items = append(items, decode[models.ItineraryItem](t, w))
	}

	// Move "Market" to the front.
	reordered := []models.ItineraryItem{items[2], items[0], items[1]}
	w := ts.do(t, http.MethodPut, "/api/trips/"+trip.ID+"/days/"+day.ID+"/items-order", token,
		gin.H{"items": reordered})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder failed with %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/api/trips", token, nil)
	trips := decode[[]models.Trip](t, w)
	got := trips[0].Days[0].Items
	want := []string{"Market", "Temple", "Lunch"}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, item := range got {
		if item.Title != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], item.Title)
		}
		if item.OrderIndex != i {
			t.Errorf("position %d: expected order %d, got %d", i, i, item.OrderIndex)
		}
	}
}

func TestDeleteTripRequiresOwner(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	otherToken := ts.registerUser(t, "other@example.com")
	trip := ts.createTrip(t, ownerToken)

	// The other user has no access at all, so the trip resolves to 404.
	w := ts.do(t, http.MethodDelete, "/api/trips/"+trip.ID, otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for stranger, got %d", w.Code)
	}

	w = ts.do(t, http.MethodDelete, "/api/trips/"+trip.ID, ownerToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for owner, got %d: %s", w.Code, w.Body.String())
	}
}
