package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuchou/tripledger/internal/models"
)

func TestShareByEmail(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	ts.registerUser(t, "friend@example.com")
	trip := ts.createTrip(t, ownerToken)

	w := ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/shares", ownerToken, gin.H{
		"email": "friend@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("share failed with %d: %s", w.Code, w.Body.String())
	}
	result := decode[models.ShareResult](t, w)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}

	// Sharing again is a domain failure, not an HTTP error.
	w = ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/shares", ownerToken, gin.H{
		"email": "friend@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate share, got %d", w.Code)
	}
	result = decode[models.ShareResult](t, w)
	if result.Success || result.Error == "" {
		t.Errorf("expected structured failure for duplicate share, got %+v", result)
	}
}

func TestShareByEmailUnknownUser(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	trip := ts.createTrip(t, ownerToken)

	w := ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/shares", ownerToken, gin.H{
		"email": "nobody@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with structured failure, got %d", w.Code)
	}
	result := decode[models.ShareResult](t, w)
	if result.Success || result.Error == "" {
		t.Errorf("expected structured failure for unknown user, got %+v", result)
	}
}

func TestShareByEmailSelf(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	trip := ts.createTrip(t, ownerToken)

	w := ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/shares", ownerToken, gin.H{
		"email": "owner@example.com",
	})
	result := decode[models.ShareResult](t, w)
	if result.Success {
		t.Error("expected failure sharing a trip with its owner")
	}
}

func TestAcceptInvite(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	friendToken := ts.registerUser(t, "friend@example.com")
	trip := ts.createTrip(t, ownerToken)

	w := ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/invites", ownerToken, gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("create invite failed with %d: %s", w.Code, w.Body.String())
	}
	created := decode[models.ShareResult](t, w)
	if !created.Success || created.InviteCode == "" {
		t.Fatalf("expected invite code, got %+v", created)
	}

	w = ts.do(t, http.MethodPost, "/api/invites/"+created.InviteCode+"/accept", friendToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept failed with %d: %s", w.Code, w.Body.String())
	}
	accepted := decode[models.ShareResult](t, w)
	if !accepted.Success {
		t.Fatalf("expected success, got error %q", accepted.Error)
	}
	if accepted.Trip == nil || accepted.Trip.ID != trip.ID {
		t.Errorf("expected accepted trip in result, got %+v", accepted.Trip)
	}

	// The trip now shows up in the friend's list.
	w = ts.do(t, http.MethodGet, "/api/trips", friendToken, nil)
	trips := decode[[]models.Trip](t, w)
	if len(trips) != 1 || trips[0].ID != trip.ID {
		t.Errorf("expected shared trip in friend's list, got %+v", trips)
	}

	// Accepting twice is a domain failure.
	w = ts.do(t, http.MethodPost, "/api/invites/"+created.InviteCode+"/accept", friendToken, nil)
	result := decode[models.ShareResult](t, w)
	if result.Success || result.Error == "" {
		t.Errorf("expected structured failure for second accept, got %+v", result)
	}
}

func TestAcceptInviteUnknownCode(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "someone@example.com")

	w := ts.do(t, http.MethodPost, "/api/invites/no-such-code/accept", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with structured failure, got %d", w.Code)
	}
	result := decode[models.ShareResult](t, w)
	if result.Success || result.Error == "" {
		t.Errorf("expected structured failure for unknown code, got %+v", result)
	}
}

func TestAcceptInviteExpired(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	friendToken := ts.registerUser(t, "friend@example.com")
	trip := ts.createTrip(t, ownerToken)

	invite := &models.Invite{
		Code:      "expired-code",
		TripID:    trip.ID,
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}
	if err := ts.store.CreateInvite(context.Background(), invite); err != nil {
		t.Fatalf("failed to seed invite: %v", err)
	}

	w := ts.do(t, http.MethodPost, "/api/invites/expired-code/accept", friendToken, nil)
	result := decode[models.ShareResult](t, w)
	if result.Success || result.Error == "" {
		t.Errorf("expected structured failure for expired invite, got %+v", result)
	}
}

func TestAcceptInviteAsOwner(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	trip := ts.createTrip(t, ownerToken)

	w := ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/invites", ownerToken, gin.H{})
	created := decode[models.ShareResult](t, w)

	w = ts.do(t, http.MethodPost, "/api/invites/"+created.InviteCode+"/accept", ownerToken, nil)
	result := decode[models.ShareResult](t, w)
	if result.Success {
		t.Error("expected failure when the owner accepts their own invite")
	}
}

func TestCreateInviteRequiresOwner(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")
	otherToken := ts.registerUser(t, "other@example.com")
	trip := ts.createTrip(t, ownerToken)

	w := ts.do(t, http.MethodPost, "/api/trips/"+trip.ID+"/invites", otherToken, gin.H{})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", w.Code)
	}
}
