package service

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuchou/tripledger/internal/middleware"
	"github.com/yuchou/tripledger/internal/models"
	"github.com/yuchou/tripledger/internal/storage"
)

// defaultInviteDays is the invite-link lifetime when the request doesn't
// specify one.
const defaultInviteDays = 7

// ShareService handles trip sharing and invite links. Domain failures
// (user not found, expired invite, duplicate share, self-share) come back
// as 200 responses with success=false so clients can render them inline;
// only persistence failures become HTTP errors.
type ShareService struct {
	store storage.Store
}

// NewShareService creates a ShareService.
func NewShareService(store storage.Store) *ShareService {
	return &ShareService{store: store}
}

type shareRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

type inviteRequest struct {
	Role          string `json:"role"`
	ExpiresInDays int    `json:"expires_in_days"`
}

// ShareByEmail grants an existing user access to the trip.
func (s *ShareService) ShareByEmail(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	tripID := c.Param("tripId")
	userID := middleware.UserID(c)

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	if trip.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can share a trip"})
		return
	}

	target, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		slog.Error("ShareByEmail lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "share failed"})
		return
	}
	if target == nil {
		c.JSON(http.StatusOK, models.ShareFailure("no user with that email"))
		return
	}
	if target.ID == trip.OwnerID {
		c.JSON(http.StatusOK, models.ShareFailure("trip is already owned by that user"))
		return
	}

	existing, err := s.store.GetShare(ctx, tripID, target.ID)
	if err != nil {
		slog.Error("ShareByEmail share lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "share failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, models.ShareFailure("trip is already shared with that user"))
		return
	}

	share := &models.Share{TripID: tripID, UserID: target.ID, Role: req.Role}
	if err := s.store.CreateShare(ctx, share); err != nil {
		slog.Error("ShareByEmail create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "share failed"})
		return
	}

	slog.Info("Trip shared", "trip_id", tripID, "with", target.ID)
	c.JSON(http.StatusOK, models.ShareResult{Success: true})
}

// RemoveShare revokes a collaborator's access.
func (s *ShareService) RemoveShare(c *gin.Context) {
	ctx := c.Request.Context()
	tripID := c.Param("tripId")

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	if trip.OwnerID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can manage shares"})
		return
	}

	if err := s.store.DeleteShare(ctx, tripID, c.Param("userId")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateInvite issues a redeemable invite link code for the trip.
func (s *ShareService) CreateInvite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ExpiresInDays <= 0 {
		req.ExpiresInDays = defaultInviteDays
	}

	ctx := c.Request.Context()
	tripID := c.Param("tripId")
	userID := middleware.UserID(c)

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}
	if trip.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can create invites"})
		return
	}

	invite := &models.Invite{
		Code:      newInviteCode(),
		TripID:    tripID,
		Role:      req.Role,
		CreatedBy: userID,
		ExpiresAt: time.Now().AddDate(0, 0, req.ExpiresInDays).Unix(),
	}
	if err := s.store.CreateInvite(ctx, invite); err != nil {
		slog.Error("CreateInvite failed", "trip_id", tripID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invite"})
		return
	}

	slog.Info("Invite created", "trip_id", tripID, "expires_at", invite.ExpiresAt)
	c.JSON(http.StatusOK, models.ShareResult{Success: true, InviteCode: invite.Code})
}

// AcceptInvite redeems an invite code for the authenticated user. The
// invite must exist and be unexpired, and the acceptor must neither own
// the trip nor already hold a share on it.
func (s *ShareService) AcceptInvite(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")
	userID := middleware.UserID(c)

	invite, err := s.store.GetInvite(ctx, code)
	if err != nil {
		slog.Error("AcceptInvite lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accept failed"})
		return
	}
	if invite == nil {
		c.JSON(http.StatusOK, models.ShareFailure("invite not found"))
		return
	}
	if invite.ExpiresAt < time.Now().Unix() {
		c.JSON(http.StatusOK, models.ShareFailure("invite has expired"))
		return
	}

	trip, err := s.store.GetTrip(ctx, invite.TripID)
	if err != nil {
		c.JSON(http.StatusOK, models.ShareFailure("trip no longer exists"))
		return
	}
	if trip.OwnerID == userID {
		c.JSON(http.StatusOK, models.ShareFailure("you already own this trip"))
		return
	}

	existing, err := s.store.GetShare(ctx, invite.TripID, userID)
	if err != nil {
		slog.Error("AcceptInvite share lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accept failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, models.ShareFailure("trip is already shared with you"))
		return
	}

	share := &models.Share{TripID: invite.TripID, UserID: userID, Role: invite.Role}
	if err := s.store.CreateShare(ctx, share); err != nil {
		slog.Error("AcceptInvite create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accept failed"})
		return
	}

	slog.Info("Invite accepted", "trip_id", invite.TripID, "user_id", userID)
	c.JSON(http.StatusOK, models.ShareResult{Success: true, Trip: trip})
}

// newInviteCode returns a random URL-safe invite token.
func newInviteCode() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}
