package service

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuchou/tripledger/internal/middleware"
	"github.com/yuchou/tripledger/internal/models"
	"github.com/yuchou/tripledger/internal/state"
)

// TripService handles trips, days, and itinerary items.
type TripService struct {
	sessions *state.Registry
}

// NewTripService creates a TripService over the session registry.
func NewTripService(sessions *state.Registry) *TripService {
	return &TripService{sessions: sessions}
}

type createTripRequest struct {
	Title     string `json:"title" binding:"required"`
	Location  string `json:"location"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	ImageURL  string `json:"image_url"`
}

type itemRequest struct {
	Title     string `json:"title" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Note      string `json:"note"`
	Image     string `json:"image"`
}

type reorderItemsRequest struct {
	Items []models.ItineraryItem `json:"items" binding:"required"`
}

// ListTrips returns the user's owned and shared trips with their full
// graphs.
func (s *TripService) ListTrips(c *gin.Context) {
	m := s.sessions.Session(middleware.UserID(c))
	if err := m.Resync(c.Request.Context()); err != nil {
		slog.Error("ListTrips failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trips"})
		return
	}

	trips := m.Trips()
	if trips == nil {
		trips = []models.Trip{}
	}
	c.JSON(http.StatusOK, trips)
}

// CreateTrip creates a trip with one itinerary day per calendar day in the
// requested range.
func (s *TripService) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, err := m.AddTrip(c.Request.Context(), req.Title, req.Location, req.StartDate, req.EndDate, req.ImageURL)
	if err != nil {
		slog.Error("CreateTrip failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slog.Info("Trip created", "trip_id", trip.ID, "days", len(trip.Days))
	c.JSON(http.StatusCreated, trip)
}

// DeleteTrip removes a trip the user owns.
func (s *TripService) DeleteTrip(c *gin.Context) {
	tripID := c.Param("tripId")
	m := s.sessions.Session(middleware.UserID(c))

	trip, ok := s.tripFromSession(c, m, tripID)
	if !ok {
		return
	}
	if !trip.IsOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can delete a trip"})
		return
	}

	if err := m.DeleteTrip(c.Request.Context(), tripID); err != nil {
		slog.Error("DeleteTrip failed", "trip_id", tripID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete trip"})
		return
	}

	slog.Info("Trip deleted", "trip_id", tripID)
	c.Status(http.StatusNoContent)
}

// AddItem appends an itinerary item to a day.
func (s *TripService) AddItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}
	dayID := c.Param("dayId")
	if trip.Day(dayID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "day not found"})
		return
	}

	item := &models.ItineraryItem{
		DayID:     dayID,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
		Image:     req.Image,
	}
	if err := m.AddItem(c.Request.Context(), item); err != nil {
		slog.Error("AddItem failed", "day_id", dayID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateItem rewrites an itinerary item's fields.
func (s *TripService) UpdateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	if _, ok := s.tripFromSession(c, m, c.Param("tripId")); !ok {
		return
	}

	item := &models.ItineraryItem{
		ID:        c.Param("itemId"),
		DayID:     c.Param("dayId"),
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
		Image:     req.Image,
	}
	if err := m.UpdateItem(c.Request.Context(), item); err != nil {
		slog.Error("UpdateItem failed", "item_id", item.ID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an itinerary item.
func (s *TripService) DeleteItem(c *gin.Context) {
	m := s.sessions.Session(middleware.UserID(c))
	if _, ok := s.tripFromSession(c, m, c.Param("tripId")); !ok {
		return
	}

	itemID := c.Param("itemId")
	if err := m.DeleteItem(c.Request.Context(), itemID); err != nil {
		slog.Error("DeleteItem failed", "item_id", itemID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderItems commits a drag-and-drop order for one day's items. The
// snapshot is updated before the write; a failed write resyncs from the
// store, so the client should refetch on error.
func (s *TripService) ReorderItems(c *gin.Context) {
	var req reorderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := s.sessions.Session(middleware.UserID(c))
	trip, ok := s.tripFromSession(c, m, c.Param("tripId"))
	if !ok {
		return
	}

	dayID := c.Param("dayId")
	err := m.ReorderItems(c.Request.Context(), trip.ID, dayID, req.Items)
	if err != nil {
		slog.Error("ReorderItems failed", "day_id", dayID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist order; state resynced"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// tripFromSession resyncs the session if needed and resolves the trip,
// answering 404 when the user has no access to it.
func (s *TripService) tripFromSession(c *gin.Context, m *state.Manager, tripID string) (*models.Trip, bool) {
	trip := m.Trip(tripID)
	if trip == nil {
		if err := m.Resync(c.Request.Context()); err != nil {
			slog.Error("Session resync failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trips"})
			return nil, false
		}
		trip = m.Trip(tripID)
	}
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return nil, false
	}
	return trip, true
}
