package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the wire and storage format for all calendar dates.
const DateFormat = "2006-01-02"

// Trip is the aggregate root. It owns its Days, Expenses, Payers, and
// sharing records. The Days slice is created once at trip creation (one per
// calendar day in [StartDate, EndDate]) and never grows or shrinks.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string `json:"id"`

	// OwnerID is the user who created the trip.
	OwnerID string `json:"owner_id"`

	Title     string `json:"title"`
	Location  string `json:"location"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ImageURL  string `json:"image_url"`

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64 `json:"created_at"`

	// IsOwner reports whether the viewing user owns this trip. It is
	// derived per viewer when the trip graph is fetched, not stored.
	IsOwner bool `json:"is_owner"`

	Days     []Day     `json:"days"`
	Expenses []Expense `json:"expenses"`
	Payers   []Payer   `json:"payers"`
	Shares   []Share   `json:"shares"`
}

// Day is one calendar day of a trip's itinerary. Days are owned exclusively
// by one Trip and identified within it by a 1-based sequential DayIndex.
type Day struct {
	ID       string `json:"id"`
	TripID   string `json:"trip_id"`
	DayIndex int    `json:"day_index"`
	Date     string `json:"date"`

	// Items is the ordered itinerary for this day, sorted by OrderIndex.
	Items []ItineraryItem `json:"items"`
}

// ItineraryItem is a single scheduled entry. It is owned by exactly one Day.
type ItineraryItem struct {
	ID        string `json:"id"`
	DayID     string `json:"day_id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Note      string `json:"note"`
	Image     string `json:"image"`

	// OrderIndex is this item's position within its Day, 0-based.
	OrderIndex int `json:"order_index"`
}

// Payer is a named expense participant, unique by name within a trip.
type Payer struct {
	ID     string `json:"id"`
	TripID string `json:"trip_id"`
	Name   string `json:"name"`
}

// NewTrip builds a trip with one Day per calendar day in
// [startDate, endDate], both in DateFormat. The end date must not precede
// the start date.
func NewTrip(ownerID, title, location, startDate, endDate, imageURL string) (*Trip, error) {
	start, err := time.Parse(DateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse(DateFormat, endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}

	trip := &Trip{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Location:  location,
		StartDate: startDate,
		EndDate:   endDate,
		ImageURL:  imageURL,
		CreatedAt: time.Now().Unix(),
		IsOwner:   true,
	}

	for d, idx := start, 1; !d.After(end); d, idx = d.AddDate(0, 0, 1), idx+1 {
		trip.Days = append(trip.Days, Day{
			ID:       uuid.New().String(),
			TripID:   trip.ID,
			DayIndex: idx,
			Date:     d.Format(DateFormat),
		})
	}

	return trip, nil
}

// Day returns the day with the given ID, or nil if the trip has no such day.
func (t *Trip) Day(dayID string) *Day {
	for i := range t.Days {
		if t.Days[i].ID == dayID {
			return &t.Days[i]
		}
	}
	return nil
}

// PayerNames returns the current participant roster in insertion order.
func (t *Trip) PayerNames() []string {
	names := make([]string, len(t.Payers))
	for i, p := range t.Payers {
		names[i] = p.Name
	}
	return names
}

// HasPayer reports whether a payer with the given name exists on the trip.
func (t *Trip) HasPayer(name string) bool {
	for _, p := range t.Payers {
		if p.Name == name {
			return true
		}
	}
	return false
}
