// Package models provides domain types for the convention planner.
package models

import "time"

// EventCategory classifies a planner event.
type EventCategory string

const (
	CategoryMeetup  EventCategory = "meetup"
	CategoryParty   EventCategory = "party"
	CategoryTalk    EventCategory = "talk"
	CategorySigning EventCategory = "signing"
	CategoryOther   EventCategory = "other"
)

// Event is a planned convention event.
type Event struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	URL         string        `json:"url,omitempty"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	CreatedByID string        `json:"createdById"`
	Category    EventCategory `json:"category"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// EventProjection is the normalized event shape carried by broadcast
// messages and returned by assistant tools. It matches what a connected
// WebSocket client receives for the same mutation.
type EventProjection struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	URL         string        `json:"url,omitempty"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	CreatedByID string        `json:"createdById"`
	Category    EventCategory `json:"category"`
}

// Project returns the broadcast projection of the event.
func (e *Event) Project() EventProjection {
	return EventProjection{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		URL:         e.URL,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		CreatedByID: e.CreatedByID,
		Category:    e.Category,
	}
}

// Participant records that a user joined an event.
type Participant struct {
	UserID   string    `json:"userId"`
	EventID  string    `json:"eventId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// User is the minimal identity the planner cares about.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the resolved authentication state for one request.
// A nil *Session means anonymous.
type Session struct {
	User User `json:"user"`
}
