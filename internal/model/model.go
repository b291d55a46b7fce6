// Package model defines the core domain types for the event registration system.
package model

import (
	"math"
	"time"
)

// User is a person who can register for events.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Event is a scheduled event with a fixed number of seats.
type Event struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	DateTime time.Time `json:"date_time"`
	Location string    `json:"location"`
	Capacity int       `json:"capacity"`
}

// IsPast reports whether the event no longer accepts registrations at now.
// An event starting exactly at now is past.
func (e *Event) IsPast(now time.Time) bool {
	return !e.DateTime.After(now)
}

// Registration links a user to an event. The (UserID, EventID) pair is its
// identity.
type Registration struct {
	UserID       int64     `json:"user_id"`
	EventID      int64     `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// EventDetails is an event together with the users registered for it.
type EventDetails struct {
	Event
	RegisteredUsers []User `json:"registered_users"`
}

// EventStats summarises how full an event is.
type EventStats struct {
	EventID     int64   `json:"event_id"`
	Total       int     `json:"total"`
	Remaining   int     `json:"remaining"`
	PercentUsed float64 `json:"percentUsed"`
}

// NewEventStats computes stats for total registrations against capacity.
// PercentUsed is rounded to two decimals.
func NewEventStats(eventID int64, total, capacity int) EventStats {
	stats := EventStats{EventID: eventID, Total: total, Remaining: capacity - total}
	if stats.Remaining < 0 {
		stats.Remaining = 0
	}
	if capacity > 0 {
		stats.PercentUsed = math.Round(float64(total)/float64(capacity)*100*100) / 100
	}
	return stats
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title    string    `json:"title"`
	DateTime time.Time `json:"date_time"`
	Location string    `json:"location"`
	Capacity int       `json:"capacity"`
}

// CreateUserRequest is the payload for signing up a user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterRequest is the payload for registering for, or cancelling a
// registration to, an event.
type RegisterRequest struct {
	UserID int64 `json:"user_id"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse is returned by operations with no resource to show.
type MessageResponse struct {
	Message string `json:"message"`
}

// BookingResult summarises the outcome of a single registration attempt.
// Used by the concurrent load harness.
type BookingResult struct {
	UserID int64
	Status int
	Code   string
	Err    error
}
