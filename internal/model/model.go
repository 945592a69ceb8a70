// Package model defines the core domain records for the workshop
// registration system.
package model

import (
	"time"

	"github.com/patterns42/workshop-registration/internal/schedule"
)

// SessionPick is one submitted choice: a session title for a timeslot.
type SessionPick struct {
	SlotID int    `json:"slot_id"`
	Title  string `json:"title"`
}

// RegistrationRow is one persisted registration entry. Rows are
// append-only; an attendee's current choice for a slot is the most
// recent row for that (hash, slot) pair.
type RegistrationRow struct {
	Hash       string    `json:"hash"`
	SlotID     int       `json:"slot_id"`
	Title      string    `json:"title"`
	InsertedAt time.Time `json:"inserted_at"`
}

// ExportRow is one line of the admin export: an attendee's latest
// registration rows only.
type ExportRow struct {
	Hash       string    `json:"hash"`
	Title      string    `json:"title"`
	InsertedAt time.Time `json:"inserted_at"`
}

// SessionCapacity pairs a session's current occupancy with its seat
// limit. Max == 0 means the session is unbounded.
type SessionCapacity struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Remaining returns the number of free seats.
func (c SessionCapacity) Remaining() int {
	return c.Max - c.Current
}

// SelectionPage is the payload backing an attendee's registration page.
type SelectionPage struct {
	Hash       string                     `json:"hash"`
	Name       string                     `json:"name"`
	IsTest     bool                       `json:"is_test"`
	Previous   []string                   `json:"previous"`
	Popularity map[string]SessionCapacity `json:"popularity"`
	Day        schedule.ScheduleDay       `json:"day"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
