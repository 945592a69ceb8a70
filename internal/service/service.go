// Package service implements the registration business logic: the
// capacity ledger derived from registration history and the admission
// control that accepts or rejects an attendee's session picks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/patterns42/workshop-registration/internal/attendee"
	"github.com/patterns42/workshop-registration/internal/model"
	"github.com/patterns42/workshop-registration/internal/schedule"
)

// ErrCapacityExceeded is returned when a submission names a session
// that is full (or unknown to the schedule). The whole submission is
// rejected; nothing is written.
var ErrCapacityExceeded = errors.New("some sessions might already be full")

// exportSeparator joins the fields of one admin-export line.
const exportSeparator = "###"

// RegistrationStore is the persistence contract the service consumes.
// Implemented by repository.RegistrationRepository.
type RegistrationStore interface {
	InsertRegistrations(ctx context.Context, hash string, picks []model.SessionPick) (int, error)
	RegistrationHistory(ctx context.Context, exclude []string) ([]model.RegistrationRow, error)
	CurrentRegistrations(ctx context.Context, exclude []string) ([]model.ExportRow, error)
	PreviousSessions(ctx context.Context, hash string) ([]string, error)
}

// RegistrationService orchestrates session selection for attendees.
// The schedule and directory are read-only; the store is the only
// shared mutable state and is consulted fresh on every call.
type RegistrationService struct {
	store     RegistrationStore
	schedule  *schedule.Schedule
	directory *attendee.Directory
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(store RegistrationStore, sched *schedule.Schedule, dir *attendee.Directory) *RegistrationService {
	return &RegistrationService{store: store, schedule: sched, directory: dir}
}

// SessionCapacities computes the capacity ledger: for every selectable
// session, how many distinct attendees' most recent registrations
// include it, paired with its seat limit. The reserved test identity
// and any extra hashes given are excluded. Recomputed from the store on
// every call; counts are never cached across requests.
func (s *RegistrationService) SessionCapacities(ctx context.Context, exclude ...string) (map[string]model.SessionCapacity, error) {
	excluded := append([]string{s.directory.Reserved().Hash}, exclude...)
	history, err := s.store.RegistrationHistory(ctx, excluded)
	if err != nil {
		return nil, fmt.Errorf("load registration history: %w", err)
	}

	// Most-recent-wins per (attendee, slot). History arrives in
	// insertion order, so overwriting keeps the latest row and equal
	// timestamps resolve to the row inserted last.
	type seat struct {
		hash   string
		slotID int
	}
	latest := make(map[seat]string)
	for _, row := range history {
		latest[seat{row.Hash, row.SlotID}] = row.Title
	}

	counts := make(map[string]int)
	for _, title := range latest {
		counts[title]++
	}

	capacities := make(map[string]model.SessionCapacity)
	for _, session := range s.schedule.AllSessions() {
		capacities[session.Title] = model.SessionCapacity{
			Current: counts[session.Title],
			Max:     session.Seats,
		}
	}
	return capacities, nil
}

// Register validates the attendee's picks against current capacity and
// appends them as one new registration. The attendee's own current
// seats are not counted against them, so re-submitting an unchanged
// choice always passes. Rejection writes nothing.
//
// Capacity is checked by reading aggregate counts and the insert is a
// separate statement; two racing submissions for the last seat can both
// be admitted. Best-effort admission control, deliberately unlocked.
func (s *RegistrationService) Register(ctx context.Context, hash string, picks []model.SessionPick) (int, error) {
	if _, err := s.directory.Lookup(hash); err != nil {
		return 0, err
	}

	capacities, err := s.SessionCapacities(ctx, hash)
	if err != nil {
		return 0, err
	}
	for _, pick := range picks {
		capacity, ok := capacities[pick.Title]
		if !ok {
			return 0, fmt.Errorf("session %q: %w", pick.Title, ErrCapacityExceeded)
		}
		if capacity.Max > 0 && capacity.Current+1 > capacity.Max {
			return 0, fmt.Errorf("session %q: %w", pick.Title, ErrCapacityExceeded)
		}
	}

	written, err := s.store.InsertRegistrations(ctx, hash, picks)
	if err != nil {
		return 0, fmt.Errorf("insert registrations: %w", err)
	}
	log.Printf("registration saved [hash=%s rows=%d picks=%v]", hash, written, picks)
	return written, nil
}

// SelectionPage assembles the data backing an attendee's registration
// page: display name, prior picks, the popularity report, and the first
// schedule day. Fails with attendee.ErrUnknownAttendee for foreign
// hashes.
func (s *RegistrationService) SelectionPage(ctx context.Context, hash string) (model.SelectionPage, error) {
	id, err := s.directory.Lookup(hash)
	if err != nil {
		return model.SelectionPage{}, err
	}

	previous, err := s.store.PreviousSessions(ctx, hash)
	if err != nil {
		return model.SelectionPage{}, fmt.Errorf("load previous sessions: %w", err)
	}

	popularity, err := s.SessionCapacities(ctx)
	if err != nil {
		return model.SelectionPage{}, err
	}

	day, err := s.schedule.Day(0)
	if err != nil {
		return model.SelectionPage{}, fmt.Errorf("first schedule day: %w", err)
	}

	return model.SelectionPage{
		Hash:       hash,
		Name:       id.Name,
		IsTest:     hash == s.directory.Reserved().Hash,
		Previous:   previous,
		Popularity: popularity,
		Day:        day,
	}, nil
}

// Statistics returns the popularity report for the public stats view.
func (s *RegistrationService) Statistics(ctx context.Context) (map[string]model.SessionCapacity, error) {
	return s.SessionCapacities(ctx)
}

// AdminExport renders every attendee's current registration, one line
// per row, fields joined by "###" with an RFC 3339 timestamp. The
// reserved test identity is excluded entirely.
func (s *RegistrationService) AdminExport(ctx context.Context) (string, error) {
	rows, err := s.store.CurrentRegistrations(ctx, []string{s.directory.Reserved().Hash})
	if err != nil {
		return "", fmt.Errorf("load current registrations: %w", err)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join([]string{
			row.Hash,
			row.Title,
			row.InsertedAt.Format(time.RFC3339),
		}, exportSeparator))
	}
	return strings.Join(lines, "\n"), nil
}
