// Package storetest provides an in-memory RegistrationStore for tests.
// It mirrors the Postgres store's observable behavior: append-only
// rows, insertion-ordered history, and latest-submission "current"
// views.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/patterns42/workshop-registration/internal/model"
)

// Store is an in-memory registration store. The zero value is not
// usable; call New.
type Store struct {
	mu   sync.Mutex
	rows []model.RegistrationRow
	now  time.Time

	// HistoryCalls counts RegistrationHistory invocations, letting
	// tests assert that no capacity read happened.
	HistoryCalls int

	// InsertErr, when set, is returned by InsertRegistrations.
	InsertErr error
}

// New returns an empty store with a fixed starting clock.
func New() *Store {
	return &Store{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

// Seed records a prior submission for hash, advancing the clock so
// later submissions supersede earlier ones.
func (s *Store) Seed(hash string, picks ...model.SessionPick) {
	_, _ = s.InsertRegistrations(context.Background(), hash, picks)
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// InsertRegistrations appends one row per pick, all stamped with the
// same submission time.
func (s *Store) InsertRegistrations(_ context.Context, hash string, picks []model.SessionPick) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return 0, s.InsertErr
	}
	s.now = s.now.Add(time.Minute)
	for _, pick := range picks {
		s.rows = append(s.rows, model.RegistrationRow{
			Hash:       hash,
			SlotID:     pick.SlotID,
			Title:      pick.Title,
			InsertedAt: s.now,
		})
	}
	return len(picks), nil
}

// RegistrationHistory returns all rows in insertion order, excluded
// hashes filtered out.
func (s *Store) RegistrationHistory(_ context.Context, exclude []string) ([]model.RegistrationRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HistoryCalls++

	skip := make(map[string]bool, len(exclude))
	for _, h := range exclude {
		skip[h] = true
	}
	var out []model.RegistrationRow
	for _, row := range s.rows {
		if !skip[row.Hash] {
			out = append(out, row)
		}
	}
	return out, nil
}

// CurrentRegistrations returns the rows of each attendee's most recent
// submission.
func (s *Store) CurrentRegistrations(_ context.Context, exclude []string) ([]model.ExportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skip := make(map[string]bool, len(exclude))
	for _, h := range exclude {
		skip[h] = true
	}
	newest := make(map[string]time.Time)
	for _, row := range s.rows {
		if skip[row.Hash] {
			continue
		}
		if row.InsertedAt.After(newest[row.Hash]) {
			newest[row.Hash] = row.InsertedAt
		}
	}
	var out []model.ExportRow
	for _, row := range s.rows {
		if skip[row.Hash] || !row.InsertedAt.Equal(newest[row.Hash]) {
			continue
		}
		out = append(out, model.ExportRow{Hash: row.Hash, Title: row.Title, InsertedAt: row.InsertedAt})
	}
	return out, nil
}

// PreviousSessions returns hash's current title per slot in slot order.
func (s *Store) PreviousSessions(_ context.Context, hash string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySlot := make(map[int]string)
	var slots []int
	for _, row := range s.rows {
		if row.Hash != hash {
			continue
		}
		if _, seen := bySlot[row.SlotID]; !seen {
			slots = append(slots, row.SlotID)
		}
		bySlot[row.SlotID] = row.Title
	}
	sort.Ints(slots)
	titles := make([]string, 0, len(slots))
	for _, slot := range slots {
		titles = append(titles, bySlot[slot])
	}
	return titles, nil
}
