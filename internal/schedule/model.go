// Package schedule holds the conference agenda model: days, timeslots,
// and the sessions (with speakers) offered in each slot. The model is
// built once by the parser and never mutated afterwards, so it can be
// shared across requests without synchronisation.
package schedule

import "errors"

// ErrNoSuchDay is returned when a day index is out of range.
var ErrNoSuchDay = errors.New("no such schedule day")

// SessionKind classifies a schedule entry. Only workshops and
// presentations are selectable; service entries (breaks, registration
// desk) are filtered out of every capacity-relevant view.
type SessionKind int

const (
	KindService SessionKind = iota
	KindWorkshop
	KindPresentation
)

// String returns the canonical name of the kind.
func (k SessionKind) String() string {
	switch k {
	case KindWorkshop:
		return "workshop"
	case KindPresentation:
		return "presentation"
	default:
		return "service"
	}
}

// Speaker describes a session presenter. Speakers are deduplicated by
// (Name, Surname) across the whole schedule.
type Speaker struct {
	Name    string `yaml:"name" json:"name"`
	Surname string `yaml:"surname" json:"surname"`
	Bio     string `yaml:"bio" json:"bio"`
	Photo   string `yaml:"photo" json:"photo"`
}

// Session is a single agenda entry. Seats == 0 means the session has no
// seat limit (service slots and unbounded talks).
type Session struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Seats       int         `json:"seats"`
	Speakers    []Speaker   `json:"speakers"`
	Kind        SessionKind `json:"kind"`
}

// IsService reports whether the session is a non-selectable service
// entry.
func (s Session) IsService() bool {
	return s.Kind == KindService
}

// Timeslot is one labelled time period of a day together with the
// sessions offered in it.
type Timeslot struct {
	Label    string    `json:"label"`
	Sessions []Session `json:"sessions"`
}

// ScheduleDay is an ordered sequence of timeslots. Order follows the
// source document.
type ScheduleDay struct {
	Slots []Timeslot `json:"slots"`
}

// Sessions returns the day's selectable sessions in slot order, service
// entries excluded.
func (d ScheduleDay) Sessions() []Session {
	var out []Session
	for _, slot := range d.Slots {
		for _, s := range slot.Sessions {
			if !s.IsService() {
				out = append(out, s)
			}
		}
	}
	return out
}

// Schedule is the full conference agenda, one entry per day.
type Schedule struct {
	Days []ScheduleDay `json:"days"`
}

// AllSessions returns every selectable session across all days, in
// day order, then slot order, then list order. Repeated calls yield the
// same sequence.
func (s *Schedule) AllSessions() []Session {
	var out []Session
	for _, day := range s.Days {
		out = append(out, day.Sessions()...)
	}
	return out
}

// Day returns the n-th schedule day (zero-based) or ErrNoSuchDay.
func (s *Schedule) Day(n int) (ScheduleDay, error) {
	if n < 0 || n >= len(s.Days) {
		return ScheduleDay{}, ErrNoSuchDay
	}
	return s.Days[n], nil
}

// AllSpeakers returns the distinct speakers across all sessions
// (service entries included), deduplicated by name and surname,
// first-seen order preserved.
func (s *Schedule) AllSpeakers() []Speaker {
	type identity struct{ name, surname string }
	seen := make(map[identity]bool)
	var out []Speaker
	for _, day := range s.Days {
		for _, slot := range day.Slots {
			for _, session := range slot.Sessions {
				for _, sp := range session.Speakers {
					id := identity{sp.Name, sp.Surname}
					if seen[id] {
						continue
					}
					seen[id] = true
					out = append(out, sp)
				}
			}
		}
	}
	return out
}
