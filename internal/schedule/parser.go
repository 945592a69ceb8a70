package schedule

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultKindLookup maps the agenda document's kind strings onto
// SessionKind values. Matching is case-sensitive; any string not in the
// table (or a missing kind field) maps to KindService, so malformed
// entries are excluded from selection rather than rejected.
var DefaultKindLookup = map[string]SessionKind{
	"Warsztat":    KindWorkshop,
	"Prezentacja": KindPresentation,
	"Serwis":      KindService,
}

// Parser loads the conference agenda. It tries the remote URL once and
// falls back to a bundled local copy on any fetch or parse failure; a
// failure of the local copy is returned to the caller and aborts
// startup.
type Parser struct {
	url       string
	localPath string
	client    *http.Client
	kinds     map[string]SessionKind
}

// Option customises a Parser.
type Option func(*Parser)

// WithHTTPClient replaces the HTTP client used for the remote fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Parser) { p.client = c }
}

// WithKindLookup replaces the session-kind lookup table.
func WithKindLookup(kinds map[string]SessionKind) Option {
	return func(p *Parser) { p.kinds = kinds }
}

// NewParser constructs a Parser. url may be empty, in which case only
// the local copy is consulted.
func NewParser(url, localPath string, opts ...Option) *Parser {
	p := &Parser{
		url:       url,
		localPath: localPath,
		client:    &http.Client{Timeout: 10 * time.Second},
		kinds:     DefaultKindLookup,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load obtains and parses the agenda. The remote source gets a single
// attempt, no retries; fallback errors wrap the local path.
func (p *Parser) Load(ctx context.Context) (*Schedule, error) {
	if p.url != "" {
		data, err := p.fetch(ctx)
		if err == nil {
			var s *Schedule
			if s, err = p.Parse(data); err == nil {
				return s, nil
			}
		}
		log.Printf("schedule: remote %s unusable (%v), using local copy %s", p.url, err, p.localPath)
	}

	data, err := os.ReadFile(p.localPath)
	if err != nil {
		return nil, fmt.Errorf("read local schedule copy: %w", err)
	}
	s, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse local schedule copy %s: %w", p.localPath, err)
	}
	return s, nil
}

func (p *Parser) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build schedule request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schedule: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read schedule body: %w", err)
	}
	return data, nil
}

// Parse decodes an agenda document. The document has a top-level
// "agenda" list of days; each day is a mapping from timeslot label to a
// list of session objects. Slot order follows the document.
func (p *Parser) Parse(data []byte) (*Schedule, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	s := &Schedule{}
	for _, day := range doc.Agenda {
		var d ScheduleDay
		for _, slot := range day.slots {
			t := Timeslot{Label: slot.label}
			for _, raw := range slot.sessions {
				t.Sessions = append(t.Sessions, Session{
					Title:       raw.Title,
					Description: raw.Abstract,
					Seats:       raw.Seats,
					Speakers:    raw.Speakers,
					Kind:        p.kinds[raw.Session],
				})
			}
			d.Slots = append(d.Slots, t)
		}
		s.Days = append(s.Days, d)
	}
	return s, nil
}

type rawDocument struct {
	Agenda []rawDay `yaml:"agenda"`
}

type rawSession struct {
	Title    string    `yaml:"title"`
	Abstract string    `yaml:"abstract"`
	Seats    int       `yaml:"seats"`
	Speakers []Speaker `yaml:"speakers"`
	Session  string    `yaml:"session"`
}

type rawSlot struct {
	label    string
	sessions []rawSession
}

// rawDay decodes a day object by hand to keep the slot labels in
// document order; a plain map would lose it.
type rawDay struct {
	slots []rawSlot
}

func (d *rawDay) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("schedule day: expected mapping, got %s", value.Tag)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var sessions []rawSession
		if err := val.Decode(&sessions); err != nil {
			return fmt.Errorf("timeslot %q: %w", key.Value, err)
		}
		d.slots = append(d.slots, rawSlot{label: key.Value, sessions: sessions})
	}
	return nil
}
