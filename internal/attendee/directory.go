// Package attendee resolves opaque per-attendee hash tokens to display
// names. The directory is parsed once at startup from a tab-separated
// source and is read-only afterwards.
package attendee

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownAttendee is returned when a hash does not resolve.
var ErrUnknownAttendee = errors.New("unknown attendee hash")

// Identity is one directory entry.
type Identity struct {
	Name string
	Hash string
}

// Directory maps hash tokens to identities. It always contains the
// reserved identity it was constructed with, even when the source
// redefines that hash.
type Directory struct {
	byHash   map[string]Identity
	reserved Identity
}

// ParseDirectory reads `name<TAB>hash` lines. Blank lines are skipped;
// a non-blank line without a tab is a parse error. Duplicate hashes
// keep the last line. The reserved identity is inserted after parsing
// so it wins any collision.
func ParseDirectory(r io.Reader, reserved Identity) (*Directory, error) {
	byHash := make(map[string]Identity)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		name, hash, ok := strings.Cut(text, "\t")
		if !ok || hash == "" {
			return nil, fmt.Errorf("attendee source line %d: expected name<TAB>hash", line)
		}
		byHash[hash] = Identity{Name: name, Hash: hash}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read attendee source: %w", err)
	}

	byHash[reserved.Hash] = reserved

	return &Directory{byHash: byHash, reserved: reserved}, nil
}

// Lookup resolves a hash or returns ErrUnknownAttendee.
func (d *Directory) Lookup(hash string) (Identity, error) {
	id, ok := d.byHash[hash]
	if !ok {
		return Identity{}, ErrUnknownAttendee
	}
	return id, nil
}

// Reserved returns the synthetic test identity.
func (d *Directory) Reserved() Identity {
	return d.reserved
}

// Len returns the number of entries, the reserved identity included.
func (d *Directory) Len() int {
	return len(d.byHash)
}
