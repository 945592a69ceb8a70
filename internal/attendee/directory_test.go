package attendee_test

import (
	"strings"
	"testing"

	"github.com/patterns42/workshop-registration/internal/attendee"
	"github.com/stretchr/testify/require"
)

var reserved = attendee.Identity{Name: "Test Attendee", Hash: "test-hash-123"}

func TestParseSkipsBlankLines(t *testing.T) {
	source := "Alice Adams\talice-hash\n" +
		"Bob Brown\tbob-hash\n" +
		"\n" +
		"\n" +
		"Carol Clark\tcarol-hash"

	dir, err := attendee.ParseDirectory(strings.NewReader(source), reserved)
	require.NoError(t, err)
	require.Equal(t, 4, dir.Len()) // three parsed entries plus the reserved identity

	id, err := dir.Lookup("carol-hash")
	require.NoError(t, err)
	require.Equal(t, "Carol Clark", id.Name)
}

func TestReservedIdentityAlwaysResolves(t *testing.T) {
	dir, err := attendee.ParseDirectory(strings.NewReader(""), reserved)
	require.NoError(t, err)

	id, err := dir.Lookup(reserved.Hash)
	require.NoError(t, err)
	require.Equal(t, reserved, id)
}

func TestReservedIdentityWinsCollision(t *testing.T) {
	source := "Impostor\ttest-hash-123\n"
	dir, err := attendee.ParseDirectory(strings.NewReader(source), reserved)
	require.NoError(t, err)

	id, err := dir.Lookup(reserved.Hash)
	require.NoError(t, err)
	require.Equal(t, reserved.Name, id.Name)
}

func TestDuplicateHashLastLineWins(t *testing.T) {
	source := "First Name\tdup-hash\n" +
		"Second Name\tdup-hash\n"
	dir, err := attendee.ParseDirectory(strings.NewReader(source), reserved)
	require.NoError(t, err)

	id, err := dir.Lookup("dup-hash")
	require.NoError(t, err)
	require.Equal(t, "Second Name", id.Name)
}

func TestMalformedLineIsError(t *testing.T) {
	_, err := attendee.ParseDirectory(strings.NewReader("no tab here"), reserved)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")
}

func TestLookupUnknownHash(t *testing.T) {
	dir, err := attendee.ParseDirectory(strings.NewReader("Alice\talice-hash\n"), reserved)
	require.NoError(t, err)

	_, err = dir.Lookup("nope")
	require.ErrorIs(t, err, attendee.ErrUnknownAttendee)
}
