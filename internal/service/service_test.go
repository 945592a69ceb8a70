package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/patterns42/workshop-registration/internal/attendee"
	"github.com/patterns42/workshop-registration/internal/model"
	"github.com/patterns42/workshop-registration/internal/schedule"
	"github.com/patterns42/workshop-registration/internal/service"
	"github.com/patterns42/workshop-registration/internal/storetest"
	"github.com/stretchr/testify/require"
)

const testHash = "test-hash-123"

func testSchedule() *schedule.Schedule {
	return &schedule.Schedule{Days: []schedule.ScheduleDay{{
		Slots: []schedule.Timeslot{
			{Label: "09:30 - 12:30", Sessions: []schedule.Session{
				{Title: "Docker", Seats: 2, Kind: schedule.KindWorkshop},
				{Title: "Machine learning", Seats: 3, Kind: schedule.KindWorkshop},
				{Title: "Coffee", Kind: schedule.KindService},
			}},
			{Label: "13:30 - 16:30", Sessions: []schedule.Session{
				{Title: "Go for Java developers", Seats: 2, Kind: schedule.KindPresentation},
				{Title: "Open space", Kind: schedule.KindWorkshop},
			}},
		},
	}}}
}

func testDirectory(t *testing.T) *attendee.Directory {
	t.Helper()
	source := "Xavier\tx-hash\nYvonne\ty-hash\nZoe\tz-hash\n"
	dir, err := attendee.ParseDirectory(strings.NewReader(source),
		attendee.Identity{Name: "Test Attendee", Hash: testHash})
	require.NoError(t, err)
	return dir
}

func newService(t *testing.T) (*service.RegistrationService, *storetest.Store) {
	t.Helper()
	store := storetest.New()
	svc := service.NewRegistrationService(store, testSchedule(), testDirectory(t))
	return svc, store
}

func pick(slot int, title string) model.SessionPick {
	return model.SessionPick{SlotID: slot, Title: title}
}

func TestSessionCapacitiesCoverAllSelectableSessions(t *testing.T) {
	svc, _ := newService(t)

	caps, err := svc.SessionCapacities(context.Background())
	require.NoError(t, err)

	require.Len(t, caps, 4) // service sessions carry no capacity entry
	require.Equal(t, model.SessionCapacity{Current: 0, Max: 2}, caps["Docker"])
	require.Equal(t, model.SessionCapacity{Current: 0, Max: 0}, caps["Open space"])
	require.NotContains(t, caps, "Coffee")
}

func TestSessionCapacitiesCountLatestPerAttendee(t *testing.T) {
	svc, store := newService(t)

	// Xavier first picked Docker, then moved to Machine learning.
	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Go for Java developers"))
	store.Seed("x-hash", pick(2, "Machine learning"), pick(4, "Go for Java developers"))
	store.Seed("y-hash", pick(2, "Docker"), pick(4, "Open space"))

	caps, err := svc.SessionCapacities(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, caps["Docker"].Current, "only Yvonne still holds Docker")
	require.Equal(t, 1, caps["Machine learning"].Current)
	require.Equal(t, 1, caps["Go for Java developers"].Current)
	require.Equal(t, 1, caps["Open space"].Current)
}

func TestSessionCapacitiesExcludeTestIdentity(t *testing.T) {
	svc, store := newService(t)

	store.Seed(testHash, pick(2, "Docker"), pick(4, "Open space"))

	caps, err := svc.SessionCapacities(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, caps["Docker"].Current)
	require.Equal(t, 0, caps["Open space"].Current)
}

func TestSessionCapacitiesIdempotent(t *testing.T) {
	svc, store := newService(t)
	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Open space"))

	first, err := svc.SessionCapacities(context.Background())
	require.NoError(t, err)
	second, err := svc.SessionCapacities(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRegisterAcceptsAndAppends(t *testing.T) {
	svc, store := newService(t)

	written, err := svc.Register(context.Background(), "x-hash",
		[]model.SessionPick{pick(2, "Docker"), pick(4, "Open space")})
	require.NoError(t, err)
	require.Equal(t, 2, written)
	require.Equal(t, 2, store.Len())

	previous, err := store.PreviousSessions(context.Background(), "x-hash")
	require.NoError(t, err)
	require.Equal(t, []string{"Docker", "Open space"}, previous)
}

func TestRegisterRejectsWhenFull(t *testing.T) {
	svc, store := newService(t)

	// Docker has two seats, both taken.
	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Open space"))
	store.Seed("y-hash", pick(2, "Docker"), pick(4, "Open space"))

	_, err := svc.Register(context.Background(), "z-hash",
		[]model.SessionPick{pick(2, "Docker"), pick(4, "Open space")})
	require.ErrorIs(t, err, service.ErrCapacityExceeded)
	require.Equal(t, 4, store.Len(), "rejection must not write rows")
}

func TestRegisterSelfExclusionAllowsResubmit(t *testing.T) {
	svc, store := newService(t)

	// Docker is full, but one of the seats is Xavier's own.
	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Open space"))
	store.Seed("y-hash", pick(2, "Docker"), pick(4, "Open space"))

	written, err := svc.Register(context.Background(), "x-hash",
		[]model.SessionPick{pick(2, "Docker"), pick(4, "Go for Java developers")})
	require.NoError(t, err)
	require.Equal(t, 2, written)
}

func TestRegisterUnknownHashFailsBeforeCapacityCheck(t *testing.T) {
	svc, store := newService(t)

	_, err := svc.Register(context.Background(), "stranger",
		[]model.SessionPick{pick(2, "Docker"), pick(4, "Open space")})
	require.ErrorIs(t, err, attendee.ErrUnknownAttendee)
	require.Equal(t, 0, store.HistoryCalls, "no capacity read for unknown hashes")
	require.Equal(t, 0, store.Len())
}

func TestRegisterRejectsUnknownTitle(t *testing.T) {
	svc, store := newService(t)

	_, err := svc.Register(context.Background(), "x-hash",
		[]model.SessionPick{pick(2, "Basket weaving"), pick(4, "Open space")})
	require.ErrorIs(t, err, service.ErrCapacityExceeded)
	require.Equal(t, 0, store.Len())
}

func TestRegisterRejectsServiceSession(t *testing.T) {
	svc, store := newService(t)

	_, err := svc.Register(context.Background(), "x-hash",
		[]model.SessionPick{pick(2, "Coffee"), pick(4, "Open space")})
	require.ErrorIs(t, err, service.ErrCapacityExceeded)
	require.Equal(t, 0, store.Len())
}

func TestRegisterUnboundedSessionNeverFills(t *testing.T) {
	svc, _ := newService(t)

	// Open space has no seat limit; admit well past any plausible cap.
	for _, hash := range []string{"x-hash", "y-hash", "z-hash"} {
		_, err := svc.Register(context.Background(), hash,
			[]model.SessionPick{pick(2, "Machine learning"), pick(4, "Open space")})
		require.NoError(t, err)
	}
}

func TestRegisterIsAtomic(t *testing.T) {
	svc, store := newService(t)

	// Go for Java developers is full; Machine learning has room. The
	// whole submission must be rejected with nothing written.
	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Go for Java developers"))
	store.Seed("y-hash", pick(2, "Docker"), pick(4, "Go for Java developers"))

	before := store.Len()
	_, err := svc.Register(context.Background(), "z-hash",
		[]model.SessionPick{pick(2, "Machine learning"), pick(4, "Go for Java developers")})
	require.ErrorIs(t, err, service.ErrCapacityExceeded)
	require.Equal(t, before, store.Len())
}

func TestSelectionPage(t *testing.T) {
	svc, store := newService(t)
	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Open space"))

	page, err := svc.SelectionPage(context.Background(), "x-hash")
	require.NoError(t, err)
	require.Equal(t, "Xavier", page.Name)
	require.False(t, page.IsTest)
	require.Equal(t, []string{"Docker", "Open space"}, page.Previous)
	require.Equal(t, 1, page.Popularity["Docker"].Current)
	require.Len(t, page.Day.Slots, 2)
}

func TestSelectionPageForTestIdentity(t *testing.T) {
	svc, _ := newService(t)

	page, err := svc.SelectionPage(context.Background(), testHash)
	require.NoError(t, err)
	require.True(t, page.IsTest)
	require.Equal(t, "Test Attendee", page.Name)
}

func TestSelectionPageUnknownHash(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SelectionPage(context.Background(), "stranger")
	require.ErrorIs(t, err, attendee.ErrUnknownAttendee)
}

func TestAdminExportFormatAndExclusions(t *testing.T) {
	svc, store := newService(t)

	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Open space"))
	store.Seed(testHash, pick(2, "Docker"), pick(4, "Open space"))

	export, err := svc.AdminExport(context.Background())
	require.NoError(t, err)

	lines := strings.Split(export, "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		fields := strings.Split(line, "###")
		require.Len(t, fields, 3)
		require.Equal(t, "x-hash", fields[0])
		require.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`, fields[2])
	}
	require.NotContains(t, export, testHash)
}

func TestAdminExportShowsLatestSubmissionOnly(t *testing.T) {
	svc, store := newService(t)

	store.Seed("x-hash", pick(2, "Docker"), pick(4, "Open space"))
	store.Seed("x-hash", pick(2, "Machine learning"), pick(4, "Open space"))

	export, err := svc.AdminExport(context.Background())
	require.NoError(t, err)
	require.NotContains(t, export, "Docker")
	require.Contains(t, export, "Machine learning")
}
