package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicalert/internal/domain/entity"
	"civicalert/pkg/errors"
)

type sessionEvent struct {
	name    string
	payload interface{}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []sessionEvent
}

func (r *eventRecorder) sink(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sessionEvent{event, payload})
}

func (r *eventRecorder) last(name string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].name == name {
			return r.events[i].payload
		}
	}
	return nil
}

type sessionFixture struct {
	session *MapSession
	surface *fakeSurface
	users   *fakeUserRepo
	tickets *fakeTicketRepo
	feed    *TicketFeed
	events  *eventRecorder
}

func openSession(t *testing.T, profile *entity.UserProfile) *sessionFixture {
	t.Helper()
	users := newFakeUserRepo(profile)
	tickets := newFakeTicketRepo()
	feed := NewTicketFeed(tickets)
	surface := newFakeSurface()
	events := &eventRecorder{}

	session := NewMapSession(MapSessionDeps{
		Users:    users,
		Tickets:  NewTicketUseCase(tickets, users, &fakeFiles{}, nil),
		Feed:     feed,
		Surfaces: immediateFactory(surface),
		Map:      testMapOptions,
	}, profile, events.sink)
	session.Open(context.Background())
	session.Map().wait()
	require.True(t, session.Map().Ready())

	t.Cleanup(func() {
		session.Close()
		session.Map().wait()
	})
	return &sessionFixture{session, surface, users, tickets, feed, events}
}

func TestSessionOnboardingThenReport(t *testing.T) {
	f := openSession(t, newcomer())
	ctx := context.Background()

	state := f.events.last(EventOnboardingState).(OnboardingStatePayload)
	assert.Equal(t, OnboardingSelecting, state.State)

	err := f.session.StartReport()
	assert.True(t, errors.Is(err, errors.CodeValidation), "reporting waits for a home city")
	assert.Equal(t, ErrorPayload{Code: errors.CodeValidation, Message: "Set your home city before reporting an issue"}, f.events.last(EventError))

	home := entity.Coordinate{Latitude: 46.0, Longitude: 25.0}
	f.surface.click(home)
	state = f.events.last(EventOnboardingState).(OnboardingStatePayload)
	assert.Equal(t, OnboardingNaming, state.State)
	assert.Equal(t, &home, state.Pending)

	require.NoError(t, f.session.NameHomeCity(ctx, "Cluj"))
	state = f.events.last(EventOnboardingState).(OnboardingStatePayload)
	assert.Equal(t, OnboardingComplete, state.State)
	assert.Equal(t, &home, f.session.Map().Center())

	require.NoError(t, f.session.StartReport())
	report := f.events.last(EventReportState).(ReportStatePayload)
	assert.Equal(t, ReportPickingLocation, report.State)
	assert.False(t, report.PanelVisible)

	spot := entity.Coordinate{Latitude: 46.02, Longitude: 25.03}
	f.surface.click(spot)
	report = f.events.last(EventReportState).(ReportStatePayload)
	assert.Equal(t, ReportFormOpen, report.State)
	assert.Equal(t, &spot, report.Location)
	assert.Equal(t, OnboardingComplete, f.session.Onboarding().State(), "click went to the report flow")

	require.NoError(t, f.session.UpdateReport(ReportForm{Category: "safety", Description: "Broken light"}))
	ticket, err := f.session.SubmitReport(ctx)
	require.NoError(t, err)
	report = f.events.last(EventReportState).(ReportStatePayload)
	assert.Equal(t, ReportIdle, report.State)
	assert.Equal(t, ticket.ID, report.TicketID)

	markers, _, _, _ := f.surface.snapshot()
	assert.Equal(t, []entity.Coordinate{spot}, markers)
}

func TestSessionFiltersSnapshots(t *testing.T) {
	profile := newcomer()
	profile.HomeCity = &entity.HomeCity{Name: "Cluj", Latitude: 46.0, Longitude: 25.0}
	f := openSession(t, profile)

	now := time.Now()
	f.feed.publish([]*entity.Ticket{
		{ID: "mine-near", UserID: "u1", Category: entity.CategorySafety, Location: entity.Coordinate{Latitude: 46.01, Longitude: 25.01}, CreatedAt: now},
		{ID: "other-far", UserID: "u2", Category: entity.CategoryEnvironment, Location: entity.Coordinate{Latitude: 44.43, Longitude: 26.10}, CreatedAt: now},
		{ID: "other-near", UserID: "u2", Category: entity.CategoryEnvironment, Location: entity.Coordinate{Latitude: 46.02, Longitude: 25.0}, CreatedAt: now},
	})

	ids := func() []string {
		snap := f.events.last(EventTicketsSnapshot).(TicketsSnapshotPayload)
		out := make([]string, 0, len(snap.Tickets))
		for _, t := range snap.Tickets {
			out = append(out, t.ID)
		}
		return out
	}
	assert.Equal(t, []string{"mine-near", "other-far", "other-near"}, ids())

	require.NoError(t, f.session.SetFilter("mine", ""))
	assert.Equal(t, []string{"mine-near"}, ids())

	require.NoError(t, f.session.SetFilter("nearby", "environment"))
	assert.Equal(t, []string{"other-near"}, ids())
	snap := f.events.last(EventTicketsSnapshot).(TicketsSnapshotPayload)
	assert.Equal(t, TabNearby, snap.Tab)
	assert.Equal(t, "environment", snap.Category)

	assert.Error(t, f.session.SetFilter("popular", ""))
	assert.Error(t, f.session.SetFilter("all", "noise"))
	assert.Equal(t, []string{"other-near"}, ids(), "bad filters leave the list alone")
}

func TestSessionCloseStopsEverything(t *testing.T) {
	f := openSession(t, newcomer())

	f.session.Close()
	f.session.Map().wait()
	f.session.Close()

	_, _, _, destroyed := f.surface.snapshot()
	assert.True(t, destroyed)

	before := len(f.events.events)
	f.feed.publish([]*entity.Ticket{{ID: "late"}})
	assert.Equal(t, before, len(f.events.events))
}
