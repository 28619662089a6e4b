package invites

import (
	"context"
	"errors"
	"testing"
	"time"

	store "github.com/MattHurst33/replit-calander-sub000/internal/stores/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// stubCalendar serves canned events per user
type stubCalendar struct {
	events  map[string][]grooming.Event
	failure error
}

func (c *stubCalendar) FetchEvents(_ context.Context, userID string, _, _ time.Time) ([]grooming.Event, error) {
	if c.failure != nil {
		return nil, c.failure
	}
	return c.events[userID], nil
}

func (c *stubCalendar) MarkEventFree(_ context.Context, _, _ string) error { return nil }
func (c *stubCalendar) CancelEvent(_ context.Context, _, _ string) error   { return nil }

func newPoller(t *testing.T, calendar grooming.CalendarProvider, now time.Time) (*Poller, *store.InMemoryStore) {
	t.Helper()

	s := store.NewInMemoryStore()
	p := NewPoller(s, calendar, logrus.New())
	p.now = func() time.Time { return now }
	return p, s
}

func trackedMeeting(id, userID, externalID string, start time.Time) *grooming.Meeting {
	return &grooming.Meeting{
		ID:         id,
		UserID:     userID,
		ExternalID: externalID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     grooming.StatusPending,
	}
}

func TestRunUpdatesInviteStatus(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	calendar := &stubCalendar{events: map[string][]grooming.Event{
		"user-1": {{
			ExternalID: "gcal_a",
			Attendees: []grooming.AttendeeResponse{
				{Email: "prospect@acme.test", Response: grooming.InviteAccepted},
			},
		}},
	}}
	p, s := newPoller(t, calendar, now)

	assert.Nil(s.SaveMeeting(ctx, trackedMeeting("m1", "user-1", "gcal_a", now.Add(24*time.Hour))))

	assert.Nil(p.Run(ctx))

	m, err := s.GetMeeting(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.InviteAccepted, m.InviteStatus)
	assert.True(m.InviteAccepted)
	assert.NotNil(m.InviteLastChecked)
	assert.Equal(now, *m.InviteLastChecked)
	assert.Len(m.AttendeeResponses, 1)
}

func TestRunMarksUnmatchedMeetingsUnknown(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p, s := newPoller(t, &stubCalendar{events: map[string][]grooming.Event{}}, now)

	assert.Nil(s.SaveMeeting(ctx, trackedMeeting("m1", "user-1", "gcal_gone", now.Add(24*time.Hour))))

	assert.Nil(p.Run(ctx))

	m, err := s.GetMeeting(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.InviteUnknown, m.InviteStatus)
	assert.False(m.InviteAccepted)
	assert.NotNil(m.InviteLastChecked)
}

func TestRunSkipsMeetingsOutsideWindow(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p, s := newPoller(t, &stubCalendar{events: map[string][]grooming.Event{}}, now)

	old := trackedMeeting("m1", "user-1", "gcal_old", now.Add(-45*24*time.Hour))
	assert.Nil(s.SaveMeeting(ctx, old))

	assert.Nil(p.Run(ctx))

	m, err := s.GetMeeting(ctx, "m1")
	assert.Nil(err)
	assert.Nil(m.InviteLastChecked)
}

func TestRunIsolatesUserFailures(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	calendar := &stubCalendar{failure: errors.New("calendar unavailable")}
	p, s := newPoller(t, calendar, now)

	assert.Nil(s.SaveMeeting(ctx, trackedMeeting("m1", "user-1", "gcal_a", now.Add(24*time.Hour))))

	// The per-user failure is logged, not returned
	assert.Nil(p.Run(ctx))

	m, err := s.GetMeeting(ctx, "m1")
	assert.Nil(err)
	assert.Nil(m.InviteLastChecked)
}

func TestAggregateStatus(t *testing.T) {
	assert := assert.New(t)

	// Any acceptance wins
	assert.Equal(grooming.InviteAccepted, aggregateStatus([]grooming.AttendeeResponse{
		{Response: grooming.InviteDeclined},
		{Response: grooming.InviteAccepted},
	}))

	// Declined beats pending
	assert.Equal(grooming.InviteDeclined, aggregateStatus([]grooming.AttendeeResponse{
		{Response: grooming.InvitePending},
		{Response: grooming.InviteDeclined},
	}))

	assert.Equal(grooming.InvitePending, aggregateStatus([]grooming.AttendeeResponse{
		{Response: grooming.InvitePending},
	}))

	assert.Equal(grooming.InviteUnknown, aggregateStatus(nil))
	assert.Equal(grooming.InviteUnknown, aggregateStatus([]grooming.AttendeeResponse{
		{Response: grooming.InviteUnknown},
	}))
}

func TestAtRisk(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	fresh := now.Add(-time.Hour)
	stale := now.Add(-25 * time.Hour)

	assert.True(AtRisk(&grooming.Meeting{InviteStatus: grooming.InviteDeclined}, now))

	assert.False(AtRisk(&grooming.Meeting{
		InviteStatus:      grooming.InvitePending,
		InviteLastChecked: &fresh,
	}, now))
	assert.True(AtRisk(&grooming.Meeting{
		InviteStatus:      grooming.InvitePending,
		InviteLastChecked: &stale,
	}, now))

	// Pending with no check yet is not flagged
	assert.False(AtRisk(&grooming.Meeting{InviteStatus: grooming.InvitePending}, now))

	assert.False(AtRisk(&grooming.Meeting{InviteStatus: grooming.InviteAccepted}, now))
	assert.False(AtRisk(&grooming.Meeting{InviteStatus: grooming.InviteUnknown}, now))
}
