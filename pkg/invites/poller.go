package invites

import (
	"context"
	"fmt"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/sirupsen/logrus"
)

// trackingWindow is how far either side of now the poller refreshes RSVP
// state. The leading half covers upcoming meetings, where pending invites
// actually resolve.
const trackingWindow = 30 * 24 * time.Hour

// staleAfter is how long a pending invite may sit unanswered before the
// meeting counts as at risk.
const staleAfter = 24 * time.Hour

// Poller periodically refreshes attendee RSVP status for recent meetings.
// It only touches invite fields; qualification and reschedule state are
// read-only to it.
type Poller struct {
	meetings grooming.MeetingStore
	calendar grooming.CalendarProvider
	log      *logrus.Logger

	now func() time.Time
}

// NewPoller creates a new invite tracking poller
func NewPoller(meetings grooming.MeetingStore, calendar grooming.CalendarProvider, log *logrus.Logger) *Poller {
	return &Poller{
		meetings: meetings,
		calendar: calendar,
		log:      log,
		now:      time.Now,
	}
}

// Name identifies the poller to the scheduler supervisor.
func (p *Poller) Name() string { return "invite-tracking" }

// Run refreshes invite status for every meeting inside the trailing
// tracking window, user by user. Per-user calendar failures are logged and
// skipped so one broken integration never aborts the batch.
func (p *Poller) Run(ctx context.Context) error {
	now := p.now()
	from := now.Add(-trackingWindow)

	meetings, err := p.meetings.MeetingsStartingBetween(ctx, from, now.Add(trackingWindow))
	if err != nil {
		return fmt.Errorf("failed to list meetings in tracking window: %w", err)
	}

	byUser := make(map[string][]*grooming.Meeting)
	for _, m := range meetings {
		byUser[m.UserID] = append(byUser[m.UserID], m)
	}

	for userID, userMeetings := range byUser {
		if err := p.refreshUser(ctx, userID, userMeetings); err != nil {
			p.log.WithField("user_id", userID).WithError(err).Error("invite refresh failed")
		}
	}
	return nil
}

// CheckUser refreshes invite status for a single user on demand.
func (p *Poller) CheckUser(ctx context.Context, userID string) error {
	now := p.now()
	from := now.Add(-trackingWindow)

	meetings, err := p.meetings.MeetingsStartingBetween(ctx, from, now.Add(trackingWindow))
	if err != nil {
		return fmt.Errorf("failed to list meetings in tracking window: %w", err)
	}

	var userMeetings []*grooming.Meeting
	for _, m := range meetings {
		if m.UserID == userID {
			userMeetings = append(userMeetings, m)
		}
	}

	return p.refreshUser(ctx, userID, userMeetings)
}

func (p *Poller) refreshUser(ctx context.Context, userID string, meetings []*grooming.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}

	now := p.now()
	events, err := p.calendar.FetchEvents(ctx, userID, now.Add(-trackingWindow), now.Add(trackingWindow))
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	byExternalID := make(map[string]grooming.Event, len(events))
	for _, ev := range events {
		byExternalID[ev.ExternalID] = ev
	}

	for _, meeting := range meetings {
		event, ok := byExternalID[meeting.ExternalID]

		checked := now
		meeting.InviteLastChecked = &checked
		if !ok {
			meeting.InviteStatus = grooming.InviteUnknown
		} else {
			meeting.AttendeeResponses = event.Attendees
			meeting.InviteStatus = aggregateStatus(event.Attendees)
			meeting.InviteAccepted = meeting.InviteStatus == grooming.InviteAccepted
		}

		if err := p.meetings.UpdateMeeting(ctx, meeting); err != nil {
			p.log.WithField("meeting_id", meeting.ID).WithError(err).Error("failed to persist invite state")
		}
	}

	return nil
}

// aggregateStatus folds per-attendee responses into the meeting-level
// invite status. One acceptance is enough to count the invite as accepted.
func aggregateStatus(responses []grooming.AttendeeResponse) grooming.InviteStatus {
	anyDeclined := false
	anyPending := false
	for _, r := range responses {
		switch r.Response {
		case grooming.InviteAccepted:
			return grooming.InviteAccepted
		case grooming.InviteDeclined:
			anyDeclined = true
		case grooming.InvitePending:
			anyPending = true
		}
	}

	if anyDeclined {
		return grooming.InviteDeclined
	}
	if anyPending {
		return grooming.InvitePending
	}
	return grooming.InviteUnknown
}

// AtRisk reports whether a meeting needs attention: the invite was declined,
// or it has been pending for more than 24 hours since the last check.
// Consumed by reporting; nothing is persisted.
func AtRisk(meeting *grooming.Meeting, now time.Time) bool {
	switch meeting.InviteStatus {
	case grooming.InviteDeclined:
		return true
	case grooming.InvitePending:
		return meeting.InviteLastChecked != nil && now.Sub(*meeting.InviteLastChecked) > staleAfter
	}
	return false
}
