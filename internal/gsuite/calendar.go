package gsuite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const eventMaxResults = 500

// externalIDPrefix marks events imported from Google Calendar.
const externalIDPrefix = "gcal_"

// CalendarProvider implements grooming.CalendarProvider on top of the
// Google Calendar API.
type CalendarProvider struct {
	accounts *Accounts
}

// NewCalendarProvider creates a new Google Calendar provider
func NewCalendarProvider(accounts *Accounts) *CalendarProvider {
	return &CalendarProvider{accounts: accounts}
}

func (p *CalendarProvider) service(ctx context.Context, userID string) (*calendar.Service, string, error) {
	tokenSource, err := p.accounts.TokenSource(ctx, userID, calendar.CalendarScope)
	if err != nil {
		return nil, "", err
	}

	calendarID, err := p.accounts.CalendarID(userID)
	if err != nil {
		return nil, "", err
	}

	service, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, calendarID, nil
}

// FetchEvents lists the user's events in [from, to] with attendee RSVP
// state.
func (p *CalendarProvider) FetchEvents(ctx context.Context, userID string, from, to time.Time) ([]grooming.Event, error) {
	service, calendarID, err := p.service(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := service.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(eventMaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]grooming.Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, grooming.Event{
			ExternalID: externalIDPrefix + item.Id,
			Title:      item.Summary,
			Start:      parseEventTime(item.Start),
			End:        parseEventTime(item.End),
			Attendees:  parseAttendees(item.Attendees),
		})
	}
	return events, nil
}

// MarkEventFree releases the slot by deleting the event without notifying
// attendees.
func (p *CalendarProvider) MarkEventFree(ctx context.Context, userID, externalID string) error {
	return p.deleteEvent(ctx, userID, externalID, "none")
}

// CancelEvent deletes the event and notifies attendees.
func (p *CalendarProvider) CancelEvent(ctx context.Context, userID, externalID string) error {
	return p.deleteEvent(ctx, userID, externalID, "all")
}

func (p *CalendarProvider) deleteEvent(ctx context.Context, userID, externalID, sendUpdates string) error {
	eventID, ok := strings.CutPrefix(externalID, externalIDPrefix)
	if !ok {
		return fmt.Errorf("event %q does not belong to google calendar", externalID)
	}

	service, calendarID, err := p.service(ctx, userID)
	if err != nil {
		return err
	}

	if err := service.Events.Delete(calendarID, eventID).SendUpdates(sendUpdates).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

func parseEventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func parseAttendees(attendees []*calendar.EventAttendee) []grooming.AttendeeResponse {
	responses := make([]grooming.AttendeeResponse, 0, len(attendees))
	for _, attendee := range attendees {
		if attendee == nil || attendee.Self {
			continue
		}
		responses = append(responses, grooming.AttendeeResponse{
			Email:    attendee.Email,
			Name:     attendee.DisplayName,
			Response: classifyResponse(attendee.ResponseStatus),
		})
	}
	return responses
}

func classifyResponse(status string) grooming.InviteStatus {
	switch status {
	case "accepted":
		return grooming.InviteAccepted
	case "declined":
		return grooming.InviteDeclined
	case "needsAction", "tentative":
		return grooming.InvitePending
	default:
		return grooming.InviteUnknown
	}
}
