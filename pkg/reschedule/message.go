package reschedule

import (
	"fmt"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/slots"
	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// draftOffer renders the reschedule email for the given attempt number.
// The first attempt is apologetic and soft; later attempts use a
// final-notice framing.
func draftOffer(meeting *grooming.Meeting, attempt int, slotStart time.Time) (subject, body string) {
	name := meeting.AttendeeName
	if name == "" {
		name = "there"
	}
	when := slotStart.Format("Monday, January 2 at 3:04 PM")

	if attempt <= 1 {
		subject = fmt.Sprintf("Sorry we missed you - let's find a new time for %q", meeting.Title)
		body = fmt.Sprintf(
			"<p>Hi %s,</p>"+
				"<p>It looks like we missed each other for %q. No worries - these things happen!</p>"+
				"<p>We went ahead and found the next open slot on the calendar: <strong>%s</strong>. "+
				"If that works for you, you're all set; otherwise just reply and we'll find another time.</p>"+
				"<p>Talk soon!</p>",
			name, meeting.Title, when,
		)
	} else {
		subject = fmt.Sprintf("Final attempt to reschedule %q", meeting.Title)
		body = fmt.Sprintf(
			"<p>Hi %s,</p>"+
				"<p>We still haven't been able to connect for %q. This is our last automated attempt to reschedule.</p>"+
				"<p>We've reserved <strong>%s</strong> for you. If we don't hear back or the meeting is missed again, "+
				"the slot will be released.</p>",
			name, meeting.Title, when,
		)
	}

	body += fmt.Sprintf("<pre>%s</pre>", renderInvite(meeting, slotStart))
	return subject, body
}

// renderInvite builds an iCalendar REQUEST for the proposed slot so mail
// clients can surface an add-to-calendar action.
func renderInvite(meeting *grooming.Meeting, slotStart time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)

	event := cal.AddEvent(uuid.NewString())
	event.SetCreatedTime(time.Now())
	event.SetStartAt(slotStart)
	event.SetEndAt(slotStart.Add(slots.SlotDuration))
	event.SetSummary(meeting.Title)
	event.SetDescription("Rescheduled after a missed meeting")
	if meeting.AttendeeEmail != "" {
		event.AddAttendee(meeting.AttendeeEmail, ics.ParticipationStatusNeedsAction)
	}

	return cal.Serialize()
}
