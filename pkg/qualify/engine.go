package qualify

import (
	"context"
	"fmt"
	"strings"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/sirupsen/logrus"
)

// completenessFields are the facts the data-completeness heuristic checks;
// a meeting missing two or more of them needs human review even when every
// rule passes.
var completenessFields = []grooming.RuleField{
	grooming.FieldRevenue,
	grooming.FieldCompanySize,
	grooming.FieldCompany,
}

// Enqueuer accepts outbound email jobs. Satisfied by mailqueue.Queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *grooming.EmailJob) (string, error)
}

// Engine evaluates a user's active rule set against a meeting and assigns
// a terminal qualification status.
type Engine struct {
	meetings grooming.MeetingStore
	rules    grooming.RuleStore
	settings grooming.SettingsStore
	calendar grooming.CalendarProvider
	queue    Enqueuer
	log      *logrus.Logger
}

// NewEngine creates a new qualification engine
func NewEngine(
	meetings grooming.MeetingStore,
	rules grooming.RuleStore,
	settings grooming.SettingsStore,
	calendar grooming.CalendarProvider,
	queue Enqueuer,
	log *logrus.Logger,
) *Engine {
	return &Engine{
		meetings: meetings,
		rules:    rules,
		settings: settings,
		calendar: calendar,
		queue:    queue,
		log:      log,
	}
}

// Qualify evaluates the meeting against the owner's active rules and
// persists the verdict. The verdict is a pure function of the meeting facts
// and the active rule set; re-running with unchanged inputs produces the
// same status and reason. Missing data fails rules, it never errors.
func (e *Engine) Qualify(ctx context.Context, meetingID string) (grooming.QualificationStatus, string, error) {
	meeting, err := e.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return "", "", err
	}

	rules, err := e.rules.ActiveRules(ctx, meeting.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load active rules: %w", err)
	}

	status, reason := Evaluate(meeting, rules)

	previous := meeting.Status
	meeting.Status = status
	meeting.QualificationReason = reason

	// Side effects fire on the status transition only; a re-run with
	// unchanged inputs repeats the verdict without duplicating emails or
	// calendar deletions. They run before the qualification write so a freed
	// slot is recorded on the meeting, but their failures never block the
	// verdict.
	if status != previous {
		switch status {
		case grooming.StatusDisqualified:
			e.freeCalendarSlot(ctx, meeting)
		case grooming.StatusQualified:
			e.sendConfirmation(ctx, meeting)
		}
	}

	if err := e.meetings.UpdateMeeting(ctx, meeting); err != nil {
		return "", "", fmt.Errorf("failed to persist qualification: %w", err)
	}

	return status, reason, nil
}

// Evaluate computes the verdict without side effects. Any failing rule
// disqualifies, with the reason string joining every failing explanation in
// rule iteration order. When all rules pass, the completeness heuristic may
// still demand review; it never overrides a disqualification.
func Evaluate(meeting *grooming.Meeting, rules []*grooming.QualificationRule) (grooming.QualificationStatus, string) {
	var failures []string
	for _, rule := range rules {
		if pass, explanation := evaluateRule(meeting, rule); !pass {
			failures = append(failures, explanation)
		}
	}

	if len(failures) > 0 {
		return grooming.StatusDisqualified, strings.Join(failures, "; ")
	}

	if missing := missingCompleteness(meeting); len(missing) >= 2 {
		return grooming.StatusNeedsReview,
			fmt.Sprintf("insufficient data for automatic qualification (missing %s)", strings.Join(missing, ", "))
	}

	return grooming.StatusQualified, "all qualification rules passed"
}

func missingCompleteness(meeting *grooming.Meeting) []string {
	var missing []string
	for _, field := range completenessFields {
		if strings.TrimSpace(fieldValue(meeting, field)) == "" {
			missing = append(missing, string(field))
		}
	}
	return missing
}

// freeCalendarSlot asks the calendar provider to release the slot of a
// disqualified meeting. Best effort: failures are logged and abandoned,
// never retried, and never affect the qualification write. Calendly owns
// its own slot lifecycle, so Calendly meetings are skipped.
func (e *Engine) freeCalendarSlot(ctx context.Context, meeting *grooming.Meeting) {
	if meeting.ExternalID == "" || meeting.IsCalendly() {
		return
	}

	if err := e.calendar.MarkEventFree(ctx, meeting.UserID, meeting.ExternalID); err != nil {
		e.log.WithFields(logrus.Fields{
			"meeting_id":  meeting.ID,
			"external_id": meeting.ExternalID,
		}).WithError(err).Warn("failed to free calendar slot for disqualified meeting")
		return
	}

	meeting.CalendarDeleted = true
	e.sendDeletionNotice(ctx, meeting)
}

func (e *Engine) sendDeletionNotice(ctx context.Context, meeting *grooming.Meeting) {
	settings, err := e.settings.GetSettings(ctx, meeting.UserID)
	if err != nil || !settings.SendDeletionNotice || meeting.AttendeeEmail == "" {
		return
	}

	job := &grooming.EmailJob{
		UserID:    meeting.UserID,
		MeetingID: meeting.ID,
		Kind:      grooming.EmailCalendarDeletion,
		To:        meeting.AttendeeEmail,
		Subject:   fmt.Sprintf("Your meeting %q has been removed from the calendar", meeting.Title),
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>The meeting %q scheduled for %s no longer fits our current criteria and the calendar slot has been released. We apologize for any inconvenience.</p>",
			attendeeName(meeting), meeting.Title, meeting.StartTime.Format("Monday, January 2 at 3:04 PM"),
		),
	}

	if _, err := e.queue.Enqueue(ctx, job); err != nil {
		e.log.WithField("meeting_id", meeting.ID).WithError(err).Warn("failed to enqueue calendar deletion notice")
	}
}

// sendConfirmation enqueues a confirmation email for a freshly qualified
// meeting when the user's confirmation toggle is on. Enqueue failures are
// logged and never affect the verdict.
func (e *Engine) sendConfirmation(ctx context.Context, meeting *grooming.Meeting) {
	settings, err := e.settings.GetSettings(ctx, meeting.UserID)
	if err != nil || !settings.SendConfirmation || meeting.AttendeeEmail == "" {
		return
	}

	job := &grooming.EmailJob{
		UserID:    meeting.UserID,
		MeetingID: meeting.ID,
		Kind:      grooming.EmailConfirmation,
		To:        meeting.AttendeeEmail,
		Subject:   fmt.Sprintf("Confirmed: %s", meeting.Title),
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your meeting %q on %s is confirmed. Looking forward to speaking with you!</p>",
			attendeeName(meeting), meeting.Title, meeting.StartTime.Format("Monday, January 2 at 3:04 PM"),
		),
	}

	if _, err := e.queue.Enqueue(ctx, job); err != nil {
		e.log.WithField("meeting_id", meeting.ID).WithError(err).Warn("failed to enqueue confirmation email")
	}
}

func attendeeName(meeting *grooming.Meeting) string {
	if meeting.AttendeeName != "" {
		return meeting.AttendeeName
	}
	return "there"
}
