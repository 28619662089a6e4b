package reschedule

import (
	"context"
	"fmt"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/slots"
	"github.com/sirupsen/logrus"
)

// Outcome classifies what a reschedule attempt achieved. A missing slot is
// deliberately distinct from a failed send so operators can tell the two
// apart.
type Outcome string

const (
	OutcomeRescheduled Outcome = "rescheduled"
	OutcomeNoSlots     Outcome = "no_slots"
	OutcomeSendFailed  Outcome = "send_failed"
	OutcomeSkipped     Outcome = "skipped"
)

// Result reports one meeting's reschedule attempt.
type Result struct {
	MeetingID string    `json:"meeting_id"`
	Outcome   Outcome   `json:"outcome"`
	SlotStart time.Time `json:"slot_start,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// SlotFinder produces the next conflict-free slot. Satisfied by
// slots.Finder.
type SlotFinder interface {
	FindNextSlot(ctx context.Context, userID string, from time.Time, policy grooming.SlotPolicy) (time.Time, bool, error)
}

// Enqueuer accepts outbound email jobs. Satisfied by mailqueue.Queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *grooming.EmailJob) (string, error)
}

// Coordinator detects no-show meetings eligible for remediation, finds a
// replacement slot, and drafts the reschedule offer.
type Coordinator struct {
	meetings grooming.MeetingStore
	settings grooming.SettingsStore
	finder   SlotFinder
	queue    Enqueuer
	log      *logrus.Logger

	now func() time.Time
}

// NewCoordinator creates a new auto-reschedule coordinator
func NewCoordinator(
	meetings grooming.MeetingStore,
	settings grooming.SettingsStore,
	finder SlotFinder,
	queue Enqueuer,
	log *logrus.Logger,
) *Coordinator {
	return &Coordinator{
		meetings: meetings,
		settings: settings,
		finder:   finder,
		queue:    queue,
		log:      log,
		now:      time.Now,
	}
}

// Name identifies the coordinator to the scheduler supervisor.
func (c *Coordinator) Name() string { return "auto-reschedule" }

// MarkNoShow marks a meeting as a no-show. Only meetings whose scheduled
// end time has passed may be marked; the marker is set once.
func (c *Coordinator) MarkNoShow(ctx context.Context, meetingID, reason string) error {
	meeting, err := c.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	now := c.now()
	if meeting.EndTime.After(now) {
		return grooming.ErrMeetingNotEnded
	}

	if reason == "" {
		reason = "did not attend"
	}

	meeting.Status = grooming.StatusNoShow
	if meeting.NoShowAt == nil {
		meeting.NoShowAt = &now
		meeting.NoShowReason = reason
	}

	return c.meetings.UpdateMeeting(ctx, meeting)
}

// Run is the poll tick: it scans for no-show meetings past the user's
// configured delay with remaining attempt budget and tries to reschedule
// each. Per-meeting errors are logged so one bad record never aborts the
// batch.
func (c *Coordinator) Run(ctx context.Context) error {
	candidates, err := c.meetings.MeetingsByStatus(ctx, grooming.StatusNoShow)
	if err != nil {
		return fmt.Errorf("failed to list no-show meetings: %w", err)
	}

	now := c.now()
	for _, meeting := range candidates {
		settings, err := c.settings.GetSettings(ctx, meeting.UserID)
		if err != nil {
			c.log.WithField("meeting_id", meeting.ID).WithError(err).Error("failed to load settings")
			continue
		}

		if !settings.AutoRescheduleEnabled {
			continue
		}
		if meeting.NoShowAt == nil || now.Sub(*meeting.NoShowAt) < time.Duration(settings.RescheduleDelayHours)*time.Hour {
			continue
		}
		if meeting.RescheduleAttempts >= settings.MaxRescheduleAttempts {
			continue
		}

		result, err := c.attempt(ctx, meeting, settings)
		if err != nil {
			c.log.WithField("meeting_id", meeting.ID).WithError(err).Error("reschedule attempt failed")
			continue
		}
		c.log.WithFields(logrus.Fields{
			"meeting_id": result.MeetingID,
			"outcome":    result.Outcome,
		}).Info("reschedule attempt finished")
	}

	return nil
}

// Trigger runs one reschedule attempt for a single meeting, bypassing the
// delay and opt-in filters. The max-attempts cap still applies.
func (c *Coordinator) Trigger(ctx context.Context, meetingID string) (*Result, error) {
	meeting, err := c.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != grooming.StatusNoShow {
		return nil, grooming.ErrNotNoShow
	}

	settings, err := c.settings.GetSettings(ctx, meeting.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if meeting.RescheduleAttempts >= settings.MaxRescheduleAttempts {
		return nil, grooming.ErrMaxAttempts
	}

	return c.attempt(ctx, meeting, settings)
}

// attempt performs one reschedule try. Attempt bookkeeping (count, last
// attempt, original time set once) is persisted regardless of outcome; the
// meeting only returns to pending with its new window when the offer was
// handed to the email queue.
func (c *Coordinator) attempt(ctx context.Context, meeting *grooming.Meeting, settings *grooming.Settings) (*Result, error) {
	now := c.now()

	slotStart, found, err := c.finder.FindNextSlot(ctx, meeting.UserID, now, settings.SlotPolicy())
	if err != nil {
		return nil, fmt.Errorf("slot search failed: %w", err)
	}

	meeting.RescheduleAttempts++
	meeting.LastRescheduleAt = &now
	if meeting.OriginalStartTime == nil {
		original := meeting.StartTime
		meeting.OriginalStartTime = &original
	}

	if !found {
		if err := c.meetings.UpdateMeeting(ctx, meeting); err != nil {
			return nil, fmt.Errorf("failed to persist attempt: %w", err)
		}
		return &Result{
			MeetingID: meeting.ID,
			Outcome:   OutcomeNoSlots,
			Message:   fmt.Sprintf("no slots available within %d days", settings.SearchWindowDays),
		}, nil
	}

	subject, body := draftOffer(meeting, meeting.RescheduleAttempts, slotStart)
	job := &grooming.EmailJob{
		UserID:    meeting.UserID,
		MeetingID: meeting.ID,
		Kind:      grooming.EmailNoShowReschedule,
		To:        meeting.AttendeeEmail,
		Subject:   subject,
		HTMLBody:  body,
	}

	if _, err := c.queue.Enqueue(ctx, job); err != nil {
		if uerr := c.meetings.UpdateMeeting(ctx, meeting); uerr != nil {
			return nil, fmt.Errorf("failed to persist attempt: %w", uerr)
		}
		return &Result{
			MeetingID: meeting.ID,
			Outcome:   OutcomeSendFailed,
			SlotStart: slotStart,
			Message:   err.Error(),
		}, nil
	}

	meeting.StartTime = slotStart
	meeting.EndTime = slotStart.Add(slots.SlotDuration)
	meeting.Status = grooming.StatusPending
	meeting.RescheduleEmailSent = true

	if err := c.meetings.UpdateMeeting(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to persist reschedule: %w", err)
	}

	return &Result{
		MeetingID: meeting.ID,
		Outcome:   OutcomeRescheduled,
		SlotStart: slotStart,
	}, nil
}
