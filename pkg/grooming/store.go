package grooming

import (
	"context"
	"time"
)

// MeetingStore is the persistence surface for meetings. Implementations
// return ErrMeetingNotFound for missing ids.
type MeetingStore interface {
	GetMeeting(ctx context.Context, id string) (*Meeting, error)
	SaveMeeting(ctx context.Context, m *Meeting) error
	UpdateMeeting(ctx context.Context, m *Meeting) error

	// MeetingsByUser returns every meeting owned by the user.
	MeetingsByUser(ctx context.Context, userID string) ([]*Meeting, error)

	// MeetingsByStatus returns all meetings in the given status across users.
	MeetingsByStatus(ctx context.Context, status QualificationStatus) ([]*Meeting, error)

	// MeetingsStartingBetween returns meetings (all users) whose start time
	// falls in [from, to).
	MeetingsStartingBetween(ctx context.Context, from, to time.Time) ([]*Meeting, error)

	// MeetingsCreatedBetween returns the user's meetings created in [from, to).
	MeetingsCreatedBetween(ctx context.Context, userID string, from, to time.Time) ([]*Meeting, error)

	// UserIDs returns the distinct owners of all stored meetings.
	UserIDs(ctx context.Context) ([]string, error)
}

// RuleStore is the persistence surface for qualification rules.
type RuleStore interface {
	ActiveRules(ctx context.Context, userID string) ([]*QualificationRule, error)
	RulesByUser(ctx context.Context, userID string) ([]*QualificationRule, error)
	SaveRule(ctx context.Context, r *QualificationRule) error
	DeleteRule(ctx context.Context, id string) error
}

// EmailJobStore is the persistence surface for the outbound email queue.
type EmailJobStore interface {
	CreateJob(ctx context.Context, j *EmailJob) error
	GetJob(ctx context.Context, id string) (*EmailJob, error)
	UpdateJob(ctx context.Context, j *EmailJob) error

	// DueJobs returns pending jobs with scheduled_at <= now.
	DueJobs(ctx context.Context, now time.Time) ([]*EmailJob, error)

	// JobsByMeeting returns every job attached to a meeting, newest first.
	JobsByMeeting(ctx context.Context, meetingID string) ([]*EmailJob, error)
}

// MetricsStore is the persistence surface for weekly grooming metrics.
type MetricsStore interface {
	// UpsertMetrics writes the snapshot, replacing any existing row for the
	// same (user, week start).
	UpsertMetrics(ctx context.Context, m *GroomingMetrics) error
	MetricsByUser(ctx context.Context, userID string) ([]*GroomingMetrics, error)
}

// SettingsStore reads per-user policy. Implementations return
// DefaultSettings for users that never saved any.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}

// CalendarProvider is the narrow capability contract the engine needs from
// an external calendar integration.
type CalendarProvider interface {
	FetchEvents(ctx context.Context, userID string, from, to time.Time) ([]Event, error)
	MarkEventFree(ctx context.Context, userID, externalID string) error
	CancelEvent(ctx context.Context, userID, externalID string) error
}

// MailSender delivers one outbound email using the user's connected mail
// credential. A missing credential surfaces as ErrNoCredential.
type MailSender interface {
	Send(ctx context.Context, userID, to, subject, htmlBody string) error
}
