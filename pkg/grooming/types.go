package grooming

import (
	"strings"
	"time"
)

// QualificationStatus is the terminal verdict assigned to a meeting by the
// qualification engine, or one of the lifecycle states set externally
// (no-show marking, cancellation).
type QualificationStatus string

const (
	StatusPending      QualificationStatus = "pending"
	StatusQualified    QualificationStatus = "qualified"
	StatusDisqualified QualificationStatus = "disqualified"
	StatusNeedsReview  QualificationStatus = "needs_review"
	StatusNoShow       QualificationStatus = "no_show"
	StatusCancelled    QualificationStatus = "cancelled"
)

// InviteStatus classifies an attendee's RSVP response to a calendar invite.
type InviteStatus string

const (
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
	InvitePending  InviteStatus = "pending"
	InviteUnknown  InviteStatus = "unknown"
)

// AttendeeResponse is one attendee's RSVP state on a meeting.
type AttendeeResponse struct {
	Email    string       `json:"email"`
	Name     string       `json:"name,omitempty"`
	Response InviteStatus `json:"response"`
}

// Meeting is one imported calendar event or form booking.
//
// Qualification facts (Company, Revenue, CompanySize, Industry, Budget) are
// kept as raw strings the way they arrive from enrichment; an empty string
// means the fact is absent. Numeric coercion happens at rule evaluation.
type Meeting struct {
	ID         string
	UserID     string
	ExternalID string // provider-prefixed: gcal_, outlook_, calendly_
	Title      string

	StartTime time.Time
	EndTime   time.Time

	AttendeeEmail string
	AttendeeName  string

	Company     string
	Revenue     string
	CompanySize string
	Industry    string
	Budget      string

	Status              QualificationStatus
	QualificationReason string

	NoShowAt     *time.Time
	NoShowReason string

	RescheduleAttempts  int
	LastRescheduleAt    *time.Time
	RescheduleEmailSent bool
	OriginalStartTime   *time.Time

	InviteStatus      InviteStatus
	InviteAccepted    bool
	InviteLastChecked *time.Time
	AttendeeResponses []AttendeeResponse

	CalendarDeleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCalendly reports whether the meeting was imported from Calendly.
// Calendly owns the slot lifecycle, so these meetings are never passed to
// MarkEventFree.
func (m *Meeting) IsCalendly() bool {
	return strings.HasPrefix(m.ExternalID, "calendly_")
}

// RuleField is the closed set of meeting attributes a qualification rule
// may target.
type RuleField string

const (
	FieldRevenue     RuleField = "revenue"
	FieldCompanySize RuleField = "company_size"
	FieldIndustry    RuleField = "industry"
	FieldBudget      RuleField = "budget"
	FieldCompany     RuleField = "company"
)

// NumericField reports whether the field compares numerically.
func (f RuleField) Numeric() bool {
	switch f {
	case FieldRevenue, FieldCompanySize, FieldBudget:
		return true
	}
	return false
}

// RuleOperator is a comparison applied between a meeting field and a rule
// value.
type RuleOperator string

const (
	OpGreaterOrEqual RuleOperator = "gte"
	OpLessOrEqual    RuleOperator = "lte"
	OpEqual          RuleOperator = "eq"
	OpNotEqual       RuleOperator = "neq"
	OpContains       RuleOperator = "contains"
	OpNotContains    RuleOperator = "not_contains"
)

// QualificationRule is one user-defined predicate. Priority only informs
// display ordering; it never changes evaluation outcome.
type QualificationRule struct {
	ID       string
	UserID   string
	Field    RuleField
	Operator RuleOperator
	Value    string
	Priority int
	Active   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmailKind distinguishes the outbound templates the engine sends.
type EmailKind string

const (
	EmailConfirmation     EmailKind = "confirmation"
	EmailReminder         EmailKind = "reminder"
	EmailFollowUp         EmailKind = "follow_up"
	EmailNoShowReschedule EmailKind = "no_show_reschedule"
	EmailCalendarDeletion EmailKind = "calendar_deletion"
)

// EmailJobStatus is the dispatch state of a queued email.
type EmailJobStatus string

const (
	EmailPending EmailJobStatus = "pending"
	EmailSent    EmailJobStatus = "sent"
	EmailFailed  EmailJobStatus = "failed"
)

// EmailJob is one durable send intent. A job reaching EmailFailed is
// terminal and is never re-dequeued.
type EmailJob struct {
	ID        string
	UserID    string
	MeetingID string
	Kind      EmailKind

	To       string
	Subject  string
	HTMLBody string

	Status      EmailJobStatus
	ScheduledAt time.Time
	SentAt      *time.Time
	RetryCount  int
	LastError   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GroomingMetrics is one weekly automation-effectiveness snapshot. At most
// one row exists per (user, week start); recomputation overwrites.
type GroomingMetrics struct {
	UserID    string
	WeekStart time.Time
	WeekEnd   time.Time

	TotalMeetings    int
	Qualified        int
	Disqualified     int
	AutoQualified    int
	AutoDisqualified int
	NeedsReview      int

	MinutesSaved       int
	MinutesSpent       int
	AutomationAccuracy float64
}

// Settings is the per-user policy bag driving the remediation workflows.
type Settings struct {
	UserID string

	AutoRescheduleEnabled bool
	RescheduleDelayHours  int
	MaxRescheduleAttempts int

	BusinessHoursStart int
	BusinessHoursEnd   int
	IncludeWeekends    bool
	SearchWindowDays   int

	SendConfirmation   bool
	SendDeletionNotice bool
}

// DefaultSettings returns the policy applied when a user has never saved
// settings.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:                userID,
		AutoRescheduleEnabled: true,
		RescheduleDelayHours:  2,
		MaxRescheduleAttempts: 2,
		BusinessHoursStart:    9,
		BusinessHoursEnd:      17,
		IncludeWeekends:       false,
		SearchWindowDays:      14,
		SendConfirmation:      true,
		SendDeletionNotice:    true,
	}
}

// SlotPolicy is the subset of settings the slot finder consumes.
type SlotPolicy struct {
	BusinessHoursStart int
	BusinessHoursEnd   int
	IncludeWeekends    bool
	SearchWindowDays   int
}

// SlotPolicy extracts the slot-search policy from the full settings bag.
func (s *Settings) SlotPolicy() SlotPolicy {
	return SlotPolicy{
		BusinessHoursStart: s.BusinessHoursStart,
		BusinessHoursEnd:   s.BusinessHoursEnd,
		IncludeWeekends:    s.IncludeWeekends,
		SearchWindowDays:   s.SearchWindowDays,
	}
}

// Event is a calendar event as reported by a calendar provider, narrowed to
// what the engine needs: identity, window, and attendee RSVP state.
type Event struct {
	ExternalID string
	Title      string
	Start      time.Time
	End        time.Time
	Attendees  []AttendeeResponse
}
