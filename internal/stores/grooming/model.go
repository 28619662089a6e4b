package grooming

import (
	"time"

	"gorm.io/gorm"
)

// MeetingModel represents the database model for meetings
type MeetingModel struct {
	ID        string         `json:"id" gorm:"column:id;primaryKey;size:36"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`

	UserID     string `json:"user_id" gorm:"column:user_id;not null;index;size:36"`
	ExternalID string `json:"external_id" gorm:"column:external_id;size:255;index"`
	Title      string `json:"title" gorm:"column:title;size:500"`

	StartTime time.Time `json:"start_time" gorm:"column:start_time;index"`
	EndTime   time.Time `json:"end_time" gorm:"column:end_time"`

	AttendeeEmail string `json:"attendee_email" gorm:"column:attendee_email;size:255"`
	AttendeeName  string `json:"attendee_name" gorm:"column:attendee_name;size:255"`

	Company     string `json:"company" gorm:"column:company;size:255"`
	Revenue     string `json:"revenue" gorm:"column:revenue;size:64"`
	CompanySize string `json:"company_size" gorm:"column:company_size;size:64"`
	Industry    string `json:"industry" gorm:"column:industry;size:255"`
	Budget      string `json:"budget" gorm:"column:budget;size:64"`

	Status              string `json:"status" gorm:"column:status;size:32;index;default:pending"`
	QualificationReason string `json:"qualification_reason" gorm:"column:qualification_reason;type:text"`

	NoShowAt     *time.Time `json:"no_show_at" gorm:"column:no_show_at"`
	NoShowReason string     `json:"no_show_reason" gorm:"column:no_show_reason;size:500"`

	RescheduleAttempts  int        `json:"reschedule_attempts" gorm:"column:reschedule_attempts;default:0"`
	LastRescheduleAt    *time.Time `json:"last_reschedule_at" gorm:"column:last_reschedule_at"`
	RescheduleEmailSent bool       `json:"reschedule_email_sent" gorm:"column:reschedule_email_sent;default:false"`
	OriginalStartTime   *time.Time `json:"original_start_time" gorm:"column:original_start_time"`

	InviteStatus      string     `json:"invite_status" gorm:"column:invite_status;size:32"`
	InviteAccepted    bool       `json:"invite_accepted" gorm:"column:invite_accepted;default:false"`
	InviteLastChecked *time.Time `json:"invite_last_checked" gorm:"column:invite_last_checked"`
	AttendeeResponses string     `json:"attendee_responses" gorm:"column:attendee_responses;type:text"` // JSON-encoded

	CalendarDeleted bool `json:"calendar_deleted" gorm:"column:calendar_deleted;default:false"`
}

// TableName sets the table name for GORM
func (MeetingModel) TableName() string {
	return "meetings"
}

// RuleModel represents the database model for qualification rules
type RuleModel struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	UserID   string `json:"user_id" gorm:"column:user_id;not null;index;size:36"`
	Field    string `json:"field" gorm:"column:field;not null;size:32"`
	Operator string `json:"operator" gorm:"column:operator;not null;size:32"`
	Value    string `json:"value" gorm:"column:value;size:255"`
	Priority int    `json:"priority" gorm:"column:priority;default:0"`
	Active   bool   `json:"active" gorm:"column:active;default:true"`
}

// TableName sets the table name for GORM
func (RuleModel) TableName() string {
	return "qualification_rules"
}

// EmailJobModel represents the database model for queued outbound emails
type EmailJobModel struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	UserID    string `json:"user_id" gorm:"column:user_id;not null;index;size:36"`
	MeetingID string `json:"meeting_id" gorm:"column:meeting_id;index;size:36"`
	Kind      string `json:"kind" gorm:"column:kind;not null;size:32"`

	ToAddress string `json:"to_address" gorm:"column:to_address;not null;size:255"`
	Subject   string `json:"subject" gorm:"column:subject;size:500"`
	HTMLBody  string `json:"html_body" gorm:"column:html_body;type:text"`

	Status      string     `json:"status" gorm:"column:status;size:16;index;default:pending"`
	ScheduledAt time.Time  `json:"scheduled_at" gorm:"column:scheduled_at;index"`
	SentAt      *time.Time `json:"sent_at" gorm:"column:sent_at"`
	RetryCount  int        `json:"retry_count" gorm:"column:retry_count;default:0"`
	LastError   string     `json:"last_error" gorm:"column:last_error;type:text"`
}

// TableName sets the table name for GORM
func (EmailJobModel) TableName() string {
	return "email_jobs"
}

// MetricsModel represents the database model for weekly grooming metrics
type MetricsModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	UserID    string    `json:"user_id" gorm:"column:user_id;not null;size:36;uniqueIndex:idx_user_week"`
	WeekStart time.Time `json:"week_start" gorm:"column:week_start;not null;uniqueIndex:idx_user_week"`
	WeekEnd   time.Time `json:"week_end" gorm:"column:week_end;not null"`

	TotalMeetings    int `json:"total_meetings" gorm:"column:total_meetings;default:0"`
	Qualified        int `json:"qualified" gorm:"column:qualified;default:0"`
	Disqualified     int `json:"disqualified" gorm:"column:disqualified;default:0"`
	AutoQualified    int `json:"auto_qualified" gorm:"column:auto_qualified;default:0"`
	AutoDisqualified int `json:"auto_disqualified" gorm:"column:auto_disqualified;default:0"`
	NeedsReview      int `json:"needs_review" gorm:"column:needs_review;default:0"`

	MinutesSaved       int     `json:"minutes_saved" gorm:"column:minutes_saved;default:0"`
	MinutesSpent       int     `json:"minutes_spent" gorm:"column:minutes_spent;default:0"`
	AutomationAccuracy float64 `json:"automation_accuracy" gorm:"column:automation_accuracy;default:0"`
}

// TableName sets the table name for GORM
func (MetricsModel) TableName() string {
	return "grooming_metrics"
}

// SettingsModel represents the database model for per-user policy settings
type SettingsModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	UserID string `json:"user_id" gorm:"column:user_id;unique;not null;size:36"`

	AutoRescheduleEnabled bool `json:"auto_reschedule_enabled" gorm:"column:auto_reschedule_enabled;default:true"`
	RescheduleDelayHours  int  `json:"reschedule_delay_hours" gorm:"column:reschedule_delay_hours;default:2"`
	MaxRescheduleAttempts int  `json:"max_reschedule_attempts" gorm:"column:max_reschedule_attempts;default:2"`

	BusinessHoursStart int  `json:"business_hours_start" gorm:"column:business_hours_start;default:9"`
	BusinessHoursEnd   int  `json:"business_hours_end" gorm:"column:business_hours_end;default:17"`
	IncludeWeekends    bool `json:"include_weekends" gorm:"column:include_weekends;default:false"`
	SearchWindowDays   int  `json:"search_window_days" gorm:"column:search_window_days;default:14"`

	SendConfirmation   bool `json:"send_confirmation" gorm:"column:send_confirmation;default:true"`
	SendDeletionNotice bool `json:"send_deletion_notice" gorm:"column:send_deletion_notice;default:true"`
}

// TableName sets the table name for GORM
func (SettingsModel) TableName() string {
	return "user_settings"
}
