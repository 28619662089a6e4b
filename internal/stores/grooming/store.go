package grooming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	core "github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists meetings, rules, email jobs, metrics, and settings using MySQL
type Store struct {
	db *gorm.DB
}

// NewStore creates a new grooming store with MySQL connection
func NewStore(databaseURL string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	// Auto-migrate tables
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// migrate creates or updates the required database tables
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&MeetingModel{},
		&RuleModel{},
		&EmailJobModel{},
		&MetricsModel{},
		&SettingsModel{},
	)
}

/* ---- MEETINGS ---- */

// GetMeeting retrieves a meeting by ID
func (s *Store) GetMeeting(ctx context.Context, id string) (*core.Meeting, error) {
	var model MeetingModel
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, core.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", result.Error)
	}

	return toMeeting(&model), nil
}

// SaveMeeting creates a new meeting record
func (s *Store) SaveMeeting(ctx context.Context, m *core.Meeting) error {
	if m.ID == "" {
		return fmt.Errorf("meeting id cannot be empty")
	}
	if m.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}

	model := fromMeeting(m)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// UpdateMeeting overwrites an existing meeting record
func (s *Store) UpdateMeeting(ctx context.Context, m *core.Meeting) error {
	model := fromMeeting(m)
	result := s.db.WithContext(ctx).Model(&MeetingModel{}).Where("id = ?", m.ID).Updates(model.asUpdateMap())
	if result.Error != nil {
		return fmt.Errorf("failed to update meeting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrMeetingNotFound
	}
	return nil
}

// MeetingsByUser returns every meeting owned by the user
func (s *Store) MeetingsByUser(ctx context.Context, userID string) ([]*core.Meeting, error) {
	var models []MeetingModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_time").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return toMeetings(models), nil
}

// MeetingsByStatus returns all meetings in the given status across users
func (s *Store) MeetingsByStatus(ctx context.Context, status core.QualificationStatus) ([]*core.Meeting, error) {
	var models []MeetingModel
	if err := s.db.WithContext(ctx).Where("status = ?", string(status)).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings by status: %w", err)
	}
	return toMeetings(models), nil
}

// MeetingsStartingBetween returns meetings whose start time falls in [from, to)
func (s *Store) MeetingsStartingBetween(ctx context.Context, from, to time.Time) ([]*core.Meeting, error) {
	var models []MeetingModel
	if err := s.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", from, to).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings by window: %w", err)
	}
	return toMeetings(models), nil
}

// MeetingsCreatedBetween returns the user's meetings created in [from, to)
func (s *Store) MeetingsCreatedBetween(ctx context.Context, userID string, from, to time.Time) ([]*core.Meeting, error) {
	var models []MeetingModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings by creation window: %w", err)
	}
	return toMeetings(models), nil
}

// UserIDs returns the distinct owners of all stored meetings
func (s *Store) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&MeetingModel{}).
		Distinct("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}

/* ---- RULES ---- */

// ActiveRules returns the user's active qualification rules
func (s *Store) ActiveRules(ctx context.Context, userID string) ([]*core.QualificationRule, error) {
	var models []RuleModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("priority").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	return toRules(models), nil
}

// RulesByUser returns every rule owned by the user
func (s *Store) RulesByUser(ctx context.Context, userID string) ([]*core.QualificationRule, error) {
	var models []RuleModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("priority").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return toRules(models), nil
}

// SaveRule creates or updates a qualification rule
func (s *Store) SaveRule(ctx context.Context, r *core.QualificationRule) error {
	if r.ID == "" {
		return fmt.Errorf("rule id cannot be empty")
	}

	model := &RuleModel{
		ID:       r.ID,
		UserID:   r.UserID,
		Field:    string(r.Field),
		Operator: string(r.Operator),
		Value:    r.Value,
		Priority: r.Priority,
		Active:   r.Active,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

// DeleteRule removes a qualification rule by ID
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&RuleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrRuleNotFound
	}
	return nil
}

/* ---- EMAIL JOBS ---- */

// CreateJob stores a new email job
func (s *Store) CreateJob(ctx context.Context, j *core.EmailJob) error {
	if j.ID == "" {
		return fmt.Errorf("job id cannot be empty")
	}

	model := fromJob(j)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create email job: %w", err)
	}
	return nil
}

// GetJob retrieves an email job by ID
func (s *Store) GetJob(ctx context.Context, id string) (*core.EmailJob, error) {
	var model EmailJobModel
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, core.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get email job: %w", result.Error)
	}
	return toJob(&model), nil
}

// UpdateJob overwrites an existing email job record
func (s *Store) UpdateJob(ctx context.Context, j *core.EmailJob) error {
	model := fromJob(j)
	result := s.db.WithContext(ctx).Model(&EmailJobModel{}).Where("id = ?", j.ID).Updates(map[string]any{
		"status":      model.Status,
		"sent_at":     model.SentAt,
		"retry_count": model.RetryCount,
		"last_error":  model.LastError,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update email job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrJobNotFound
	}
	return nil
}

// DueJobs returns pending jobs with scheduled_at <= now
func (s *Store) DueJobs(ctx context.Context, now time.Time) ([]*core.EmailJob, error) {
	var models []EmailJobModel
	if err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(core.EmailPending), now).
		Order("scheduled_at").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list due jobs: %w", err)
	}

	jobs := make([]*core.EmailJob, 0, len(models))
	for i := range models {
		jobs = append(jobs, toJob(&models[i]))
	}
	return jobs, nil
}

// JobsByMeeting returns every job attached to a meeting, newest first
func (s *Store) JobsByMeeting(ctx context.Context, meetingID string) ([]*core.EmailJob, error) {
	var models []EmailJobModel
	if err := s.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs by meeting: %w", err)
	}

	jobs := make([]*core.EmailJob, 0, len(models))
	for i := range models {
		jobs = append(jobs, toJob(&models[i]))
	}
	return jobs, nil
}

/* ---- METRICS ---- */

// UpsertMetrics writes a weekly snapshot, replacing any existing row for
// the same (user, week start)
func (s *Store) UpsertMetrics(ctx context.Context, m *core.GroomingMetrics) error {
	model := &MetricsModel{
		UserID:             m.UserID,
		WeekStart:          m.WeekStart,
		WeekEnd:            m.WeekEnd,
		TotalMeetings:      m.TotalMeetings,
		Qualified:          m.Qualified,
		Disqualified:       m.Disqualified,
		AutoQualified:      m.AutoQualified,
		AutoDisqualified:   m.AutoDisqualified,
		NeedsReview:        m.NeedsReview,
		MinutesSaved:       m.MinutesSaved,
		MinutesSpent:       m.MinutesSpent,
		AutomationAccuracy: m.AutomationAccuracy,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"week_end", "total_meetings", "qualified", "disqualified",
			"auto_qualified", "auto_disqualified", "needs_review",
			"minutes_saved", "minutes_spent", "automation_accuracy",
		}),
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert metrics: %w", err)
	}
	return nil
}

// MetricsByUser returns the user's weekly snapshots, newest week first
func (s *Store) MetricsByUser(ctx context.Context, userID string) ([]*core.GroomingMetrics, error) {
	var models []MetricsModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}

	metrics := make([]*core.GroomingMetrics, 0, len(models))
	for _, model := range models {
		metrics = append(metrics, &core.GroomingMetrics{
			UserID:             model.UserID,
			WeekStart:          model.WeekStart,
			WeekEnd:            model.WeekEnd,
			TotalMeetings:      model.TotalMeetings,
			Qualified:          model.Qualified,
			Disqualified:       model.Disqualified,
			AutoQualified:      model.AutoQualified,
			AutoDisqualified:   model.AutoDisqualified,
			NeedsReview:        model.NeedsReview,
			MinutesSaved:       model.MinutesSaved,
			MinutesSpent:       model.MinutesSpent,
			AutomationAccuracy: model.AutomationAccuracy,
		})
	}
	return metrics, nil
}

/* ---- SETTINGS ---- */

// GetSettings returns the user's policy settings, falling back to defaults
// when the user never saved any
func (s *Store) GetSettings(ctx context.Context, userID string) (*core.Settings, error) {
	var model SettingsModel
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return core.DefaultSettings(userID), nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", result.Error)
	}

	return &core.Settings{
		UserID:                model.UserID,
		AutoRescheduleEnabled: model.AutoRescheduleEnabled,
		RescheduleDelayHours:  model.RescheduleDelayHours,
		MaxRescheduleAttempts: model.MaxRescheduleAttempts,
		BusinessHoursStart:    model.BusinessHoursStart,
		BusinessHoursEnd:      model.BusinessHoursEnd,
		IncludeWeekends:       model.IncludeWeekends,
		SearchWindowDays:      model.SearchWindowDays,
		SendConfirmation:      model.SendConfirmation,
		SendDeletionNotice:    model.SendDeletionNotice,
	}, nil
}

// SaveSettings creates or updates the user's policy settings
func (s *Store) SaveSettings(ctx context.Context, set *core.Settings) error {
	if set.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}

	model := &SettingsModel{
		UserID:                set.UserID,
		AutoRescheduleEnabled: set.AutoRescheduleEnabled,
		RescheduleDelayHours:  set.RescheduleDelayHours,
		MaxRescheduleAttempts: set.MaxRescheduleAttempts,
		BusinessHoursStart:    set.BusinessHoursStart,
		BusinessHoursEnd:      set.BusinessHoursEnd,
		IncludeWeekends:       set.IncludeWeekends,
		SearchWindowDays:      set.SearchWindowDays,
		SendConfirmation:      set.SendConfirmation,
		SendDeletionNotice:    set.SendDeletionNotice,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

/* ---- CONVERTERS ---- */

func toMeeting(model *MeetingModel) *core.Meeting {
	var responses []core.AttendeeResponse
	if model.AttendeeResponses != "" {
		// Ignore malformed JSON; responses are advisory
		_ = json.Unmarshal([]byte(model.AttendeeResponses), &responses)
	}

	return &core.Meeting{
		ID:                  model.ID,
		UserID:              model.UserID,
		ExternalID:          model.ExternalID,
		Title:               model.Title,
		StartTime:           model.StartTime,
		EndTime:             model.EndTime,
		AttendeeEmail:       model.AttendeeEmail,
		AttendeeName:        model.AttendeeName,
		Company:             model.Company,
		Revenue:             model.Revenue,
		CompanySize:         model.CompanySize,
		Industry:            model.Industry,
		Budget:              model.Budget,
		Status:              core.QualificationStatus(model.Status),
		QualificationReason: model.QualificationReason,
		NoShowAt:            model.NoShowAt,
		NoShowReason:        model.NoShowReason,
		RescheduleAttempts:  model.RescheduleAttempts,
		LastRescheduleAt:    model.LastRescheduleAt,
		RescheduleEmailSent: model.RescheduleEmailSent,
		OriginalStartTime:   model.OriginalStartTime,
		InviteStatus:        core.InviteStatus(model.InviteStatus),
		InviteAccepted:      model.InviteAccepted,
		InviteLastChecked:   model.InviteLastChecked,
		AttendeeResponses:   responses,
		CalendarDeleted:     model.CalendarDeleted,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

func toMeetings(models []MeetingModel) []*core.Meeting {
	meetings := make([]*core.Meeting, 0, len(models))
	for i := range models {
		meetings = append(meetings, toMeeting(&models[i]))
	}
	return meetings
}

func fromMeeting(m *core.Meeting) *MeetingModel {
	responses := ""
	if len(m.AttendeeResponses) > 0 {
		if data, err := json.Marshal(m.AttendeeResponses); err == nil {
			responses = string(data)
		}
	}

	return &MeetingModel{
		ID:                  m.ID,
		UserID:              m.UserID,
		ExternalID:          m.ExternalID,
		Title:               m.Title,
		StartTime:           m.StartTime,
		EndTime:             m.EndTime,
		AttendeeEmail:       m.AttendeeEmail,
		AttendeeName:        m.AttendeeName,
		Company:             m.Company,
		Revenue:             m.Revenue,
		CompanySize:         m.CompanySize,
		Industry:            m.Industry,
		Budget:              m.Budget,
		Status:              string(m.Status),
		QualificationReason: m.QualificationReason,
		NoShowAt:            m.NoShowAt,
		NoShowReason:        m.NoShowReason,
		RescheduleAttempts:  m.RescheduleAttempts,
		LastRescheduleAt:    m.LastRescheduleAt,
		RescheduleEmailSent: m.RescheduleEmailSent,
		OriginalStartTime:   m.OriginalStartTime,
		InviteStatus:        string(m.InviteStatus),
		InviteAccepted:      m.InviteAccepted,
		InviteLastChecked:   m.InviteLastChecked,
		AttendeeResponses:   responses,
		CalendarDeleted:     m.CalendarDeleted,
	}
}

// asUpdateMap returns the mutable meeting columns for an update, so zeroed
// values (cleared flags, empty reasons) are written too.
func (model *MeetingModel) asUpdateMap() map[string]any {
	return map[string]any{
		"external_id":           model.ExternalID,
		"title":                 model.Title,
		"start_time":            model.StartTime,
		"end_time":              model.EndTime,
		"attendee_email":        model.AttendeeEmail,
		"attendee_name":         model.AttendeeName,
		"company":               model.Company,
		"revenue":               model.Revenue,
		"company_size":          model.CompanySize,
		"industry":              model.Industry,
		"budget":                model.Budget,
		"status":                model.Status,
		"qualification_reason":  model.QualificationReason,
		"no_show_at":            model.NoShowAt,
		"no_show_reason":        model.NoShowReason,
		"reschedule_attempts":   model.RescheduleAttempts,
		"last_reschedule_at":    model.LastRescheduleAt,
		"reschedule_email_sent": model.RescheduleEmailSent,
		"original_start_time":   model.OriginalStartTime,
		"invite_status":         model.InviteStatus,
		"invite_accepted":       model.InviteAccepted,
		"invite_last_checked":   model.InviteLastChecked,
		"attendee_responses":    model.AttendeeResponses,
		"calendar_deleted":      model.CalendarDeleted,
	}
}

func toRules(models []RuleModel) []*core.QualificationRule {
	rules := make([]*core.QualificationRule, 0, len(models))
	for _, model := range models {
		rules = append(rules, &core.QualificationRule{
			ID:        model.ID,
			UserID:    model.UserID,
			Field:     core.RuleField(model.Field),
			Operator:  core.RuleOperator(model.Operator),
			Value:     model.Value,
			Priority:  model.Priority,
			Active:    model.Active,
			CreatedAt: model.CreatedAt,
			UpdatedAt: model.UpdatedAt,
		})
	}
	return rules
}

func toJob(model *EmailJobModel) *core.EmailJob {
	return &core.EmailJob{
		ID:          model.ID,
		UserID:      model.UserID,
		MeetingID:   model.MeetingID,
		Kind:        core.EmailKind(model.Kind),
		To:          model.ToAddress,
		Subject:     model.Subject,
		HTMLBody:    model.HTMLBody,
		Status:      core.EmailJobStatus(model.Status),
		ScheduledAt: model.ScheduledAt,
		SentAt:      model.SentAt,
		RetryCount:  model.RetryCount,
		LastError:   model.LastError,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func fromJob(j *core.EmailJob) *EmailJobModel {
	return &EmailJobModel{
		ID:          j.ID,
		UserID:      j.UserID,
		MeetingID:   j.MeetingID,
		Kind:        string(j.Kind),
		ToAddress:   j.To,
		Subject:     j.Subject,
		HTMLBody:    j.HTMLBody,
		Status:      string(j.Status),
		ScheduledAt: j.ScheduledAt,
		SentAt:      j.SentAt,
		RetryCount:  j.RetryCount,
		LastError:   j.LastError,
	}
}
