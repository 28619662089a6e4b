package grooming

import (
	"context"
	"sort"
	"sync"
	"time"

	core "github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
)

// InMemoryStore provides an in-memory implementation of the store
// interfaces for testing
type InMemoryStore struct {
	meetings map[string]*core.Meeting
	rules    map[string]*core.QualificationRule
	jobs     map[string]*core.EmailJob
	metrics  map[string]*core.GroomingMetrics // keyed by userID + week start
	settings map[string]*core.Settings
	mutex    sync.RWMutex
}

// NewInMemoryStore creates a new in-memory grooming store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		meetings: make(map[string]*core.Meeting),
		rules:    make(map[string]*core.QualificationRule),
		jobs:     make(map[string]*core.EmailJob),
		metrics:  make(map[string]*core.GroomingMetrics),
		settings: make(map[string]*core.Settings),
	}
}

/* ---- MEETINGS ---- */

// GetMeeting retrieves a meeting by ID
func (s *InMemoryStore) GetMeeting(_ context.Context, id string) (*core.Meeting, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	m, exists := s.meetings[id]
	if !exists {
		return nil, core.ErrMeetingNotFound
	}

	copy := *m
	return &copy, nil
}

// SaveMeeting creates a new meeting record
func (s *InMemoryStore) SaveMeeting(_ context.Context, m *core.Meeting) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	copy := *m
	s.meetings[m.ID] = &copy
	return nil
}

// UpdateMeeting overwrites an existing meeting record
func (s *InMemoryStore) UpdateMeeting(_ context.Context, m *core.Meeting) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.meetings[m.ID]
	if !exists {
		return core.ErrMeetingNotFound
	}

	copy := *m
	copy.CreatedAt = existing.CreatedAt
	copy.UpdatedAt = time.Now()
	s.meetings[m.ID] = &copy
	return nil
}

// MeetingsByUser returns every meeting owned by the user
func (s *InMemoryStore) MeetingsByUser(_ context.Context, userID string) ([]*core.Meeting, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var meetings []*core.Meeting
	for _, m := range s.meetings {
		if m.UserID == userID {
			copy := *m
			meetings = append(meetings, &copy)
		}
	}

	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime.Before(meetings[j].StartTime)
	})
	return meetings, nil
}

// MeetingsByStatus returns all meetings in the given status across users
func (s *InMemoryStore) MeetingsByStatus(_ context.Context, status core.QualificationStatus) ([]*core.Meeting, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var meetings []*core.Meeting
	for _, m := range s.meetings {
		if m.Status == status {
			copy := *m
			meetings = append(meetings, &copy)
		}
	}

	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime.Before(meetings[j].StartTime)
	})
	return meetings, nil
}

// MeetingsStartingBetween returns meetings whose start time falls in [from, to)
func (s *InMemoryStore) MeetingsStartingBetween(_ context.Context, from, to time.Time) ([]*core.Meeting, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var meetings []*core.Meeting
	for _, m := range s.meetings {
		if !m.StartTime.Before(from) && m.StartTime.Before(to) {
			copy := *m
			meetings = append(meetings, &copy)
		}
	}

	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime.Before(meetings[j].StartTime)
	})
	return meetings, nil
}

// MeetingsCreatedBetween returns the user's meetings created in [from, to)
func (s *InMemoryStore) MeetingsCreatedBetween(_ context.Context, userID string, from, to time.Time) ([]*core.Meeting, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var meetings []*core.Meeting
	for _, m := range s.meetings {
		if m.UserID == userID && !m.CreatedAt.Before(from) && m.CreatedAt.Before(to) {
			copy := *m
			meetings = append(meetings, &copy)
		}
	}
	return meetings, nil
}

// UserIDs returns the distinct owners of all stored meetings
func (s *InMemoryStore) UserIDs(_ context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for _, m := range s.meetings {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			ids = append(ids, m.UserID)
		}
	}

	sort.Strings(ids)
	return ids, nil
}

/* ---- RULES ---- */

// ActiveRules returns the user's active qualification rules
func (s *InMemoryStore) ActiveRules(_ context.Context, userID string) ([]*core.QualificationRule, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var rules []*core.QualificationRule
	for _, r := range s.rules {
		if r.UserID == userID && r.Active {
			copy := *r
			rules = append(rules, &copy)
		}
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return rules, nil
}

// RulesByUser returns every rule owned by the user
func (s *InMemoryStore) RulesByUser(_ context.Context, userID string) ([]*core.QualificationRule, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var rules []*core.QualificationRule
	for _, r := range s.rules {
		if r.UserID == userID {
			copy := *r
			rules = append(rules, &copy)
		}
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return rules, nil
}

// SaveRule creates or updates a qualification rule
func (s *InMemoryStore) SaveRule(_ context.Context, r *core.QualificationRule) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	copy := *r
	s.rules[r.ID] = &copy
	return nil
}

// DeleteRule removes a qualification rule by ID
func (s *InMemoryStore) DeleteRule(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.rules[id]; !exists {
		return core.ErrRuleNotFound
	}
	delete(s.rules, id)
	return nil
}

/* ---- EMAIL JOBS ---- */

// CreateJob stores a new email job
func (s *InMemoryStore) CreateJob(_ context.Context, j *core.EmailJob) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}

	copy := *j
	s.jobs[j.ID] = &copy
	return nil
}

// GetJob retrieves an email job by ID
func (s *InMemoryStore) GetJob(_ context.Context, id string) (*core.EmailJob, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	j, exists := s.jobs[id]
	if !exists {
		return nil, core.ErrJobNotFound
	}

	copy := *j
	return &copy, nil
}

// UpdateJob overwrites an existing email job record
func (s *InMemoryStore) UpdateJob(_ context.Context, j *core.EmailJob) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.jobs[j.ID]; !exists {
		return core.ErrJobNotFound
	}

	copy := *j
	copy.UpdatedAt = time.Now()
	s.jobs[j.ID] = &copy
	return nil
}

// DueJobs returns pending jobs with scheduled_at <= now
func (s *InMemoryStore) DueJobs(_ context.Context, now time.Time) ([]*core.EmailJob, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var jobs []*core.EmailJob
	for _, j := range s.jobs {
		if j.Status == core.EmailPending && !j.ScheduledAt.After(now) {
			copy := *j
			jobs = append(jobs, &copy)
		}
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ScheduledAt.Before(jobs[j].ScheduledAt) })
	return jobs, nil
}

// JobsByMeeting returns every job attached to a meeting, newest first
func (s *InMemoryStore) JobsByMeeting(_ context.Context, meetingID string) ([]*core.EmailJob, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var jobs []*core.EmailJob
	for _, j := range s.jobs {
		if j.MeetingID == meetingID {
			copy := *j
			jobs = append(jobs, &copy)
		}
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

/* ---- METRICS ---- */

// UpsertMetrics writes a weekly snapshot, replacing any existing row for
// the same (user, week start)
func (s *InMemoryStore) UpsertMetrics(_ context.Context, m *core.GroomingMetrics) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	copy := *m
	s.metrics[m.UserID+"|"+m.WeekStart.Format("2006-01-02")] = &copy
	return nil
}

// MetricsByUser returns the user's weekly snapshots, newest week first
func (s *InMemoryStore) MetricsByUser(_ context.Context, userID string) ([]*core.GroomingMetrics, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var metrics []*core.GroomingMetrics
	for _, m := range s.metrics {
		if m.UserID == userID {
			copy := *m
			metrics = append(metrics, &copy)
		}
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].WeekStart.After(metrics[j].WeekStart) })
	return metrics, nil
}

/* ---- SETTINGS ---- */

// GetSettings returns the user's policy settings, falling back to defaults
func (s *InMemoryStore) GetSettings(_ context.Context, userID string) (*core.Settings, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	set, exists := s.settings[userID]
	if !exists {
		return core.DefaultSettings(userID), nil
	}

	copy := *set
	return &copy, nil
}

// SaveSettings creates or updates the user's policy settings
func (s *InMemoryStore) SaveSettings(_ context.Context, set *core.Settings) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	copy := *set
	s.settings[set.UserID] = &copy
	return nil
}
