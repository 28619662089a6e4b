package groomstats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/sirupsen/logrus"
)

// ReviewMinutesPerMeeting is the fixed per-meeting manual review cost used
// for the minutes-saved and minutes-spent estimates.
const ReviewMinutesPerMeeting = 5

// Aggregator computes weekly automation-effectiveness snapshots from
// meeting history. Read-only with respect to qualification.
type Aggregator struct {
	meetings grooming.MeetingStore
	metrics  grooming.MetricsStore
	log      *logrus.Logger

	now func() time.Time
}

// NewAggregator creates a new grooming efficiency aggregator
func NewAggregator(meetings grooming.MeetingStore, metrics grooming.MetricsStore, log *logrus.Logger) *Aggregator {
	return &Aggregator{
		meetings: meetings,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// Name identifies the aggregator to the scheduler supervisor.
func (a *Aggregator) Name() string { return "grooming-metrics" }

// Run recomputes the current week's snapshot for every user with meetings.
func (a *Aggregator) Run(ctx context.Context) error {
	userIDs, err := a.meetings.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	week := StartOfWeek(a.now())
	for _, userID := range userIDs {
		if _, err := a.ComputeWeek(ctx, userID, week); err != nil {
			a.log.WithField("user_id", userID).WithError(err).Error("weekly metrics computation failed")
		}
	}
	return nil
}

// ComputeWeek builds the snapshot for the week containing weekStart and
// upserts it keyed by (user, week start). Recomputing a week overwrites the
// previous row.
func (a *Aggregator) ComputeWeek(ctx context.Context, userID string, weekStart time.Time) (*grooming.GroomingMetrics, error) {
	weekStart = StartOfWeek(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	meetings, err := a.meetings.MeetingsCreatedBetween(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings for week: %w", err)
	}

	m := &grooming.GroomingMetrics{
		UserID:    userID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd.Add(-time.Second),
	}

	for _, meeting := range meetings {
		m.TotalMeetings++
		automated := isAutomated(meeting.QualificationReason)

		switch meeting.Status {
		case grooming.StatusQualified:
			m.Qualified++
			if automated {
				m.AutoQualified++
			}
		case grooming.StatusDisqualified:
			m.Disqualified++
			if automated {
				m.AutoDisqualified++
			}
		case grooming.StatusNeedsReview:
			m.NeedsReview++
		}
	}

	automatedCount := m.AutoQualified + m.AutoDisqualified
	m.MinutesSaved = automatedCount * ReviewMinutesPerMeeting
	m.MinutesSpent = m.NeedsReview * ReviewMinutesPerMeeting
	if m.TotalMeetings > 0 {
		m.AutomationAccuracy = float64(automatedCount) / float64(m.TotalMeetings) * 100
	}

	if err := a.metrics.UpsertMetrics(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to upsert weekly metrics: %w", err)
	}
	return m, nil
}

// ComputeTeamWeek aggregates the week's snapshot across every user with
// meetings. Per-user rows are recomputed and upserted along the way.
func (a *Aggregator) ComputeTeamWeek(ctx context.Context, weekStart time.Time) (*grooming.GroomingMetrics, error) {
	weekStart = StartOfWeek(weekStart)

	userIDs, err := a.meetings.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	team := &grooming.GroomingMetrics{
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 7).Add(-time.Second),
	}
	for _, userID := range userIDs {
		m, err := a.ComputeWeek(ctx, userID, weekStart)
		if err != nil {
			return nil, err
		}

		team.TotalMeetings += m.TotalMeetings
		team.Qualified += m.Qualified
		team.Disqualified += m.Disqualified
		team.AutoQualified += m.AutoQualified
		team.AutoDisqualified += m.AutoDisqualified
		team.NeedsReview += m.NeedsReview
		team.MinutesSaved += m.MinutesSaved
		team.MinutesSpent += m.MinutesSpent
	}

	if team.TotalMeetings > 0 {
		automated := team.AutoQualified + team.AutoDisqualified
		team.AutomationAccuracy = float64(automated) / float64(team.TotalMeetings) * 100
	}
	return team, nil
}

// WeeklyMetrics returns the user's stored snapshots, newest week first.
func (a *Aggregator) WeeklyMetrics(ctx context.Context, userID string) ([]*grooming.GroomingMetrics, error) {
	return a.metrics.MetricsByUser(ctx, userID)
}

// StartOfWeek returns the Monday 00:00 of the week containing t, in t's
// location.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// isAutomated reports whether a qualification reason was written by the
// engine rather than a human reviewer. Manual review paths record reasons
// containing "manual".
func isAutomated(reason string) bool {
	if reason == "" {
		return false
	}
	return !strings.Contains(strings.ToLower(reason), "manual")
}
