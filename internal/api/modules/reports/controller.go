package reports

import (
	"net/http"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/internal/api/respond"
	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/groomstats"
	"github.com/MattHurst33/replit-calander-sub000/pkg/invites"
	"github.com/gin-gonic/gin"
)

// Controller serves grooming metrics and analytics
type Controller struct {
	stats    *groomstats.Aggregator
	meetings grooming.MeetingStore
}

// NewController creates a new reports controller
func NewController(stats *groomstats.Aggregator, meetings grooming.MeetingStore) *Controller {
	return &Controller{stats: stats, meetings: meetings}
}

// WeeklyMetrics handles GET requests for a user's weekly grooming metrics.
// Passing ?week=YYYY-MM-DD recomputes and returns that single week.
func (ctl *Controller) WeeklyMetrics(c *gin.Context) {
	userID := c.Param("user_id")

	if week := c.Query("week"); week != "" {
		weekStart, err := time.Parse("2006-01-02", week)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid week date, expected YYYY-MM-DD", err)
			return
		}

		metrics, err := ctl.stats.ComputeWeek(c.Request.Context(), userID, weekStart)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "Failed to compute weekly metrics", err)
			return
		}
		respond.Success(c, http.StatusOK, "Weekly metrics computed", metrics)
		return
	}

	metrics, err := ctl.stats.WeeklyMetrics(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to list weekly metrics", err)
		return
	}
	respond.Success(c, http.StatusOK, "Weekly metrics retrieved", metrics)
}

// TeamWeeklyMetrics handles GET requests for the team-wide weekly metrics.
// Defaults to the current week; ?week=YYYY-MM-DD selects another.
func (ctl *Controller) TeamWeeklyMetrics(c *gin.Context) {
	week := time.Now()
	if raw := c.Query("week"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid week date, expected YYYY-MM-DD", err)
			return
		}
		week = parsed
	}

	metrics, err := ctl.stats.ComputeTeamWeek(c.Request.Context(), week)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to compute team metrics", err)
		return
	}

	respond.Success(c, http.StatusOK, "Team weekly metrics computed", metrics)
}

// NoShowAnalytics handles GET requests for a user's no-show breakdowns
func (ctl *Controller) NoShowAnalytics(c *gin.Context) {
	analytics, err := ctl.stats.NoShowAnalytics(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to compute no-show analytics", err)
		return
	}

	respond.Success(c, http.StatusOK, "No-show analytics computed", analytics)
}

// AtRiskMeetings handles GET requests for meetings flagged by invite risk
func (ctl *Controller) AtRiskMeetings(c *gin.Context) {
	meetings, err := ctl.meetings.MeetingsByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to list meetings", err)
		return
	}

	now := time.Now()
	atRisk := make([]*grooming.Meeting, 0)
	for _, meeting := range meetings {
		if invites.AtRisk(meeting, now) {
			atRisk = append(atRisk, meeting)
		}
	}

	respond.Success(c, http.StatusOK, "At-risk meetings retrieved", atRisk)
}
