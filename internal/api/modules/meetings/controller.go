package meetings

import (
	"context"
	"errors"
	"net/http"

	"github.com/MattHurst33/replit-calander-sub000/internal/api/respond"
	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/qualify"
	"github.com/MattHurst33/replit-calander-sub000/pkg/reschedule"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Qualifier runs the qualification engine for one meeting.
type Qualifier interface {
	Qualify(ctx context.Context, meetingID string) (grooming.QualificationStatus, string, error)
}

// Rescheduler drives no-show marking and manual reschedule attempts.
type Rescheduler interface {
	MarkNoShow(ctx context.Context, meetingID, reason string) error
	Trigger(ctx context.Context, meetingID string) (*reschedule.Result, error)
}

// InviteChecker refreshes invite state for one user on demand.
type InviteChecker interface {
	CheckUser(ctx context.Context, userID string) error
}

// Controller handles the meeting driver operations
type Controller struct {
	qualifier   Qualifier
	rescheduler Rescheduler
	invites     InviteChecker
	rules       grooming.RuleStore
	jobs        grooming.EmailJobStore
}

// NewController creates a new meetings controller
func NewController(
	qualifier Qualifier,
	rescheduler Rescheduler,
	invites InviteChecker,
	rules grooming.RuleStore,
	jobs grooming.EmailJobStore,
) *Controller {
	return &Controller{
		qualifier:   qualifier,
		rescheduler: rescheduler,
		invites:     invites,
		rules:       rules,
		jobs:        jobs,
	}
}

// Qualify handles POST requests to run qualification for one meeting
func (ctl *Controller) Qualify(c *gin.Context) {
	meetingID := c.Param("id")

	status, reason, err := ctl.qualifier.Qualify(c.Request.Context(), meetingID)
	if err != nil {
		if errors.Is(err, grooming.ErrMeetingNotFound) {
			respond.Error(c, http.StatusNotFound, "Meeting not found", err)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Qualification failed", err)
		return
	}

	respond.Success(c, http.StatusOK, "Meeting qualified", gin.H{
		"meeting_id": meetingID,
		"status":     status,
		"reason":     reason,
	})
}

// MarkNoShow handles POST requests to mark a meeting as a no-show
func (ctl *Controller) MarkNoShow(c *gin.Context) {
	meetingID := c.Param("id")

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional; the reason defaults to "did not attend"
	_ = c.ShouldBindJSON(&req)

	if err := ctl.rescheduler.MarkNoShow(c.Request.Context(), meetingID, req.Reason); err != nil {
		switch {
		case errors.Is(err, grooming.ErrMeetingNotFound):
			respond.Error(c, http.StatusNotFound, "Meeting not found", err)
		case errors.Is(err, grooming.ErrMeetingNotEnded):
			respond.Error(c, http.StatusConflict, "Meeting has not ended yet", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to mark no-show", err)
		}
		return
	}

	respond.Success(c, http.StatusOK, "Meeting marked as no-show", gin.H{"meeting_id": meetingID})
}

// Reschedule handles POST requests to trigger one reschedule attempt
func (ctl *Controller) Reschedule(c *gin.Context) {
	meetingID := c.Param("id")

	result, err := ctl.rescheduler.Trigger(c.Request.Context(), meetingID)
	if err != nil {
		switch {
		case errors.Is(err, grooming.ErrMeetingNotFound):
			respond.Error(c, http.StatusNotFound, "Meeting not found", err)
		case errors.Is(err, grooming.ErrNotNoShow):
			respond.Error(c, http.StatusConflict, "Meeting is not a no-show", err)
		case errors.Is(err, grooming.ErrMaxAttempts):
			respond.Error(c, http.StatusConflict, "Maximum reschedule attempts reached", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Reschedule failed", err)
		}
		return
	}

	respond.Success(c, http.StatusOK, "Reschedule attempt finished", result)
}

// CheckInvites handles POST requests to refresh invite state for a user
func (ctl *Controller) CheckInvites(c *gin.Context) {
	userID := c.Param("user_id")

	if err := ctl.invites.CheckUser(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "Invite check failed", err)
		return
	}

	respond.Success(c, http.StatusOK, "Invite status refreshed", gin.H{"user_id": userID})
}

// ListJobs handles GET requests for a meeting's email jobs
func (ctl *Controller) ListJobs(c *gin.Context) {
	jobs, err := ctl.jobs.JobsByMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to list email jobs", err)
		return
	}

	respond.Success(c, http.StatusOK, "Email jobs retrieved", jobs)
}

// ListRules handles GET requests for a user's qualification rules
func (ctl *Controller) ListRules(c *gin.Context) {
	rules, err := ctl.rules.RulesByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}

	respond.Success(c, http.StatusOK, "Rules retrieved", rules)
}

// CreateRule handles POST requests to create a qualification rule
func (ctl *Controller) CreateRule(c *gin.Context) {
	var req struct {
		Field    string `json:"field" binding:"required"`
		Operator string `json:"operator" binding:"required"`
		Value    string `json:"value" binding:"required"`
		Priority int    `json:"priority"`
		Active   *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Could not parse request body", err)
		return
	}

	rule := &grooming.QualificationRule{
		ID:       uuid.NewString(),
		UserID:   c.Param("user_id"),
		Field:    grooming.RuleField(req.Field),
		Operator: grooming.RuleOperator(req.Operator),
		Value:    req.Value,
		Priority: req.Priority,
		Active:   true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := qualify.ValidateRule(rule); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid rule definition", err)
		return
	}

	if err := ctl.rules.SaveRule(c.Request.Context(), rule); err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to save rule", err)
		return
	}

	respond.Success(c, http.StatusCreated, "Rule created", rule)
}

// DeleteRule handles DELETE requests to remove a qualification rule
func (ctl *Controller) DeleteRule(c *gin.Context) {
	if err := ctl.rules.DeleteRule(c.Request.Context(), c.Param("rule_id")); err != nil {
		if errors.Is(err, grooming.ErrRuleNotFound) {
			respond.Error(c, http.StatusNotFound, "Rule not found", err)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to delete rule", err)
		return
	}

	respond.Success(c, http.StatusOK, "Rule deleted", nil)
}
