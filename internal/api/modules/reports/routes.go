package reports

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the reports module
func RegisterRoutes(g *gin.RouterGroup, ctl *Controller) {
	group := g.Group("/users/:user_id/reports")
	group.GET("/weekly", ctl.WeeklyMetrics)     // Weekly grooming metrics
	group.GET("/no-shows", ctl.NoShowAnalytics) // No-show breakdowns
	group.GET("/at-risk", ctl.AtRiskMeetings)   // Meetings with invite risk

	g.GET("/reports/team/weekly", ctl.TeamWeeklyMetrics) // Team-wide weekly metrics
}
