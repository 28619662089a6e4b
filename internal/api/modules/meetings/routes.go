package meetings

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the meetings module
func RegisterRoutes(g *gin.RouterGroup, ctl *Controller) {
	group := g.Group("/meetings")
	group.POST("/:id/qualify", ctl.Qualify)       // Run qualification for one meeting
	group.POST("/:id/no-show", ctl.MarkNoShow)    // Mark a meeting as a no-show
	group.POST("/:id/reschedule", ctl.Reschedule) // Trigger one reschedule attempt
	group.GET("/:id/emails", ctl.ListJobs)        // List a meeting's email jobs

	users := g.Group("/users/:user_id")
	users.POST("/invite-check", ctl.CheckInvites) // Refresh invite state for a user
	users.GET("/rules", ctl.ListRules)            // List qualification rules
	users.POST("/rules", ctl.CreateRule)          // Create a qualification rule
	users.DELETE("/rules/:rule_id", ctl.DeleteRule)
}
