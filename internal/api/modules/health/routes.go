package health

import (
	"net/http"

	"github.com/MattHurst33/replit-calander-sub000/internal/api/respond"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the health module
func RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/health", func(c *gin.Context) {
		respond.Success(c, http.StatusOK, "ok", nil)
	})
}
