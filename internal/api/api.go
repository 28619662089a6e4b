package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MattHurst33/replit-calander-sub000/internal/api/modules/health"
	"github.com/MattHurst33/replit-calander-sub000/internal/api/modules/meetings"
	"github.com/MattHurst33/replit-calander-sub000/internal/api/modules/reports"
	"github.com/MattHurst33/replit-calander-sub000/pkg/utils"
)

// Services bundles the engine components the driver API exposes.
type Services struct {
	Meetings *meetings.Controller
	Reports  *reports.Controller
}

// NewServer builds the HTTP server for the driver API
func NewServer(cfg *utils.Config, services *Services) *http.Server {
	port := cfg.GetWithDefault("API_PORT", "8080")

	// Add app level settings/routes
	engine := gin.Default()
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	health.RegisterRoutes(baseGroup)
	meetings.RegisterRoutes(baseGroup, services.Meetings)
	reports.RegisterRoutes(baseGroup, services.Reports)

	return &http.Server{
		Addr:    ":" + port,
		Handler: engine,
	}
}
