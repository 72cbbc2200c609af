package routes

import (
	"time"

	"fieldops-app/config"
	"fieldops-app/internal/app/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewEngine builds the HTTP handler with the global middleware and every route.
func NewEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// ✅ Add CORS middleware BEFORE registering routes
	if cfg.CORSOrigin != "" {
		r.Use(corsMiddleware(cfg.CORSOrigin))
	}

	RegisterRoutes(r)
	return r
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-New-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
