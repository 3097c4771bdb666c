package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/middleware"
)

type RouterConfig struct {
	AppName     string
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
}

// NewRouter builds the gin engine with every route and middleware mounted.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORSMiddleware(cfg.CORSOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.AppName,
		})
	})

	// ==========================================
	// AUTH ROUTES (public)
	// ==========================================
	auth := r.Group("/auth")
	auth.Use(cfg.RateLimiter.Handler())
	h.RegisterAuth(auth)

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired(h.Tokens), cfg.RateLimiter.Handler())
	h.RegisterAPI(api)

	return r
}
