package routes

import (
	"context"

	"github.com/MLBB-BOSS/MLSnap/internal/handlers"
	"github.com/MLBB-BOSS/MLSnap/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Options configure the router.
type Options struct {
	JWTSecret string
}

// NewRouter wires middleware and every route. Limiter cleanup stops with ctx.
func NewRouter(ctx context.Context, h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.SecurityHeaders())

	r.GET("/health", h.Health)

	eventLimiter := middleware.NewEventLimiter()
	readLimiter := middleware.NewReadLimiter()
	go eventLimiter.Cleanup(ctx)
	go readLimiter.Cleanup(ctx)

	api := r.Group("/api")
	api.Use(middleware.ServiceAuth(opts.JWTSecret))
	{
		RegisterEventRoutes(api, h, middleware.RateLimitMiddleware(eventLimiter))
		RegisterUserRoutes(api, h, middleware.RateLimitMiddleware(readLimiter))
	}
	return r
}

func RegisterEventRoutes(r gin.IRouter, h *handlers.Handler, limit gin.HandlerFunc) {
	r.POST("/events", limit, h.PostEvent)
}

func RegisterUserRoutes(r gin.IRouter, h *handlers.Handler, limit gin.HandlerFunc) {
	r.GET("/leaderboard", limit, h.GetLeaderboard)

	users := r.Group("/users", limit)
	{
		users.GET("/:id/progress", h.GetUserProgress)
		users.GET("/:id/histogram", h.GetUserHistogram)
	}
}
