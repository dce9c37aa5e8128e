package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/activity"
	"github.com/campus-rcs/site-coordination/internal/analytics"
	"github.com/campus-rcs/site-coordination/internal/auth"
	"github.com/campus-rcs/site-coordination/internal/bookings"
	"github.com/campus-rcs/site-coordination/internal/emaillogs"
	"github.com/campus-rcs/site-coordination/internal/middleware"
	"github.com/campus-rcs/site-coordination/internal/registrations"
	"github.com/campus-rcs/site-coordination/internal/users"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

type handlers struct {
	auth          *auth.Handler
	registrations *registrations.Handler
	users         *users.Handler
	bookings      *bookings.Handler
	activity      *activity.Handler
	analytics     *analytics.Handler
	emailLogs     *emaillogs.Handler
	checks        []healthCheck
}

// healthCheck is a dependency pinged by /health.
type healthCheck struct {
	name string
	ping func(context.Context) error
}

func health(checks []healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		for _, chk := range checks {
			if err := chk.ping(ctx); err != nil {
				response.ServiceUnavailable(c, chk.name+" unavailable")
				return
			}
		}
		response.OK(c, gin.H{"status": "ok"})
	}
}

func newRouter(corsOrigins string, logger *zap.Logger, jwtService *auth.JWTService, revocations auth.Revocations, h handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(corsOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", health(h.checks))

	// Check-in (public)
	router.GET("/", h.activity.Landing)
	router.POST("/select", h.activity.Select)
	router.POST("/login", h.auth.Login)
	router.POST("/logout", h.auth.Logout)
	router.POST("/service-provider", h.activity.ServiceProvider)
	router.POST("/admin/login", h.auth.AdminLogin)

	session := middleware.JWT(jwtService, revocations, logger)

	// Check-in (researcher session)
	researcher := router.Group("/checkin", session, middleware.RequireResearcher())
	{
		researcher.GET("", h.activity.CheckinStatus)
		researcher.POST("", h.activity.Checkin)
	}

	// Coordination (admin session)
	admin := router.Group("", session, middleware.RequireAdmin())
	{
		admin.POST("/registrations/manual", h.registrations.Manual)
		admin.GET("/registrations", h.registrations.List)
		admin.POST("/registrations/:email/approve", h.registrations.Approve)
		admin.POST("/registrations/:email/deny", h.registrations.Deny)

		admin.GET("/users", h.users.List)
		admin.POST("/users/:email/send-credentials", h.users.SendCredentials)
		admin.GET("/users/:email/credentials-preview", h.users.CredentialsPreview)

		admin.POST("/bookings/manual", h.bookings.Manual)
		admin.GET("/bookings", h.bookings.List)
		admin.POST("/bookings/:id/approve", h.bookings.Approve)
		admin.POST("/bookings/:id/deny", h.bookings.Deny)

		admin.GET("/activities", h.activity.List)
		admin.POST("/activities/export", h.activity.Export)

		admin.GET("/analysis", h.analytics.Get)
		admin.GET("/emails", h.emailLogs.List)
		admin.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return router
}
