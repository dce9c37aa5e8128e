package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/auth"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

const (
	// ContextUserEmail is the key for the session email in gin context.
	ContextUserEmail = "user_email"
	// ContextUserRole is the key for the session role in gin context.
	ContextUserRole = "user_role"
	// ContextUserProject is the key for the researcher's project in gin context.
	ContextUserProject = "user_project"
	// ContextTokenID is the key for the session token ID in gin context.
	ContextTokenID = "token_id"
)

// JWT returns a middleware that validates the session token from the
// Authorization header or session cookie and rejects revoked sessions.
func JWT(jwtService *auth.JWTService, revocations auth.Revocations, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.TokenFromRequest(c)
		if raw == "" {
			response.Unauthorized(c, "missing session")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(raw)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				if logger != nil {
					logger.Error("session revocation check failed", zap.Error(err))
				}
				response.ServiceUnavailable(c, "session store unavailable")
				c.Abort()
				return
			}
			if revoked {
				response.Unauthorized(c, "session ended")
				c.Abort()
				return
			}
		}
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserProject, claims.Project)
		c.Set(ContextTokenID, claims.ID)
		c.Next()
	}
}

// SessionEmail returns the authenticated email set by JWT.
func SessionEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmail)
}

// SessionProject returns the authenticated researcher's project set by JWT.
func SessionProject(c *gin.Context) string {
	return c.GetString(ContextUserProject)
}
