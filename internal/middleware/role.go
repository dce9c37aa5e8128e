package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-rcs/site-coordination/internal/auth"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

// RequireRole returns a middleware that allows only the given session roles.
// It must run after JWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			response.Unauthorized(c, "missing session")
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows coordinator sessions only.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(auth.RoleAdmin)
}

// RequireResearcher allows researcher sessions only.
func RequireResearcher() gin.HandlerFunc {
	return RequireRole(auth.RoleResearcher)
}
