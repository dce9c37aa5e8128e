package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/response"
	"github.com/campus-rcs/site-coordination/pkg/utils"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "site_session"

// UserLookup resolves researchers by email.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AdminCredentials is the single coordinator account.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginRequest is the body for POST /admin/login.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Project   string    `json:"project,omitempty"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler handles login and logout for researchers and the coordinator.
type Handler struct {
	users         UserLookup
	jwt           *JWTService
	revocations   Revocations
	admin         AdminCredentials
	secureCookies bool
	logger        *zap.Logger
}

// NewHandler creates an auth handler. revocations may be nil, in which case
// logout only clears the cookie.
func NewHandler(users UserLookup, jwt *JWTService, revocations Revocations, admin AdminCredentials, secureCookies bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		users:         users,
		jwt:           jwt,
		revocations:   revocations,
		admin:         admin,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Login handles POST /login. The stored password is the issued shared secret
// and is compared as-is.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("login lookup failed", zap.String("email", email), zap.Error(err))
			response.Internal(c, "failed to look up user")
			return
		}
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Password)), []byte(user.Password)) != 1 {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	h.issue(c, user.Email, user.Project, RoleResearcher)
}

// AdminLogin handles POST /admin/login against the bcrypt hash from configuration.
func (h *Handler) AdminLogin(c *gin.Context) {
	if h.admin.PasswordHash == "" {
		response.ServiceUnavailable(c, "admin login is not configured")
		return
	}
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.admin.Username)) == 1
	passOK := utils.CheckPassword(req.Password, h.admin.PasswordHash)
	if !userOK || !passOK {
		h.logger.Warn("admin login rejected", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		response.Unauthorized(c, "invalid username or password")
		return
	}
	h.issue(c, h.admin.Username, "", RoleAdmin)
}

// Logout handles POST /logout. A valid token is revoked for its remaining
// lifetime; the cookie is always cleared.
func (h *Handler) Logout(c *gin.Context) {
	if raw := TokenFromRequest(c); raw != "" && h.revocations != nil {
		if claims, err := h.jwt.Validate(raw); err == nil {
			if err := h.revocations.Revoke(c.Request.Context(), claims.ID, claims.TTL(time.Now())); err != nil {
				h.logger.Error("revoke session failed", zap.String("email", claims.Email), zap.Error(err))
				response.ServiceUnavailable(c, "failed to end session")
				return
			}
			h.logger.Info("session revoked", zap.String("email", claims.Email), zap.String("role", claims.Role))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookies, true)
	response.OK(c, gin.H{"logged_out": true})
}

func (h *Handler) issue(c *gin.Context, email, project, role string) {
	token, claims, err := h.jwt.Generate(email, project, role)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(h.jwt.Expiry().Seconds()), "/", "", h.secureCookies, true)
	h.logger.Info("session started", zap.String("email", email), zap.String("role", role))
	response.OK(c, TokenResponse{
		Token:     token,
		Email:     email,
		Project:   project,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// TokenFromRequest returns the bearer token or, failing that, the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
