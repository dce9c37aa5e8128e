package users

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/apierr"
	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/internal/notifications"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

// Lister lists users.
type Lister interface {
	List(ctx context.Context, q string) ([]*models.User, error)
}

// Credentials sends and previews the credentials email.
type Credentials interface {
	SendCredentials(ctx context.Context, email string) (*models.User, error)
	PreviewCredentials(ctx context.Context, email string) (notifications.Message, error)
}

// Handler handles user management endpoints.
type Handler struct {
	users       Lister
	credentials Credentials
	logger      *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(users Lister, credentials Credentials, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{users: users, credentials: credentials, logger: logger}
}

// List handles GET /users?q=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.users.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to list users")
		return
	}
	response.OK(c, list)
}

// SendCredentials handles POST /users/:email/send-credentials.
// A missing SMTP host yields 503, a relay failure 502; the counter only moves on success.
func (h *Handler) SendCredentials(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	u, err := h.credentials.SendCredentials(c.Request.Context(), email)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to send credentials")
		return
	}
	h.logger.Info("credentials sent", zap.String("email", u.Email), zap.Int("credentials_sent", u.CredentialsSent))
	response.OK(c, gin.H{"email": u.Email, "credentials_sent": u.CredentialsSent})
}

// CredentialsPreview handles GET /users/:email/credentials-preview.
func (h *Handler) CredentialsPreview(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	msg, err := h.credentials.PreviewCredentials(c.Request.Context(), email)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to render credentials")
		return
	}
	response.OK(c, msg)
}
