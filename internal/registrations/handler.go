package registrations

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/apierr"
	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/internal/parser"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

// Store is the registration persistence used by the handler.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context, q string) ([]*models.Registration, error)
}

// UserChecker reports whether an email already belongs to a user.
type UserChecker interface {
	Exists(ctx context.Context, email string) (bool, error)
}

// Lifecycle applies approve/deny transitions.
type Lifecycle interface {
	ApproveRegistration(ctx context.Context, email string) (*models.User, error)
	DenyRegistration(ctx context.Context, email string) (*models.Registration, error)
}

// ManualRequest is the body for POST /registrations/manual.
type ManualRequest struct {
	RawEmail string `json:"raw_email" binding:"required"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	store     Store
	users     UserChecker
	lifecycle Lifecycle
	logger    *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(store Store, users UserChecker, lifecycle Lifecycle, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, users: users, lifecycle: lifecycle, logger: logger}
}

// Manual handles POST /registrations/manual. The pasted email is parsed and
// stored as a pending registration unless the address already has a user.
func (h *Handler) Manual(c *gin.Context) {
	var req ManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	parsed, err := parser.ParseAccessRequest(req.RawEmail)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to parse registration")
		return
	}

	ctx := c.Request.Context()
	exists, err := h.users.Exists(ctx, parsed.Email)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to check user")
		return
	}
	if exists {
		response.Conflict(c, "a user with this email already exists")
		return
	}

	reg := &models.Registration{
		Email:       parsed.Email,
		FirstName:   parsed.FirstName,
		LastName:    parsed.LastName,
		Affiliation: parsed.Affiliation,
		Project:     parsed.Project,
		Phone:       parsed.Phone,
	}
	if err := h.store.Create(ctx, reg); err != nil {
		apierr.Respond(c, h.logger, err, "failed to store registration")
		return
	}
	h.logger.Info("registration stored", zap.String("email", reg.Email))
	response.Created(c, reg)
}

// List handles GET /registrations?q=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to list registrations")
		return
	}
	response.OK(c, list)
}

// Approve handles POST /registrations/:email/approve.
func (h *Handler) Approve(c *gin.Context) {
	u, err := h.lifecycle.ApproveRegistration(c.Request.Context(), emailParam(c))
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to approve registration")
		return
	}
	response.OK(c, gin.H{"user": u, "status": models.RegistrationStatusRegistered})
}

// Deny handles POST /registrations/:email/deny.
func (h *Handler) Deny(c *gin.Context) {
	reg, err := h.lifecycle.DenyRegistration(c.Request.Context(), emailParam(c))
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to deny registration")
		return
	}
	response.OK(c, reg)
}

func emailParam(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Param("email")))
}
