package emaillogs

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/apierr"
	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

// Lister lists recorded notification attempts.
type Lister interface {
	List(ctx context.Context, q string) ([]*models.EmailLog, error)
}

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /emails?q=. Matches type, recipient, reference or status.
func (h *Handler) List(c *gin.Context) {
	logs, err := h.repo.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}
