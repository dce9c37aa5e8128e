package activity

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/apierr"
	"github.com/campus-rcs/site-coordination/internal/auth"
	"github.com/campus-rcs/site-coordination/internal/middleware"
	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/metrics"
	"github.com/campus-rcs/site-coordination/pkg/response"
	"github.com/campus-rcs/site-coordination/pkg/storage"
)

// Roles offered on the check-in landing page.
const (
	RoleResearcher      = auth.RoleResearcher
	RoleServiceProvider = "service_provider"
)

// Store is the activity persistence used by the handler.
type Store interface {
	InsertResearch(ctx context.Context, a *models.ResearchActivity) error
	InsertService(ctx context.Context, a *models.ServiceActivity) error
	ListResearch(ctx context.Context, q string) ([]models.ResearchActivity, error)
	ListService(ctx context.Context, q string) ([]models.ServiceActivity, error)
}

// Exporter stores export snapshots and signs download links.
type Exporter interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
}

// SelectRequest is the body for POST /select.
type SelectRequest struct {
	Role string `json:"role" binding:"required"`
}

// PresenceRequest is the body for POST /checkin.
type PresenceRequest struct {
	Presence string `json:"presence" binding:"required"`
}

// ServiceProviderRequest is the body for POST /service-provider.
type ServiceProviderRequest struct {
	Name     string `json:"name" binding:"required"`
	Company  string `json:"company" binding:"required"`
	Service  string `json:"service" binding:"required"`
	Presence string `json:"presence" binding:"required"`
}

// ExportResponse is returned by POST /activities/export.
type ExportResponse struct {
	Table     string    `json:"table"`
	Rows      int       `json:"rows"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler handles check-in/out and activity log endpoints.
type Handler struct {
	store         Store
	exporter      Exporter
	presignExpire time.Duration
	logger        *zap.Logger
}

// NewHandler creates an activity handler. exporter may be nil when S3 is not configured.
func NewHandler(store Store, exporter Exporter, presignExpire time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, exporter: exporter, presignExpire: presignExpire, logger: logger}
}

// Landing handles GET /.
func (h *Handler) Landing(c *gin.Context) {
	response.OK(c, gin.H{"roles": []string{RoleResearcher, RoleServiceProvider}})
}

// Select handles POST /select and returns the next step for the chosen role.
func (h *Handler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	next := "/service-provider"
	if strings.TrimSpace(req.Role) == RoleResearcher {
		next = "/login"
	}
	response.OK(c, gin.H{"role": req.Role, "next": next})
}

// CheckinStatus handles GET /checkin for a researcher session.
func (h *Handler) CheckinStatus(c *gin.Context) {
	response.OK(c, gin.H{
		"email":   middleware.SessionEmail(c),
		"project": middleware.SessionProject(c),
	})
}

// Checkin handles POST /checkin and records a presence event for the session user.
func (h *Handler) Checkin(c *gin.Context) {
	var req PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidPresence(req.Presence) {
		response.BadRequest(c, "presence must be check-in or check-out")
		return
	}
	a := &models.ResearchActivity{
		Email:    middleware.SessionEmail(c),
		Project:  middleware.SessionProject(c),
		Presence: req.Presence,
	}
	if err := h.store.InsertResearch(c.Request.Context(), a); err != nil {
		apierr.Respond(c, h.logger, err, "failed to record activity")
		return
	}
	metrics.Presence.WithLabelValues(TableResearch, a.Presence).Inc()
	response.Created(c, a)
}

// ServiceProvider handles POST /service-provider.
func (h *Handler) ServiceProvider(c *gin.Context) {
	var req ServiceProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidPresence(req.Presence) {
		response.BadRequest(c, "presence must be check-in or check-out")
		return
	}
	a := &models.ServiceActivity{
		Name:     strings.TrimSpace(req.Name),
		Company:  strings.TrimSpace(req.Company),
		Service:  strings.TrimSpace(req.Service),
		Presence: req.Presence,
	}
	if err := h.store.InsertService(c.Request.Context(), a); err != nil {
		apierr.Respond(c, h.logger, err, "failed to record activity")
		return
	}
	metrics.Presence.WithLabelValues(TableService, a.Presence).Inc()
	response.Created(c, a)
}

// List handles GET /activities?table=research|service&q=. Unknown tables fall back to research.
func (h *Handler) List(c *gin.Context) {
	table := NormalizeTable(c.Query("table"))
	ctx := c.Request.Context()
	q := c.Query("q")

	var (
		rows any
		err  error
	)
	if table == TableService {
		rows, err = h.store.ListService(ctx, q)
	} else {
		rows, err = h.store.ListResearch(ctx, q)
	}
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to list activities")
		return
	}
	response.OK(c, gin.H{"table": table, "rows": rows})
}

// Export handles POST /activities/export?table=&q=. The CSV snapshot is
// uploaded to S3 and a pre-signed download URL is returned.
func (h *Handler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.ServiceUnavailable(c, "activity export storage is not configured")
		return
	}
	table := NormalizeTable(c.Query("table"))
	ctx := c.Request.Context()
	q := c.Query("q")

	var (
		buf bytes.Buffer
		n   int
	)
	if table == TableService {
		rows, err := h.store.ListService(ctx, q)
		if err != nil {
			apierr.Respond(c, h.logger, err, "failed to export activities")
			return
		}
		n = len(rows)
		err = WriteServiceCSV(&buf, rows)
		if err != nil {
			apierr.Respond(c, h.logger, err, "failed to export activities")
			return
		}
	} else {
		rows, err := h.store.ListResearch(ctx, q)
		if err != nil {
			apierr.Respond(c, h.logger, err, "failed to export activities")
			return
		}
		n = len(rows)
		err = WriteResearchCSV(&buf, rows)
		if err != nil {
			apierr.Respond(c, h.logger, err, "failed to export activities")
			return
		}
	}

	now := time.Now()
	key := storage.ExportKey(table, now)
	size := int64(buf.Len())
	if err := h.exporter.Upload(ctx, key, "text/csv", &buf, size); err != nil {
		h.logger.Error("upload export failed", zap.String("key", key), zap.Error(err))
		response.BadGateway(c, "failed to store export")
		return
	}
	url, err := h.exporter.PresignDownload(ctx, key)
	if err != nil {
		h.logger.Error("presign export failed", zap.String("key", key), zap.Error(err))
		response.Internal(c, "failed to sign export url")
		return
	}
	h.logger.Info("activity export created", zap.String("table", table), zap.Int("rows", n), zap.String("key", key))
	response.Created(c, ExportResponse{
		Table:     table,
		Rows:      n,
		Key:       key,
		URL:       url,
		ExpiresAt: now.Add(h.presignExpire),
	})
}
