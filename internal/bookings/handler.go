package bookings

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/apierr"
	"github.com/campus-rcs/site-coordination/internal/lifecycle"
	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/internal/parser"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

// Store is the booking persistence used by the handler.
type Store interface {
	Create(ctx context.Context, b *models.Booking) error
	List(ctx context.Context, q string) ([]*models.Booking, error)
}

// Lifecycle applies approve/deny transitions.
type Lifecycle interface {
	ApproveBooking(ctx context.Context, id int64) (*lifecycle.BookingOutcome, error)
	DenyBooking(ctx context.Context, id int64) (*lifecycle.BookingOutcome, error)
}

// ManualRequest is the body for POST /bookings/manual.
type ManualRequest struct {
	RawEmail string `json:"raw_email" binding:"required"`
}

// Handler handles booking HTTP endpoints.
type Handler struct {
	store     Store
	lifecycle Lifecycle
	logger    *zap.Logger
}

// NewHandler creates a bookings handler.
func NewHandler(store Store, lifecycle Lifecycle, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, lifecycle: lifecycle, logger: logger}
}

// Manual handles POST /bookings/manual.
func (h *Handler) Manual(c *gin.Context) {
	var req ManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	parsed, err := parser.ParseBookingRequest(req.RawEmail)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to parse booking")
		return
	}
	b := &models.Booking{
		Email:         parsed.Email,
		FirstName:     parsed.FirstName,
		LastName:      parsed.LastName,
		Project:       parsed.Project,
		TimeslotRaw:   parsed.TimeslotRaw,
		DurationWeeks: parsed.DurationWeeks,
	}
	if err := h.store.Create(c.Request.Context(), b); err != nil {
		apierr.Respond(c, h.logger, err, "failed to store booking")
		return
	}
	h.logger.Info("booking stored", zap.Int64("booking_id", b.ID), zap.String("email", b.Email))
	response.Created(c, b)
}

// List handles GET /bookings?q=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to list bookings")
		return
	}
	response.OK(c, list)
}

// Approve handles POST /bookings/:id/approve. The status change stands even
// when the confirmation email is skipped or fails; that is reported as a warning.
func (h *Handler) Approve(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	out, err := h.lifecycle.ApproveBooking(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to approve booking")
		return
	}
	h.respondOutcome(c, out)
}

// Deny handles POST /bookings/:id/deny.
func (h *Handler) Deny(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	out, err := h.lifecycle.DenyBooking(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to deny booking")
		return
	}
	h.respondOutcome(c, out)
}

func (h *Handler) respondOutcome(c *gin.Context, out *lifecycle.BookingOutcome) {
	if warning := apierr.NotifyWarning(out.NotifyErr); warning != "" {
		response.OKWithWarning(c, out, warning)
		return
	}
	response.OK(c, out)
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid booking id")
		return 0, false
	}
	return id, true
}
