package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/apierr"
	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

const dateLayout = "2006-01-02"

// Source provides the rows behind the summaries.
type Source interface {
	Bookings(ctx context.Context, f Filter) ([]models.Booking, error)
	ResearchActivity(ctx context.Context, f Filter) ([]models.ResearchActivity, error)
	ServiceActivity(ctx context.Context, f Filter) ([]models.ServiceActivity, error)
}

// EmailLister lists user emails for the filter selection.
type EmailLister interface {
	ListEmails(ctx context.Context) ([]string, error)
}

// Filters echoes the applied query parameters.
type Filters struct {
	Email            string `json:"email"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	ServiceStartDate string `json:"service_start_date,omitempty"`
	ServiceEndDate   string `json:"service_end_date,omitempty"`
}

// Report is the JSON shape of GET /analysis.
type Report struct {
	Selections      []string               `json:"selections"`
	Bookings        BookingSummary         `json:"booking_summary"`
	UserActivity    UserActivitySummary    `json:"user_activity"`
	ServiceActivity ServiceActivitySummary `json:"service_activity"`
	Filters         Filters                `json:"filters"`
}

// Handler handles GET /analysis.
type Handler struct {
	source Source
	users  EmailLister
	logger *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(source Source, users EmailLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{source: source, users: users, logger: logger}
}

// Get handles GET /analysis. The email and start/end dates filter bookings and
// researcher activity; the service dates filter service provider activity.
func (h *Handler) Get(c *gin.Context) {
	filters := Filters{
		Email:            strings.ToLower(strings.TrimSpace(c.Query("email"))),
		StartDate:        c.Query("start_date"),
		EndDate:          c.Query("end_date"),
		ServiceStartDate: c.Query("service_start_date"),
		ServiceEndDate:   c.Query("service_end_date"),
	}
	userFilter := Filter{Email: filters.Email}
	serviceFilter := Filter{}
	for _, p := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"start_date", filters.StartDate, &userFilter.Start},
		{"end_date", filters.EndDate, &userFilter.End},
		{"service_start_date", filters.ServiceStartDate, &serviceFilter.Start},
		{"service_end_date", filters.ServiceEndDate, &serviceFilter.End},
	} {
		if p.raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, p.raw)
		if err != nil {
			response.BadRequest(c, p.name+" must be YYYY-MM-DD")
			return
		}
		*p.dst = &t
	}

	ctx := c.Request.Context()
	selections, err := h.users.ListEmails(ctx)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to load analysis")
		return
	}
	bookings, err := h.source.Bookings(ctx, userFilter)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to load analysis")
		return
	}
	research, err := h.source.ResearchActivity(ctx, userFilter)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to load analysis")
		return
	}
	service, err := h.source.ServiceActivity(ctx, serviceFilter)
	if err != nil {
		apierr.Respond(c, h.logger, err, "failed to load analysis")
		return
	}

	response.OK(c, Report{
		Selections:      selections,
		Bookings:        SummarizeBookings(bookings),
		UserActivity:    SummarizeUserActivity(research),
		ServiceActivity: SummarizeServiceActivity(service),
		Filters:         filters,
	})
}
