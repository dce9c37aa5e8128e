package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/internal/parser"
	"github.com/campus-rcs/site-coordination/pkg/mailer"
)

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"parse", &parser.ParseError{Reason: "missing email"}, http.StatusBadRequest},
		{"not found", models.ErrBookingNotFound, http.StatusNotFound},
		{"exists", models.ErrUserExists, http.StatusConflict},
		{"not pending", fmt.Errorf("booking is gebucht: %w", models.ErrNotPending), http.StatusConflict},
		{"mail not configured", models.ErrMailNotConfigured, http.StatusServiceUnavailable},
		{"transport", &mailer.TransportError{Host: "smtp", Port: 587, Err: errors.New("refused")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			Respond(c, nil, tt.err, "failed")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestNotifyWarning(t *testing.T) {
	assert.Empty(t, NotifyWarning(nil))
	assert.Contains(t, NotifyWarning(models.ErrMailNotConfigured), "not configured")
	assert.Contains(t, NotifyWarning(errors.New("relay down")), "relay down")
}
