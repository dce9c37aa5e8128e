// Package apierr maps domain errors to HTTP responses.
package apierr

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/internal/parser"
	"github.com/campus-rcs/site-coordination/pkg/mailer"
	"github.com/campus-rcs/site-coordination/pkg/response"
)

// Respond writes the response for err. Unrecognised errors are logged and
// reported as 500 with the fallback message.
func Respond(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var parseErr *parser.ParseError
	var transportErr *mailer.TransportError
	switch {
	case errors.As(err, &parseErr):
		response.BadRequest(c, parseErr.Error())
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrNotPending):
		response.Conflict(c, err.Error())
	case errors.Is(err, models.ErrMailNotConfigured):
		response.ServiceUnavailable(c, err.Error())
	case errors.As(err, &transportErr):
		response.BadGateway(c, transportErr.Error())
	default:
		if logger != nil {
			logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		}
		_ = c.Error(err)
		response.Internal(c, fallback)
	}
}

// NotifyWarning describes a skipped or failed notification after a committed
// state change. It returns "" when err is nil.
func NotifyWarning(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, models.ErrMailNotConfigured) {
		return "status updated; email not sent: SMTP host is not configured"
	}
	return "status updated; email could not be sent: " + err.Error()
}
