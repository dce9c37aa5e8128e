// Package lifecycle applies approve/deny transitions to registrations and
// bookings and sends the notifications that go with them.
package lifecycle

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/internal/notifications"
	"github.com/campus-rcs/site-coordination/pkg/metrics"
	"github.com/campus-rcs/site-coordination/pkg/utils"
)

// RegistrationStore persists registration transitions. Approve must insert the
// user and update the registration in one transaction.
type RegistrationStore interface {
	Approve(ctx context.Context, email, password string) (*models.User, error)
	Deny(ctx context.Context, email string) (*models.Registration, error)
}

// BookingStore persists booking transitions out of the pending state.
type BookingStore interface {
	Transition(ctx context.Context, id int64, to string) (*models.Booking, error)
}

// UserStore reads users and records credential sends.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	IncrementCredentialsSent(ctx context.Context, email string) (int, error)
}

// EmailLogStore records notification attempts.
type EmailLogStore interface {
	Create(ctx context.Context, el *models.EmailLog) error
}

// Sender delivers one composed message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Options configures optional behaviour.
type Options struct {
	// MailConfigured is false when no SMTP host is set; sends are then skipped
	// and reported as models.ErrMailNotConfigured.
	MailConfigured bool
	// NotifyBookingDenial sends the denial template when a booking is denied.
	NotifyBookingDenial bool
	// GeneratePassword overrides the credential generator.
	GeneratePassword func() string
}

// BookingOutcome is the result of a booking transition. The status change is
// committed even when NotifyErr is set.
type BookingOutcome struct {
	Booking   *models.Booking `json:"booking"`
	Notified  bool            `json:"notified"`
	NotifyErr error           `json:"-"`
}

// Coordinator orchestrates the registration and booking lifecycles.
type Coordinator struct {
	registrations RegistrationStore
	bookings      BookingStore
	users         UserStore
	emailLogs     EmailLogStore
	sender        Sender
	opts          Options
	logger        *zap.Logger
}

// New creates a coordinator. emailLogs may be nil.
func New(registrations RegistrationStore, bookings BookingStore, users UserStore, emailLogs EmailLogStore, sender Sender, opts Options, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.GeneratePassword == nil {
		opts.GeneratePassword = utils.GeneratePassword
	}
	return &Coordinator{
		registrations: registrations,
		bookings:      bookings,
		users:         users,
		emailLogs:     emailLogs,
		sender:        sender,
		opts:          opts,
		logger:        logger,
	}
}

// ApproveRegistration moves a pending registration to registriert and creates
// its user with a freshly generated password. If a user with the email already
// exists the registration stays pending and models.ErrAlreadyExists is returned.
func (c *Coordinator) ApproveRegistration(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	u, err := c.registrations.Approve(ctx, email, c.opts.GeneratePassword())
	if err != nil {
		c.logger.Warn("approve registration rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	metrics.Transitions.WithLabelValues("registration", models.RegistrationStatusRegistered).Inc()
	c.logger.Info("registration approved", zap.String("email", email))
	return u, nil
}

// DenyRegistration moves a pending registration to denied.
func (c *Coordinator) DenyRegistration(ctx context.Context, email string) (*models.Registration, error) {
	email = strings.TrimSpace(email)
	reg, err := c.registrations.Deny(ctx, email)
	if err != nil {
		c.logger.Warn("deny registration rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	metrics.Transitions.WithLabelValues("registration", models.RegistrationStatusDenied).Inc()
	c.logger.Info("registration denied", zap.String("email", email))
	return reg, nil
}

// ApproveBooking moves a pending booking to gebucht and then attempts one
// confirmation email. A failed or skipped send does not undo the status change.
func (c *Coordinator) ApproveBooking(ctx context.Context, id int64) (*BookingOutcome, error) {
	b, err := c.bookings.Transition(ctx, id, models.BookingStatusBooked)
	if err != nil {
		c.logger.Warn("approve booking rejected", zap.Int64("booking_id", id), zap.Error(err))
		return nil, err
	}
	metrics.Transitions.WithLabelValues("booking", models.BookingStatusBooked).Inc()
	c.logger.Info("booking approved", zap.Int64("booking_id", id), zap.String("email", b.Email))

	out := &BookingOutcome{Booking: b}
	out.NotifyErr = c.notify(ctx, notifications.BookingConfirmationEmail(b), strconv.FormatInt(b.ID, 10))
	out.Notified = out.NotifyErr == nil
	return out, nil
}

// DenyBooking moves a pending booking to denied. The denial email is only sent
// when Options.NotifyBookingDenial is set.
func (c *Coordinator) DenyBooking(ctx context.Context, id int64) (*BookingOutcome, error) {
	b, err := c.bookings.Transition(ctx, id, models.BookingStatusDenied)
	if err != nil {
		c.logger.Warn("deny booking rejected", zap.Int64("booking_id", id), zap.Error(err))
		return nil, err
	}
	metrics.Transitions.WithLabelValues("booking", models.BookingStatusDenied).Inc()
	c.logger.Info("booking denied", zap.Int64("booking_id", id), zap.String("email", b.Email))

	out := &BookingOutcome{Booking: b}
	if c.opts.NotifyBookingDenial {
		out.NotifyErr = c.notify(ctx, notifications.BookingDenialEmail(b), strconv.FormatInt(b.ID, 10))
		out.Notified = out.NotifyErr == nil
	}
	return out, nil
}

// SendCredentials emails the stored credentials to an existing user and
// increments credentials_sent on success. On any send failure the counter is untouched.
func (c *Coordinator) SendCredentials(ctx context.Context, email string) (*models.User, error) {
	u, err := c.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if err := c.notify(ctx, notifications.CredentialsEmailForUser(u), u.Email); err != nil {
		return u, err
	}
	n, err := c.users.IncrementCredentialsSent(ctx, u.Email)
	if err != nil {
		c.logger.Error("record credentials sent failed", zap.String("email", u.Email), zap.Error(err))
		return u, err
	}
	u.CredentialsSent = n
	return u, nil
}

// PreviewCredentials renders the credentials email for a user without sending it.
func (c *Coordinator) PreviewCredentials(ctx context.Context, email string) (notifications.Message, error) {
	u, err := c.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return notifications.Message{}, err
	}
	return notifications.CredentialsEmailForUser(u), nil
}

// MailConfigured reports whether notifications will be attempted.
func (c *Coordinator) MailConfigured() bool {
	return c.opts.MailConfigured
}

func (c *Coordinator) notify(ctx context.Context, msg notifications.Message, reference string) error {
	if !c.opts.MailConfigured || c.sender == nil {
		metrics.EmailsSent.WithLabelValues(msg.Type, "skipped").Inc()
		c.logger.Warn("smtp host not configured; email not sent", zap.String("type", msg.Type), zap.String("to", msg.To))
		return models.ErrMailNotConfigured
	}

	sendErr := c.sender.Send(ctx, msg.To, msg.Subject, msg.Body)

	entry := &models.EmailLog{
		EmailType:      msg.Type,
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		Reference:      reference,
		Status:         models.EmailLogStatusSent,
	}
	result := "sent"
	if sendErr != nil {
		entry.Status = models.EmailLogStatusFailed
		entry.ErrorMessage = sendErr.Error()
		result = "failed"
	}
	metrics.EmailsSent.WithLabelValues(msg.Type, result).Inc()

	if c.emailLogs != nil {
		// Recorded even if the request was cancelled mid-send.
		if err := c.emailLogs.Create(context.WithoutCancel(ctx), entry); err != nil {
			c.logger.Warn("write email log failed", zap.String("type", msg.Type), zap.Error(err))
		}
	}
	return sendErr
}
