package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"
)

// DefaultPort is the submission port used when none is configured.
const DefaultPort = 587

// Config holds the relay settings. An empty Host means sending is disabled.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// Configured reports whether a relay host is set.
func (c Config) Configured() bool {
	return c.Host != ""
}

// TransportError is returned when the relay cannot be reached, STARTTLS fails
// or authentication is rejected.
type TransportError struct {
	Host string
	Port int
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smtp %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SMTPSender delivers plain-text messages over a single STARTTLS session per message.
type SMTPSender struct {
	cfg    Config
	logger *zap.Logger
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg Config, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Configured reports whether a relay host is set.
func (s *SMTPSender) Configured() bool {
	return s.cfg.Configured()
}

// Send opens a connection, negotiates STARTTLS, authenticates when a user is
// configured, transmits the message and closes the connection. No retry.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if !s.cfg.Configured() {
		return fmt.Errorf("smtp send: host not configured")
	}
	if err := ctx.Err(); err != nil {
		return &TransportError{Host: s.cfg.Host, Port: s.cfg.Port, Err: err}
	}

	m := s.buildMessage(to, subject, body)
	d := s.dialer()

	start := time.Now()
	if err := d.DialAndSend(m); err != nil {
		s.logger.Error("smtp send failed",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("to", to),
			zap.Error(err),
		)
		return &TransportError{Host: s.cfg.Host, Port: s.cfg.Port, Err: err}
	}
	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}

func (s *SMTPSender) buildMessage(to, subject, body string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.RetryFailure = false
	if s.cfg.Timeout > 0 {
		d.Timeout = s.cfg.Timeout
	}
	return d
}
