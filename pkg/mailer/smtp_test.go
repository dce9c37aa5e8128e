package mailer

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Configured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.True(t, Config{Host: "smtp.example.org"}.Configured())
}

func TestNewSMTPSender_DefaultPort(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.example.org"}, nil)
	assert.Equal(t, DefaultPort, s.cfg.Port)
}

func TestDialer_RequiresStartTLS(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.example.org", Port: 2525, User: "u", Password: "p", Timeout: 3 * time.Second}, nil)
	d := s.dialer()
	assert.Equal(t, mail.MandatoryStartTLS, d.StartTLSPolicy)
	assert.False(t, d.SSL)
	assert.False(t, d.RetryFailure)
	assert.Equal(t, "smtp.example.org", d.TLSConfig.ServerName)
	assert.Equal(t, 3*time.Second, d.Timeout)
	assert.Equal(t, "u", d.Username)
}

func TestBuildMessage_Headers(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.example.org", From: "site@example.org"}, nil)
	m := s.buildMessage("a@b.com", "Your Research Platform Account", "hello")

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "From: site@example.org")
	assert.Contains(t, out, "To: a@b.com")
	assert.Contains(t, out, "Subject: Your Research Platform Account")
	assert.Contains(t, out, "hello")
}

func TestSend_NotConfigured(t *testing.T) {
	s := NewSMTPSender(Config{}, nil)
	err := s.Send(context.Background(), "a@b.com", "s", "b")
	require.Error(t, err)
	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

func TestSend_UnreachableRelay(t *testing.T) {
	// Reserve a port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	s := NewSMTPSender(Config{Host: "127.0.0.1", Port: addr.Port, From: "site@example.org", Timeout: 2 * time.Second}, nil)
	err = s.Send(context.Background(), "a@b.com", "s", "b")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, addr.Port, te.Port)
	assert.Equal(t, "127.0.0.1", te.Host)
}

func TestSend_CancelledContext(t *testing.T) {
	s := NewSMTPSender(Config{Host: "127.0.0.1", Port: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Send(ctx, "a@b.com", "s", "b")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, context.Canceled)
}
