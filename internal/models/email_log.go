package models

import (
	"time"

	"github.com/google/uuid"
)

// Email types sent by the lifecycle.
const (
	EmailTypeCredentials         = "credentials"
	EmailTypeBookingConfirmation = "booking_confirmation"
	EmailTypeBookingDenial       = "booking_denial"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records every outbound notification attempt.
type EmailLog struct {
	ID             uuid.UUID `json:"id"`
	EmailType      string    `json:"email_type"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject,omitempty"`
	Reference      string    `json:"reference,omitempty"` // booking id or user email
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
