package models

import "time"

// Booking status values.
const (
	BookingStatusPending = "pending"
	BookingStatusBooked  = "gebucht"
	BookingStatusDenied  = "denied"
)

// Booking is a request to reserve a timeslot at the site.
type Booking struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Project       string    `json:"project"`
	TimeslotRaw   string    `json:"timeslot_raw"`
	DurationWeeks int       `json:"duration_weeks"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsPending reports whether the booking can still be approved or denied.
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}
