package models

import "time"

// Registration status values. pending is the only non-terminal state.
const (
	RegistrationStatusPending    = "pending"
	RegistrationStatusRegistered = "registriert"
	RegistrationStatusDenied     = "denied"
)

// Registration is a pending request for platform access.
type Registration struct {
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Affiliation string    `json:"affiliation"`
	Project     string    `json:"project"`
	Phone       string    `json:"phone"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsPending reports whether the registration can still be approved or denied.
func (r *Registration) IsPending() bool {
	return r.Status == RegistrationStatusPending
}
