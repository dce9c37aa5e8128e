package models

import "time"

// Presence values recorded in the activity tables.
const (
	PresenceCheckIn  = "check-in"
	PresenceCheckOut = "check-out"
)

// ValidPresence reports whether p is an accepted presence value.
func ValidPresence(p string) bool {
	return p == PresenceCheckIn || p == PresenceCheckOut
}

// ResearchActivity is a check-in/out event of a logged-in researcher.
type ResearchActivity struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Project   string    `json:"project"`
	Presence  string    `json:"presence"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceActivity is a check-in/out event of an external service provider.
type ServiceActivity struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Service   string    `json:"service"`
	Presence  string    `json:"presence"`
	CreatedAt time.Time `json:"created_at"`
}
