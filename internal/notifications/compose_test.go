package notifications

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-rcs/site-coordination/internal/models"
)

func TestCredentialsEmail(t *testing.T) {
	m := CredentialsEmail("a@b.com", "Xk9#mP2", "Ada", "Lovelace")

	assert.Equal(t, "a@b.com", m.To)
	assert.Equal(t, SubjectCredentials, m.Subject)
	assert.NotContains(t, m.Subject, "a@b.com")
	assert.NotContains(t, m.Subject, "Xk9#mP2")
	assert.Contains(t, m.Body, "a@b.com")
	assert.Contains(t, m.Body, "Xk9#mP2")
	assert.Contains(t, m.Body, "Email: a@b.com\n")
	assert.Contains(t, m.Body, "Password: Xk9#mP2\n")
	assert.True(t, strings.HasPrefix(m.Body, "Hello Ada Lovelace,"))
	assert.Equal(t, models.EmailTypeCredentials, m.Type)
}

func TestCredentialsEmail_Deterministic(t *testing.T) {
	a := CredentialsEmail("a@b.com", "pw", "", "")
	b := CredentialsEmail("a@b.com", "pw", "", "")
	assert.Equal(t, a, b)
}

func TestCredentialsEmail_MissingFields(t *testing.T) {
	m := CredentialsEmail("", "", "", "")
	assert.True(t, strings.HasPrefix(m.Body, "Hello,"))
	assert.Contains(t, m.Body, "Email: \n")
	assert.Contains(t, m.Body, "Password: \n")
}

func TestBookingConfirmationEmail(t *testing.T) {
	b := &models.Booking{
		ID:            7,
		Email:         "r@lab.org",
		FirstName:     "Rosalind",
		Project:       "Crystals",
		TimeslotRaw:   "2025-W10; Mon-Fri",
		DurationWeeks: 2,
	}
	m := BookingConfirmationEmail(b)

	assert.Equal(t, "r@lab.org", m.To)
	assert.Equal(t, SubjectBookingConfirmation, m.Subject)
	assert.Contains(t, m.Body, "Project: Crystals")
	assert.Contains(t, m.Body, "Timeslot: 2025-W10; Mon-Fri")
	assert.Contains(t, m.Body, "Duration (weeks): 2")
	assert.Contains(t, m.Body, "Hello Rosalind,")
}

func TestBookingDenialEmail(t *testing.T) {
	m := BookingDenialEmail(&models.Booking{Email: "r@lab.org", Project: "P", TimeslotRaw: "W1"})
	assert.Equal(t, SubjectBookingDenial, m.Subject)
	assert.Equal(t, models.EmailTypeBookingDenial, m.Type)
	assert.Contains(t, m.Body, "Project: P")
	assert.Contains(t, m.Body, "Duration (weeks): 0")
}
