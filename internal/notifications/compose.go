// Package notifications builds the plain-text emails sent by the lifecycle.
// Every function is pure: missing fields render as empty segments.
package notifications

import (
	"strconv"
	"strings"

	"github.com/campus-rcs/site-coordination/internal/models"
)

// Subjects are fixed and never interpolated.
const (
	SubjectCredentials         = "Your Research Platform Account"
	SubjectBookingConfirmation = "Your Booking Is Confirmed"
	SubjectBookingDenial       = "Your Booking Request Was Declined"
)

const signature = "Site Coordination Team"

// Message is a composed notification ready for the mail transport.
type Message struct {
	Type    string `json:"type"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CredentialsEmail builds the credentials message for an approved user.
func CredentialsEmail(recipient, password, firstName, lastName string) Message {
	return Message{
		Type:    models.EmailTypeCredentials,
		To:      recipient,
		Subject: SubjectCredentials,
		Body: lines(
			greeting(firstName, lastName),
			"",
			"your registration was approved. Here are your credentials:",
			"Email: "+recipient,
			"Password: "+password,
			"",
			"Please keep this information secure.",
			"",
			"How to book a timeslot:",
			"1) Log into the booking page.",
			"2) Choose your timeslot and project details.",
			"3) Submit the form to request approval.",
			"",
			"Best regards,",
			signature,
		),
	}
}

// CredentialsEmailForUser is CredentialsEmail with the fields of a stored user.
func CredentialsEmailForUser(u *models.User) Message {
	return CredentialsEmail(u.Email, u.Password, u.FirstName, u.LastName)
}

// BookingConfirmationEmail builds the confirmation sent when a booking is approved.
func BookingConfirmationEmail(b *models.Booking) Message {
	return Message{
		Type:    models.EmailTypeBookingConfirmation,
		To:      b.Email,
		Subject: SubjectBookingConfirmation,
		Body: lines(
			greeting(b.FirstName, b.LastName),
			"",
			"your booking request was approved.",
			"",
			"Project: "+b.Project,
			"Timeslot: "+b.TimeslotRaw,
			"Duration (weeks): "+strconv.Itoa(b.DurationWeeks),
			"",
			"Please check in on site when you arrive and check out when you leave.",
			"",
			"Best regards,",
			signature,
		),
	}
}

// BookingDenialEmail builds the message sent when a booking is denied.
func BookingDenialEmail(b *models.Booking) Message {
	return Message{
		Type:    models.EmailTypeBookingDenial,
		To:      b.Email,
		Subject: SubjectBookingDenial,
		Body: lines(
			greeting(b.FirstName, b.LastName),
			"",
			"unfortunately your booking request could not be approved.",
			"",
			"Project: "+b.Project,
			"Timeslot: "+b.TimeslotRaw,
			"Duration (weeks): "+strconv.Itoa(b.DurationWeeks),
			"",
			"Feel free to request a different timeslot.",
			"",
			"Best regards,",
			signature,
		),
	}
}

func greeting(firstName, lastName string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		return "Hello,"
	}
	return "Hello " + name + ","
}

func lines(l ...string) string {
	return strings.Join(l, "\n")
}
