// Package parser extracts registration and booking fields from pasted email text.
package parser

import (
	"bufio"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports why pasted text could not be turned into a request.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse request: " + e.Reason
}

// AccessRequest holds the fields of a platform access request.
type AccessRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Affiliation string `json:"affiliation"`
	Project     string `json:"project"`
	Phone       string `json:"phone"`
}

// BookingRequest holds the fields of a timeslot booking request.
type BookingRequest struct {
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Project       string `json:"project"`
	TimeslotRaw   string `json:"timeslot_raw"`
	DurationWeeks int    `json:"duration_weeks"`
}

type field int

const (
	fieldEmail field = iota + 1
	fieldFirstName
	fieldLastName
	fieldAffiliation
	fieldProject
	fieldPhone
	fieldTimeslot
	fieldDuration
)

// labels maps normalized English and German labels to fields.
var labels = map[string]field{
	"email":          fieldEmail,
	"e-mail":         fieldEmail,
	"mail":           fieldEmail,
	"email address":  fieldEmail,
	"e-mail-adresse": fieldEmail,

	"first name": fieldFirstName,
	"firstname":  fieldFirstName,
	"given name": fieldFirstName,
	"vorname":    fieldFirstName,

	"last name":   fieldLastName,
	"lastname":    fieldLastName,
	"surname":     fieldLastName,
	"family name": fieldLastName,
	"nachname":    fieldLastName,

	"affiliation":  fieldAffiliation,
	"institution":  fieldAffiliation,
	"organization": fieldAffiliation,
	"organisation": fieldAffiliation,
	"institut":     fieldAffiliation,
	"einrichtung":  fieldAffiliation,

	"project":      fieldProject,
	"project name": fieldProject,
	"projekt":      fieldProject,
	"projektname":  fieldProject,

	"phone":     fieldPhone,
	"telephone": fieldPhone,
	"tel":       fieldPhone,
	"telefon":   fieldPhone,

	"timeslot":  fieldTimeslot,
	"time slot": fieldTimeslot,
	"week":      fieldTimeslot,
	"zeitraum":  fieldTimeslot,
	"zeitslot":  fieldTimeslot,
	"woche":     fieldTimeslot,

	"duration": fieldDuration,
	"dauer":    fieldDuration,
}

// ParseAccessRequest parses an access request. Email, first name and last name are required.
func ParseAccessRequest(raw string) (*AccessRequest, error) {
	values, err := scan(raw)
	if err != nil {
		return nil, err
	}
	req := &AccessRequest{
		Email:       strings.ToLower(values[fieldEmail]),
		FirstName:   values[fieldFirstName],
		LastName:    values[fieldLastName],
		Affiliation: values[fieldAffiliation],
		Project:     values[fieldProject],
		Phone:       values[fieldPhone],
	}
	if err := requireFields(map[string]string{
		"email":      req.Email,
		"first name": req.FirstName,
		"last name":  req.LastName,
	}, "email", "first name", "last name"); err != nil {
		return nil, err
	}
	if !looksLikeEmail(req.Email) {
		return nil, &ParseError{Reason: "invalid email address " + strconv.Quote(req.Email)}
	}
	return req, nil
}

// ParseBookingRequest parses a booking request. Email, project and timeslot are
// required. Duration is the leading integer of the duration line and defaults to 1.
func ParseBookingRequest(raw string) (*BookingRequest, error) {
	values, err := scan(raw)
	if err != nil {
		return nil, err
	}
	req := &BookingRequest{
		Email:         strings.ToLower(values[fieldEmail]),
		FirstName:     values[fieldFirstName],
		LastName:      values[fieldLastName],
		Project:       values[fieldProject],
		TimeslotRaw:   values[fieldTimeslot],
		DurationWeeks: parseDuration(values[fieldDuration]),
	}
	if err := requireFields(map[string]string{
		"email":    req.Email,
		"project":  req.Project,
		"timeslot": req.TimeslotRaw,
	}, "email", "project", "timeslot"); err != nil {
		return nil, err
	}
	if !looksLikeEmail(req.Email) {
		return nil, &ParseError{Reason: "invalid email address " + strconv.Quote(req.Email)}
	}
	return req, nil
}

// scan collects "Label: value" lines. The first occurrence of a label wins.
func scan(raw string) (map[field]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Reason: "empty input"}
	}
	values := make(map[field]string)
	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		label, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		f, known := labels[normalizeLabel(label)]
		if !known {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, seen := values[f]; !seen {
			values[f] = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	return values, nil
}

// normalizeLabel lowercases, drops list markers and a trailing "(...)" hint,
// and collapses whitespace.
func normalizeLabel(label string) string {
	label = strings.ToLower(label)
	if i := strings.Index(label, "("); i >= 0 {
		label = label[:i]
	}
	label = strings.TrimLeft(label, " \t-*•>")
	return strings.Join(strings.Fields(label), " ")
}

func requireFields(values map[string]string, order ...string) error {
	var missing []string
	for _, name := range order {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ParseError{Reason: "missing " + strings.Join(missing, ", ")}
	}
	return nil
}

func parseDuration(v string) int {
	end := strings.IndexFunc(v, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(v)
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func looksLikeEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
