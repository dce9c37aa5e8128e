// Package analytics aggregates bookings and presence events for the coordinator.
package analytics

import (
	"strings"

	"github.com/campus-rcs/site-coordination/internal/models"
)

// UnknownWeek is the bucket for bookings without a usable timeslot.
const UnknownWeek = "unknown"

// BookingSummary groups bookings by the week segment of their timeslot.
type BookingSummary struct {
	Total        int                       `json:"total"`
	WeekCounts   map[string]int            `json:"week_counts"`
	WeekProjects map[string]map[string]int `json:"week_projects"`
	// Conflicts lists weeks requested by more than one booking.
	Conflicts map[string]int `json:"conflicts"`
}

// UserActivitySummary counts researcher presence events per email.
type UserActivitySummary struct {
	Total   int            `json:"total"`
	PerUser map[string]int `json:"per_user"`
}

// ServiceActivitySummary counts service provider presence events per service.
type ServiceActivitySummary struct {
	Total      int            `json:"total"`
	PerService map[string]int `json:"per_service"`
}

// ExtractWeek returns the first non-empty ";"-separated segment of a timeslot.
func ExtractWeek(timeslotRaw string) string {
	for _, part := range strings.Split(timeslotRaw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			return part
		}
	}
	return UnknownWeek
}

// SummarizeBookings builds the week distribution of bookings.
func SummarizeBookings(bookings []models.Booking) BookingSummary {
	s := BookingSummary{
		Total:        len(bookings),
		WeekCounts:   make(map[string]int),
		WeekProjects: make(map[string]map[string]int),
		Conflicts:    make(map[string]int),
	}
	for _, b := range bookings {
		week := ExtractWeek(b.TimeslotRaw)
		s.WeekCounts[week]++
		if s.WeekProjects[week] == nil {
			s.WeekProjects[week] = make(map[string]int)
		}
		s.WeekProjects[week][b.Project]++
	}
	for week, n := range s.WeekCounts {
		if n > 1 {
			s.Conflicts[week] = n
		}
	}
	return s
}

// SummarizeUserActivity counts researcher events per email.
func SummarizeUserActivity(rows []models.ResearchActivity) UserActivitySummary {
	s := UserActivitySummary{Total: len(rows), PerUser: make(map[string]int)}
	for _, a := range rows {
		s.PerUser[a.Email]++
	}
	return s
}

// SummarizeServiceActivity counts service provider events per service.
func SummarizeServiceActivity(rows []models.ServiceActivity) ServiceActivitySummary {
	s := ServiceActivitySummary{Total: len(rows), PerService: make(map[string]int)}
	for _, a := range rows {
		s.PerService[a.Service]++
	}
	return s
}
