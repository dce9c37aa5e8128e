package activity

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/campus-rcs/site-coordination/internal/models"
)

// WriteResearchCSV writes researcher activity as CSV with a header row.
func WriteResearchCSV(w io.Writer, rows []models.ResearchActivity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "email", "project", "presence", "created_at"}); err != nil {
		return err
	}
	for _, a := range rows {
		if err := cw.Write([]string{
			strconv.FormatInt(a.ID, 10), a.Email, a.Project, a.Presence, a.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteServiceCSV writes service provider activity as CSV with a header row.
func WriteServiceCSV(w io.Writer, rows []models.ServiceActivity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "company", "service", "presence", "created_at"}); err != nil {
		return err
	}
	for _, a := range rows {
		if err := cw.Write([]string{
			strconv.FormatInt(a.ID, 10), a.Name, a.Company, a.Service, a.Presence, a.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
