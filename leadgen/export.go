// ABOUTME: CSV and JSON export of generated leads
// ABOUTME: CSV keeps the column order users already import into spreadsheets
package leadgen

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/harperreed/agency/models"
)

var csvHeader = []string{
	"Company Name", "Contact Name", "Email", "Title",
	"Personalized Intro", "Industry", "Company Size", "Website",
}

func WriteCSV(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range leads {
		row := []string{
			l.CompanyName, l.ContactName, l.ContactEmail, l.ContactTitle,
			l.PersonalizedIntro, l.Industry, l.CompanySize, l.Website,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write lead %s: %w", l.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, leads []models.Lead) error {
	if leads == nil {
		leads = []models.Lead{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(leads)
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ExportFilename is <niche>-leads-YYYY-MM-DD.csv with path-unsafe runs in
// the niche replaced by a dash.
func ExportFilename(niche string, t time.Time) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(niche), "-"), "-")
	if name == "" {
		name = "leads"
	}
	return fmt.Sprintf("%s-leads-%s.csv", name, t.Format("2006-01-02"))
}
