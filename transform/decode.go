// ABOUTME: Tolerant decoding helpers for stored JSON text, timestamps and nullable text
// ABOUTME: Malformed or absent input yields an empty value, never an error
package transform

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/harperreed/agency/models"
	"github.com/oklog/ulid/v2"
)

// NewID returns a time-sortable id such as client_01HV...
func NewID(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String())
}

// NewLeadID returns an id for a generated lead.
func NewLeadID() string {
	return "lead-" + strings.ToLower(ulid.Make().String())
}

func decodeJSON[T any](text string, empty T) T {
	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		return empty
	}
	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return empty
	}
	return out
}

// ParseStringSlice decodes a JSON string array. It never returns nil.
func ParseStringSlice(text string) []string {
	out := decodeJSON(text, []string{})
	if out == nil {
		return []string{}
	}
	return out
}

// ParseObject decodes a JSON object. It never returns nil.
func ParseObject(text string) map[string]any {
	out := decodeJSON(text, map[string]any{})
	if out == nil {
		return map[string]any{}
	}
	return out
}

// ParseSteps decodes an email sequence step list. It never returns nil.
func ParseSteps(text string) []models.EmailStep {
	out := decodeJSON(text, []models.EmailStep{})
	if out == nil {
		return []models.EmailStep{}
	}
	return out
}

// ParseLeads decodes a saved lead array. It never returns nil.
func ParseLeads(text string) []models.Lead {
	out := decodeJSON(text, []models.Lead{})
	if out == nil {
		return []models.Lead{}
	}
	return out
}

func encodeJSON(v any, empty string) string {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return empty
	}
	return string(data)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	models.TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	models.DateLayout,
}

// ParseTime accepts the timestamp and date formats the backend has been seen
// to store. Unparseable input gives the zero time.
func ParseTime(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseTimePtr(text *string) *time.Time {
	if text == nil {
		return nil
	}
	t := ParseTime(*text)
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := models.FormatTime(*t)
	return &s
}

// Nullable maps an empty string to nil.
func Nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func stamps(created time.Time, now time.Time) (string, string) {
	if created.IsZero() {
		created = now
	}
	return models.FormatTime(created), models.FormatTime(now)
}

func orDefault[T ~string](v T, def T) T {
	if v == "" {
		return def
	}
	return v
}

func today(now time.Time) string {
	return now.UTC().Format(models.DateLayout)
}
