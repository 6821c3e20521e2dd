// ABOUTME: Attendee to client matching for calendar import
// ABOUTME: Matches by normalized email, falling back to the email domain for company addresses
package sync

import (
	"strings"

	"github.com/harperreed/agency/models"
)

// ClientMatcher finds the client an attendee belongs to.
type ClientMatcher struct {
	byEmail  map[string]models.Client
	byDomain map[string]models.Client
}

func NewClientMatcher(clients []models.Client) *ClientMatcher {
	m := &ClientMatcher{
		byEmail:  make(map[string]models.Client),
		byDomain: make(map[string]models.Client),
	}
	for _, c := range clients {
		email := normalizeEmail(c.Email)
		if email == "" {
			continue
		}
		m.byEmail[email] = c
		if d := extractDomain(email); d != "" && !isCommonEmailDomain(d) {
			if _, taken := m.byDomain[d]; !taken {
				m.byDomain[d] = c
			}
		}
	}
	return m
}

// FindMatch looks up a client by exact email, then by company domain.
func (m *ClientMatcher) FindMatch(email string) (models.Client, bool) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return models.Client{}, false
	}
	if c, ok := m.byEmail[normalized]; ok {
		return c, true
	}
	c, ok := m.byDomain[extractDomain(normalized)]
	return c, ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func extractDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// isCommonEmailDomain reports free-mail domains that say nothing about the company.
func isCommonEmailDomain(domain string) bool {
	switch domain {
	case "gmail.com", "googlemail.com", "yahoo.com", "hotmail.com", "outlook.com",
		"live.com", "icloud.com", "me.com", "aol.com", "proton.me", "protonmail.com":
		return true
	}
	return false
}
