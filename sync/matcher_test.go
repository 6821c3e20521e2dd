package sync

import (
	"testing"

	"github.com/harperreed/agency/models"
)

func TestMatchClientByEmail(t *testing.T) {
	matcher := NewClientMatcher([]models.Client{
		{ID: "c1", Name: "Alice", Email: "Alice@Acme.io"},
		{ID: "c2", Name: "Bob", Email: "bob@gmail.com"},
	})

	match, found := matcher.FindMatch("alice@acme.io")
	if !found {
		t.Fatal("expected to find match for alice@acme.io")
	}
	if match.ID != "c1" {
		t.Errorf("expected c1, got %s", match.ID)
	}

	if _, found := matcher.FindMatch(" BOB@gmail.com "); !found {
		t.Error("expected case and space insensitive match for bob")
	}
}

func TestMatchClientByCompanyDomain(t *testing.T) {
	matcher := NewClientMatcher([]models.Client{
		{ID: "c1", Name: "Alice", Email: "alice@acme.io"},
		{ID: "c2", Name: "Bob", Email: "bob@gmail.com"},
	})

	match, found := matcher.FindMatch("carol@acme.io")
	if !found || match.ID != "c1" {
		t.Errorf("expected colleague at acme.io to match c1, got %v %v", match.ID, found)
	}

	if _, found := matcher.FindMatch("dave@gmail.com"); found {
		t.Error("free-mail domains must not match by domain")
	}
}

func TestMatchClientIgnoresEmpty(t *testing.T) {
	matcher := NewClientMatcher([]models.Client{{ID: "c1", Name: "No email"}})
	if _, found := matcher.FindMatch(""); found {
		t.Error("empty email should not match")
	}
	if got := extractDomain("not-an-email"); got != "" {
		t.Errorf("expected empty domain, got %q", got)
	}
}
