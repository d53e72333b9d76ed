package team

import (
	"strings"

	"github.com/courtsidehq/sportsdata/internal/domain/league"
)

// Record is a normalized team. At least one of ID, Slug, DisplayName or
// Abbreviation is non-empty for any record returned to callers.
type Record struct {
	ID           string
	Slug         string
	DisplayName  string
	Abbreviation string
	Logos        []string
	League       league.League
	Raw          map[string]any
}

func (r Record) Empty() bool {
	return r.ID == "" && r.Slug == "" && r.DisplayName == "" && r.Abbreviation == ""
}

// Matches reports whether query identifies this record by id, slug,
// abbreviation or display name. Underscores and hyphens are interchangeable
// so slugs from filenames and slugs from URLs compare equal.
func (r Record) Matches(query string) bool {
	q := canonicalToken(query)
	if q == "" {
		return false
	}
	for _, candidate := range []string{r.ID, r.Slug, r.Abbreviation, r.DisplayName} {
		if candidate == "" {
			continue
		}
		if canonicalToken(candidate) == q {
			return true
		}
	}
	return false
}

func canonicalToken(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
