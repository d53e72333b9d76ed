package espn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/courtsidehq/sportsdata/internal/domain/athlete"
	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/domain/team"
)

// Shape normalizers: pure projections from raw payloads onto the canonical
// records. Candidate field paths are probed in priority order; absent data
// yields zero values.

func normalizeTeam(raw map[string]any, lg league.League) team.Record {
	detail := getMap(raw, "detail")
	if detail == nil {
		detail = raw
	}
	t := getMap(detail, "team")
	if t == nil {
		t = detail
	}

	displayName := getString(t, "displayName", "name", "shortDisplayName")
	slug := getString(t, "slug")
	if slug == "" && displayName != "" {
		slug = strings.ReplaceAll(displayName, " ", "_")
	}

	return team.Record{
		ID:           getString(t, "id", "teamId", "uid"),
		Slug:         slug,
		DisplayName:  displayName,
		Abbreviation: getString(t, "abbreviation", "abbrev"),
		Logos:        extractLogos(t, detail),
		League:       lg,
		Raw:          raw,
	}
}

func extractLogos(candidates ...map[string]any) []string {
	for _, m := range candidates {
		items := getSlice(m, "logos")
		if len(items) == 0 {
			continue
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			switch typed := item.(type) {
			case string:
				if typed != "" {
					out = append(out, typed)
				}
			case map[string]any:
				if href := getString(typed, "href", "url"); href != "" {
					out = append(out, href)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func normalizeRosterEntry(raw map[string]any, lg league.League) athlete.PlayerRecord {
	a := getMap(raw, "athlete", "person")
	if a == nil {
		a = raw
	}

	return athlete.PlayerRecord{
		ID:          getString(a, "id", "personId"),
		League:      lg,
		Name:        getString(a, "displayName", "fullName", "name"),
		HeadshotURL: extractHeadshot(a),
		Position:    extractPosition(a),
		Height:      FormatHeight(probePhysical(a, "height", "displayHeight")),
		Weight:      FormatWeight(probePhysical(a, "weight", "displayWeight")),
		Raw:         raw,
	}
}

func normalizePlayer(raw map[string]any, lg league.League) athlete.PlayerRecord {
	p := getMap(raw, "player", "athlete")
	if p == nil {
		p = raw
	}

	rec := athlete.PlayerRecord{
		ID:          getString(p, "id", "personId"),
		League:      lg,
		Name:        getString(p, "displayName", "fullName", "name"),
		HeadshotURL: extractHeadshot(p),
		Position:    extractPosition(p),
		Height:      FormatHeight(probePhysical(p, "height", "displayHeight")),
		Weight:      FormatWeight(probePhysical(p, "weight", "displayWeight")),
		Raw:         raw,
	}

	if tm := getMap(p, "team"); tm != nil {
		teamRec := normalizeTeam(tm, lg)
		if !teamRec.Empty() {
			rec.Team = &teamRec
		}
	}

	return rec
}

// normalizeOverview projects the athlete-overview payload, which wraps the
// athlete under yet another set of keys and tends to use display* physicals.
func normalizeOverview(raw map[string]any, lg league.League) athlete.PlayerRecord {
	a := getMap(raw, "athlete", "player")
	if a == nil {
		a = raw
	}

	rec := athlete.PlayerRecord{
		ID:          getString(a, "id", "athleteId", "personId"),
		League:      lg,
		Name:        getString(a, "displayName", "fullName", "name"),
		HeadshotURL: extractHeadshot(a),
		Position:    extractPosition(a),
		Height:      FormatHeight(probePhysical(a, "displayHeight", "height")),
		Weight:      FormatWeight(probePhysical(a, "displayWeight", "weight")),
		Raw:         raw,
	}

	if tm := getMap(a, "team"); tm != nil {
		teamRec := normalizeTeam(tm, lg)
		if !teamRec.Empty() {
			rec.Team = &teamRec
		}
	}

	return rec
}

func extractHeadshot(m map[string]any) string {
	return firstNonEmpty(
		getString(getMap(m, "headshot"), "href", "url"),
		getString(getMap(m, "photo"), "href", "url"),
		asString(getAny(m, "headshot")),
		getString(m, "head"),
	)
}

func extractPosition(m map[string]any) string {
	if pos := getMap(m, "position"); pos != nil {
		return getString(pos, "abbreviation", "displayName", "name")
	}
	return getString(m, "position")
}

// probePhysical tries the flat keys first, then the bio and measurements
// wrappers, in that order.
func probePhysical(m map[string]any, keys ...string) any {
	if v := getAny(m, keys...); v != nil {
		return v
	}
	for _, wrapper := range []string{"bio", "measurements"} {
		if nested := getMap(m, wrapper); nested != nil {
			if v := getAny(nested, keys...); v != nil {
				return v
			}
		}
	}
	return nil
}

var heightCleanRegex = regexp.MustCompile(`[^0-9\s-]`)
var heightSplitRegex = regexp.MustCompile(`[\s-]+`)

// FormatHeight renders a height as F'I". A raw number is a total inch count.
// Strings already carrying a unit marker (', ", ft, cm) pass through
// unchanged.
func FormatHeight(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case float64:
		return inchesToDisplay(int(typed))
	case int:
		return inchesToDisplay(typed)
	case string:
		s := strings.TrimSpace(typed)
		if s == "" {
			return ""
		}
		lower := strings.ToLower(s)
		if strings.ContainsAny(s, `'"`) || strings.Contains(lower, "ft") || strings.Contains(lower, "cm") {
			return s
		}

		cleaned := strings.TrimSpace(heightCleanRegex.ReplaceAllString(s, " "))
		parts := heightSplitRegex.Split(cleaned, -1)
		if len(parts) >= 2 {
			feet, errF := strconv.Atoi(parts[0])
			inches, errI := strconv.Atoi(parts[1])
			if errF == nil && errI == nil {
				return strconv.Itoa(feet) + "'" + strconv.Itoa(inches) + `"`
			}
		}
		if n, err := strconv.Atoi(cleaned); err == nil {
			return inchesToDisplay(n)
		}
		return s
	default:
		return ""
	}
}

func inchesToDisplay(total int) string {
	if total <= 0 {
		return ""
	}
	return strconv.Itoa(total/12) + "'" + strconv.Itoa(total%12) + `"`
}

// FormatWeight renders a weight as "N lbs". Strings already mentioning a
// unit (lb, kg) pass through unchanged.
func FormatWeight(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.Itoa(int(typed)) + " lbs"
	case int:
		return strconv.Itoa(typed) + " lbs"
	case string:
		s := strings.TrimSpace(typed)
		if s == "" {
			return ""
		}
		lower := strings.ToLower(s)
		if strings.Contains(lower, "lb") || strings.Contains(lower, "kg") {
			return s
		}
		if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
			return strconv.Itoa(int(n)) + " lbs"
		}
		return s
	default:
		return ""
	}
}

var namePositionTailRegex = regexp.MustCompile(`(?i),\s*(G|F|C|PG|SG|SF|PF)\b`)
var nameSuffixRegex = regexp.MustCompile(`(?i)\b(I{2,3}|Jr\.?|Sr\.?)\b`)
var nameScrubRegex = regexp.MustCompile(`[^a-zA-Z0-9\s']`)
var nameSpaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName canonicalizes a player name for matching across sources:
// drops position tails ("LeBron James, F"), generational suffixes and
// punctuation, collapses whitespace and lowercases.
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}
	s := namePositionTailRegex.ReplaceAllString(raw, "")
	s = nameSuffixRegex.ReplaceAllString(s, "")
	s = nameScrubRegex.ReplaceAllString(s, "")
	s = nameSpaceRegex.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

var numericIDRegex = regexp.MustCompile(`/(?:full/|id/)(\d{3,})`)
var digitsRegex = regexp.MustCompile(`^\d+$`)

func isNumericID(s string) bool {
	return digitsRegex.MatchString(s)
}

// numericIDFromRecord recovers the provider's numeric athlete id from a
// record whose identifier came from another namespace: headshot URLs embed
// it as .../full/{id}.png, canonical links as .../id/{id}/....
func numericIDFromRecord(rec athlete.PlayerRecord) string {
	if isNumericID(rec.ID) {
		return rec.ID
	}
	if m := numericIDRegex.FindStringSubmatch(rec.HeadshotURL); len(m) == 2 {
		return m[1]
	}
	for _, item := range getSlice(rec.Raw, "links") {
		href := getString(asMap(item), "href", "url")
		if m := numericIDRegex.FindStringSubmatch(href); len(m) == 2 {
			return m[1]
		}
	}
	if href := getString(getMap(rec.Raw, "link"), "web", "href"); href != "" {
		if m := numericIDRegex.FindStringSubmatch(href); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}
