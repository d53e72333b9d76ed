package espn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/courtsidehq/sportsdata/internal/domain/athlete"
)

// Season/statistics extraction. The provider ships statistics as parallel
// arrays: a labels array of human-readable column headers and a splits array
// whose entries carry the values, each scoped to a period and a statistical
// category ("2025 Passing", "Regular Season"). Labels like "YDS" or "TD" are
// ambiguous on their own, so every split is classified into a category first
// and the label-to-key mapping consults that category.

type statCategory string

const (
	catPassing   statCategory = "passing"
	catRushing   statCategory = "rushing"
	catReceiving statCategory = "receiving"
	catDefense   statCategory = "defense"
	catOther     statCategory = "other"
)

// categoryKeywords is ordered: the first category with a matching pattern
// over the split's lowercased display text (or, failing that, the joined
// label text) wins. Short column tokens (cmp, rec, car, int) are word-bounded
// so "Career" or "Fumble Recoveries" do not land in the wrong category.
var categoryKeywords = []struct {
	category statCategory
	patterns []*regexp.Regexp
}{
	{catPassing, compileKeywords(`pass`, `\bcmp\b`, `qbr`, `sack yds`)},
	{catDefense, compileKeywords(`tackle`, `\bsacks?\b`, `interception`, `\bints?\b`, `fumble`, `defen`)},
	{catReceiving, compileKeywords(`receiv`, `\brecs?\b`, `target`)},
	{catRushing, compileKeywords(`rush`, `\bcarr(?:ies|y)\b`, `\bcar\b`)},
}

func compileKeywords(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

func classifySplit(display, joinedLabels string) statCategory {
	for _, candidate := range []string{strings.ToLower(display), strings.ToLower(joinedLabels)} {
		if candidate == "" {
			continue
		}
		for _, rule := range categoryKeywords {
			for _, p := range rule.patterns {
				if p.MatchString(candidate) {
					return rule.category
				}
			}
		}
	}
	return catOther
}

// labelKeyRules maps raw column labels onto canonical statistic keys. Rules
// with a perCategory table resolve ambiguous labels by the owning split's
// category. Order matters; the first matching rule wins.
var labelKeyRules = []struct {
	pattern     *regexp.Regexp
	key         string
	perCategory map[statCategory]string
}{
	{pattern: regexp.MustCompile(`(?i)pass.*yd`), key: "passYds"},
	{pattern: regexp.MustCompile(`(?i)pass.*td`), key: "passTds"},
	{pattern: regexp.MustCompile(`(?i)rush.*yd`), key: "rushYds"},
	{pattern: regexp.MustCompile(`(?i)rush.*td`), key: "rushTds"},
	{pattern: regexp.MustCompile(`(?i)rec.*yd`), key: "recYds"},
	{pattern: regexp.MustCompile(`(?i)rec.*td`), key: "recTds"},
	{pattern: regexp.MustCompile(`(?i)^yds?$`), key: "yds", perCategory: map[statCategory]string{
		catPassing:   "passYds",
		catRushing:   "rushYds",
		catReceiving: "recYds",
	}},
	{pattern: regexp.MustCompile(`(?i)^tds?$`), key: "tds", perCategory: map[statCategory]string{
		catPassing:   "passTds",
		catRushing:   "rushTds",
		catReceiving: "recTds",
	}},
	{pattern: regexp.MustCompile(`(?i)^att$`), key: "att", perCategory: map[statCategory]string{
		catPassing: "passAtt",
		catRushing: "rushAtt",
	}},
	{pattern: regexp.MustCompile(`(?i)^ints?$`), key: "ints", perCategory: map[statCategory]string{
		catPassing: "passInts",
		catDefense: "defInts",
	}},
	{pattern: regexp.MustCompile(`(?i)^cmp$`), key: "completions"},
	{pattern: regexp.MustCompile(`(?i)^car$`), key: "carries"},
	{pattern: regexp.MustCompile(`(?i)^rec$`), key: "receptions"},
	{pattern: regexp.MustCompile(`(?i)^avg$`), key: "avg"},
	{pattern: regexp.MustCompile(`(?i)^lng$`), key: "long"},
	{pattern: regexp.MustCompile(`(?i)^gp$`), key: "gamesPlayed"},
}

var slugScrubRegex = regexp.MustCompile(`[^a-z0-9_]`)
var slugSpaceRegex = regexp.MustCompile(`\s+`)

func slugifyLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = slugSpaceRegex.ReplaceAllString(s, "_")
	return slugScrubRegex.ReplaceAllString(s, "")
}

func canonicalStatKey(label string, cat statCategory) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	for _, rule := range labelKeyRules {
		if !rule.pattern.MatchString(trimmed) {
			continue
		}
		if mapped, ok := rule.perCategory[cat]; ok {
			return mapped
		}
		return rule.key
	}
	return slugifyLabel(trimmed)
}

// statsRoot is one located labels+splits pair, optionally carrying season
// metadata from an enclosing seasons[] entry.
type statsRoot struct {
	labels      []any
	splits      []any
	seasonLabel string
	current     *bool
}

// locateStatsRoots finds every payload location holding BOTH a labels array
// and a splits array: the root, a statistics/stats wrapper, the same under
// player/athlete/raw wrappers, or individual seasons[].raw entries. Locations
// missing either half contribute nothing; statistics are never synthesized
// from unrelated payload fragments.
func locateStatsRoots(raw map[string]any) []statsRoot {
	if raw == nil {
		return nil
	}

	wrappers := []map[string]any{raw}
	for _, key := range []string{"player", "athlete", "raw"} {
		if nested := getMap(raw, key); nested != nil {
			wrappers = append(wrappers, nested)
		}
	}

	for _, w := range wrappers {
		candidates := []map[string]any{getMap(w, "statistics"), getMap(w, "stats"), w}
		for _, m := range candidates {
			if root, ok := statsRootFrom(m); ok {
				return []statsRoot{root}
			}
		}
	}

	var roots []statsRoot
	for _, w := range wrappers {
		for _, item := range getSlice(w, "seasons") {
			season := asMap(item)
			seasonRaw := getMap(season, "raw")
			if seasonRaw == nil {
				seasonRaw = season
			}
			for _, m := range []map[string]any{getMap(seasonRaw, "statistics"), getMap(seasonRaw, "stats"), seasonRaw} {
				root, ok := statsRootFrom(m)
				if !ok {
					continue
				}
				root.seasonLabel = getString(season, "label", "year", "season", "displayName")
				root.current = getBoolPtr(season, "isCurrent", "current")
				roots = append(roots, root)
				break
			}
		}
		if len(roots) > 0 {
			return roots
		}
	}
	return nil
}

func statsRootFrom(m map[string]any) (statsRoot, bool) {
	if m == nil {
		return statsRoot{}, false
	}
	labels := getSlice(m, "labels", "displayNames", "names")
	splits := getSlice(m, "splits")
	if len(labels) == 0 || len(splits) == 0 {
		return statsRoot{}, false
	}
	return statsRoot{labels: labels, splits: splits}, true
}

var yearTokenRegex = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// seasonLabelFor reduces a split display name to its season label: the first
// four-digit year token if present, else the display name itself.
func seasonLabelFor(display string) string {
	if year := yearTokenRegex.FindString(display); year != "" {
		return year
	}
	return strings.TrimSpace(display)
}

func isRegularSeason(display string) bool {
	lower := strings.ToLower(display)
	return strings.Contains(lower, "regular") || strings.Contains(lower, "season")
}

// coerceStatValue strips thousands-separator commas and converts to a number
// when possible, otherwise keeps the original string.
func coerceStatValue(v any) any {
	switch typed := v.(type) {
	case float64, int, int64, bool:
		return typed
	case string:
		s := strings.TrimSpace(typed)
		if s == "" {
			return nil
		}
		if parsed, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
			return parsed
		}
		return s
	default:
		return nil
	}
}

type builtSplit struct {
	seasonLabel string
	stats       map[string]any
	regular     bool
	current     *bool
}

// ExtractSeasons pulls season records out of a raw player payload. It returns
// nil when no labels+splits pair exists anywhere in the payload. A parse
// failure in one split skips that split only.
func ExtractSeasons(raw map[string]any) []athlete.Season {
	roots := locateStatsRoots(raw)
	if len(roots) == 0 {
		return nil
	}

	var built []builtSplit
	for _, root := range roots {
		built = append(built, buildSplits(root)...)
	}
	if len(built) == 0 {
		return nil
	}

	// Within one season label, regular-season splits shadow the rest; when
	// none qualify all splits count. Stats merge first-source-wins.
	regularByLabel := map[string]bool{}
	for _, b := range built {
		if b.regular {
			regularByLabel[b.seasonLabel] = true
		}
	}

	var seasons []athlete.Season
	for _, b := range built {
		if regularByLabel[b.seasonLabel] && !b.regular {
			continue
		}
		seasons = athlete.MergeSeasons(seasons, []athlete.Season{{
			Label:   b.seasonLabel,
			Stats:   b.stats,
			Current: b.current,
		}})
	}
	return seasons
}

func buildSplits(root statsRoot) []builtSplit {
	var out []builtSplit
	for _, item := range root.splits {
		split := asMap(item)
		if split == nil {
			continue
		}

		display := getString(split, "displayName", "name", "label")
		cat := classifySplit(display, joinLabels(root.labels))
		stats := buildSplitStats(root.labels, split, cat)
		if len(stats) == 0 {
			continue
		}

		label := root.seasonLabel
		if label == "" {
			label = seasonLabelFor(display)
		}
		current := root.current
		if current == nil {
			current = getBoolPtr(split, "isCurrent", "current")
		}

		out = append(out, builtSplit{
			seasonLabel: label,
			stats:       stats,
			regular:     isRegularSeason(display),
			current:     current,
		})
	}
	return out
}

// buildSplitStats zips labels against the split's values. Positional arrays
// align index-for-index with the labels; keyed objects map through the same
// canonicalization.
func buildSplitStats(labels []any, split map[string]any, cat statCategory) map[string]any {
	stats := map[string]any{}

	switch values := getAny(split, "stats", "values").(type) {
	case []any:
		n := len(labels)
		if len(values) < n {
			n = len(values)
		}
		for i := 0; i < n; i++ {
			key := canonicalStatKey(asString(labels[i]), cat)
			value := coerceStatValue(values[i])
			if key == "" || value == nil {
				continue
			}
			if _, exists := stats[key]; !exists {
				stats[key] = value
			}
		}
	case map[string]any:
		for rawKey, rawValue := range values {
			key := canonicalStatKey(rawKey, cat)
			value := coerceStatValue(rawValue)
			if key == "" || value == nil {
				continue
			}
			if _, exists := stats[key]; !exists {
				stats[key] = value
			}
		}
	}

	if len(stats) == 0 {
		return nil
	}
	return stats
}

func joinLabels(labels []any) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		if s := asString(label); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// extractDirectCurrentStats returns a directly-supplied current-season stats
// map from the payload, or nil. The map must look like statistics: simple
// identifier keys and at least one recognized statistic key with a numeric
// value, so metadata objects are not mistaken for stats.
func extractDirectCurrentStats(raw map[string]any) map[string]any {
	candidates := []map[string]any{
		getMap(raw, "currentSeasonStats"),
		getMap(getMap(raw, "player"), "currentSeasonStats"),
		getMap(getMap(raw, "athlete"), "currentSeasonStats"),
	}
	for _, candidate := range candidates {
		if coerced := coerceStatMap(candidate); coerced != nil {
			return coerced
		}
	}
	return nil
}

var statKeyRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,31}$`)

// knownStatKeys is the fixed allow-list a directly-supplied currentSeasonStats
// object must intersect to be trusted. Payloads carry metadata objects
// (season ids, timestamps, rank deltas) under stat-shaped keys, so generic
// identifier keys with numbers are not enough. Lowercased for lookup.
var knownStatKeys = map[string]struct{}{
	"passyds": {}, "passtds": {}, "passatt": {}, "passints": {}, "completions": {},
	"rushyds": {}, "rushtds": {}, "rushatt": {}, "carries": {},
	"recyds": {}, "rectds": {}, "receptions": {}, "targets": {},
	"tackles": {}, "sacks": {}, "ints": {}, "defints": {}, "interceptions": {}, "fumbles": {},
	"yds": {}, "tds": {}, "att": {}, "avg": {}, "long": {}, "gp": {}, "gamesplayed": {},
	"pts": {}, "points": {}, "ast": {}, "assists": {}, "reb": {}, "rebounds": {},
	"stl": {}, "steals": {}, "blk": {}, "blocks": {}, "min": {}, "turnovers": {},
	"goals": {}, "saves": {},
}

func coerceStatMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := map[string]any{}
	recognized := false
	for rawKey, rawValue := range m {
		if !statKeyRegex.MatchString(rawKey) {
			return nil
		}
		value := coerceStatValue(rawValue)
		if value == nil {
			continue
		}
		if _, ok := value.(float64); ok {
			if _, known := knownStatKeys[strings.ToLower(rawKey)]; known {
				recognized = true
			}
		}
		out[rawKey] = value
	}
	if !recognized || len(out) == 0 {
		return nil
	}
	return out
}
