package espn

import (
	"context"
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/courtsidehq/sportsdata/internal/domain/athlete"
	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/domain/team"
)

func (c *Client) requireLeague(lg league.League) error {
	if !lg.Known() {
		return crerr.Mark(crerr.Newf("league %q", string(lg)), ErrUnsupportedLeague)
	}
	return nil
}

// ListTeams returns every team in the league, preferring the bundled
// teams.json over a remote fetch. An upstream failure yields an empty list.
func (c *Client) ListTeams(ctx context.Context, lg league.League) ([]team.Record, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}

	if value, ok := c.local.read(c.local.leaguePath(lg, "teams.json")); ok {
		if teams := normalizeTeamList(value, lg); len(teams) > 0 {
			return teams, nil
		}
	}

	payload, err := c.fetchJSON(ctx, c.siteURL(lg, "/teams"), c.cacheTTL)
	if err != nil {
		if IsFetchError(err) {
			c.logger.WarnContext(ctx, "team list unavailable", "league", lg.String(), "error", err)
			return nil, nil
		}
		return nil, err
	}
	return normalizeTeamList(payload, lg), nil
}

// normalizeTeamList accepts the three shapes team lists arrive in: a bare
// array, {teams: [...]}, or the site API's sports[0].leagues[0].teams nesting.
// Entries may themselves be {team: {...}} wrappers.
func normalizeTeamList(value any, lg league.League) []team.Record {
	var entries []any
	switch typed := value.(type) {
	case []any:
		entries = typed
	case map[string]any:
		entries = getSlice(typed, "teams", "items")
		if entries == nil {
			if sports := getSlice(typed, "sports"); len(sports) > 0 {
				if leagues := getSlice(asMap(sports[0]), "leagues"); len(leagues) > 0 {
					entries = getSlice(asMap(leagues[0]), "teams")
				}
			}
		}
	}

	out := make([]team.Record, 0, len(entries))
	for _, entry := range entries {
		m := asMap(entry)
		if m == nil {
			continue
		}
		rec := normalizeTeam(m, lg)
		if !rec.Empty() {
			out = append(out, rec)
		}
	}
	return out
}

// GetTeam resolves a team by id, slug or abbreviation through four
// strategies: the bundled per-team file, an exact match against the team
// list, a fuzzy substring match, then remote fetches of identifier variants.
// A team that fails every strategy is nil, not an error.
func (c *Client) GetTeam(ctx context.Context, lg league.League, ref string) (*team.Record, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, crerr.Newf("empty team reference")
	}

	if rec := c.teamFromLocalFile(lg, ref); rec != nil {
		return rec, nil
	}

	teams, err := c.ListTeams(ctx, lg)
	if err != nil {
		return nil, err
	}
	if rec := matchTeamExact(teams, ref); rec != nil {
		return rec, nil
	}
	if rec := matchTeamFuzzy(teams, ref); rec != nil {
		return rec, nil
	}

	return c.teamFromRemote(ctx, lg, ref), nil
}

// teamFromLocalFile tries the bundled per-team file named after the
// reference. A file hit still has to pass an identity check against the
// query; a file that merely shares the name of a different team is rejected.
func (c *Client) teamFromLocalFile(lg league.League, ref string) *team.Record {
	seen := map[string]bool{}
	for _, name := range []string{ref, strings.ToLower(ref), strings.ReplaceAll(strings.ToLower(ref), " ", "_")} {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		payload, ok := c.local.readObject(c.local.leaguePath(lg, name+".json"))
		if !ok {
			continue
		}
		rec := normalizeTeam(payload, lg)
		if !rec.Empty() && rec.Matches(ref) {
			return &rec
		}
	}
	return nil
}

func matchTeamExact(teams []team.Record, ref string) *team.Record {
	lower := strings.ToLower(ref)
	for i := range teams {
		t := &teams[i]
		if t.ID == ref ||
			strings.ToLower(t.Slug) == lower ||
			strings.ToLower(t.Abbreviation) == lower {
			rec := *t
			return &rec
		}
	}
	return nil
}

func matchTeamFuzzy(teams []team.Record, ref string) *team.Record {
	needle := canonicalTeamToken(ref)
	if needle == "" {
		return nil
	}
	for i := range teams {
		t := &teams[i]
		if strings.Contains(canonicalTeamToken(t.Slug), needle) ||
			strings.Contains(canonicalTeamToken(t.DisplayName), needle) {
			rec := *t
			return &rec
		}
	}
	return nil
}

func canonicalTeamToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ReplaceAll(s, " ", "-")
}

func (c *Client) teamFromRemote(ctx context.Context, lg league.League, ref string) *team.Record {
	for _, variant := range identifierVariants(ref) {
		payload, err := c.fetchJSON(ctx, c.siteURL(lg, "/teams/"+variant), c.cacheTTL)
		if err != nil {
			continue
		}
		rec := normalizeTeam(payload, lg)
		if !rec.Empty() {
			return &rec
		}
	}
	c.logger.DebugContext(ctx, "team unresolved", "league", lg.String(), "ref", ref)
	return nil
}

func identifierVariants(ref string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	add(ref)
	add(canonicalTeamToken(ref))
	add(strings.ToLower(ref))
	add(strings.ToUpper(ref))
	return out
}

// GetTeamRoster fetches and flattens a team's roster. The roster payload
// nests in at least four shapes; all flatten to one entry sequence before
// normalization. Failure to fetch under the raw reference retries once with
// a freshly resolved team id.
func (c *Client) GetTeamRoster(ctx context.Context, lg league.League, teamRef string) ([]athlete.PlayerRecord, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	teamRef = strings.TrimSpace(teamRef)
	if teamRef == "" {
		return nil, crerr.Newf("empty team reference")
	}

	payload, err := c.fetchJSON(ctx, c.siteURL(lg, "/teams/"+teamRef+"/roster"), c.cacheTTL)
	if err != nil && IsFetchError(err) {
		resolved, resolveErr := c.GetTeam(ctx, lg, teamRef)
		if resolveErr == nil && resolved != nil && resolved.ID != "" && resolved.ID != teamRef {
			payload, err = c.fetchJSON(ctx, c.siteURL(lg, "/teams/"+resolved.ID+"/roster"), c.cacheTTL)
		}
	}
	if err != nil {
		if IsFetchError(err) {
			c.logger.WarnContext(ctx, "roster unavailable", "league", lg.String(), "team", teamRef, "error", err)
			return nil, nil
		}
		return nil, err
	}

	entries := flattenRosterEntries(payload)
	out := make([]athlete.PlayerRecord, 0, len(entries))
	for _, entry := range entries {
		rec := normalizeRosterEntry(entry, lg)
		if rec.ID != "" || rec.Name != "" {
			out = append(out, rec)
		}
	}
	return out, nil
}

// flattenRosterEntries handles the observed roster shapes: a flat entry
// array, an array of groups each holding an items/athletes sub-array, an
// object keyed by position group, and everything wrapped under detail.roster.
func flattenRosterEntries(payload map[string]any) []map[string]any {
	if detail := getMap(payload, "detail"); detail != nil {
		payload = detail
	}

	value := getAny(payload, "athletes", "roster", "entries", "items")
	if value == nil {
		return nil
	}
	return flattenRosterValue(value)
}

func flattenRosterValue(value any) []map[string]any {
	var out []map[string]any
	switch typed := value.(type) {
	case []any:
		for _, item := range typed {
			m := asMap(item)
			if m == nil {
				continue
			}
			if group := getSlice(m, "items", "athletes", "entries"); group != nil {
				for _, member := range group {
					if mm := asMap(member); mm != nil {
						out = append(out, mm)
					}
				}
				continue
			}
			out = append(out, m)
		}
	case map[string]any:
		if nested := getAny(typed, "entries", "athletes", "items"); nested != nil {
			return flattenRosterValue(nested)
		}
		// Position-group keyed object; keys sorted for a stable order.
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, member := range asSlice(typed[key]) {
				if mm := asMap(member); mm != nil {
					out = append(out, mm)
				}
			}
		}
	}
	return out
}
