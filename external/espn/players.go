package espn

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/courtsidehq/sportsdata/internal/domain/athlete"
	"github.com/courtsidehq/sportsdata/internal/domain/league"
)

// recordFromPayload projects a raw player payload onto a finalized record:
// shape normalization, season extraction, then the current-season invariant.
func recordFromPayload(raw map[string]any, lg league.League) athlete.PlayerRecord {
	rec := normalizePlayer(raw, lg)
	rec.Seasons = ExtractSeasons(raw)
	if direct := extractDirectCurrentStats(raw); direct != nil {
		rec.CurrentSeasonStats = direct
	}
	athlete.Finalize(&rec)
	return rec
}

// localIndex is the parsed bundled player index for one league: an id-keyed
// map plus a flat list for name scans.
type localIndex struct {
	byID map[string]map[string]any
	list []map[string]any
}

func (idx localIndex) empty() bool {
	return len(idx.byID) == 0 && len(idx.list) == 0
}

func (c *Client) localIndexFor(ctx context.Context, lg league.League) localIndex {
	if !c.local.enabled() {
		return localIndex{}
	}

	load := func(context.Context) (any, error) {
		value, ok := c.local.read(c.local.leaguePath(lg, "player_index.json"))
		if !ok {
			return localIndex{}, nil
		}
		return parseLocalIndex(value), nil
	}

	if c.cache == nil {
		value, _ := load(ctx)
		idx, _ := value.(localIndex)
		return idx
	}

	value, err := c.cache.GetOrLoad(ctx, "local:player_index:"+lg.String(), c.localTTL, load)
	if err != nil {
		return localIndex{}
	}
	idx, _ := value.(localIndex)
	return idx
}

// parseLocalIndex tolerates the index shapes the bundle has shipped with: a
// {byId, list} object, a bare id-keyed object, or a bare array.
func parseLocalIndex(value any) localIndex {
	var idx localIndex
	switch typed := value.(type) {
	case []any:
		idx.list = mapSlice(typed)
	case map[string]any:
		if byID := getMap(typed, "byId", "byID", "players"); byID != nil {
			idx.byID = mapValues(byID)
			idx.list = mapSlice(getSlice(typed, "list"))
			break
		}
		if list := getSlice(typed, "list"); list != nil {
			idx.list = mapSlice(list)
			break
		}
		idx.byID = mapValues(typed)
	}
	return idx
}

func mapSlice(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m := asMap(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func mapValues(m map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(m))
	for key, value := range m {
		if nested := asMap(value); nested != nil {
			out[key] = nested
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// GetPlayerLocal resolves a player from the bundled index only, by exact id
// or normalized-name equality. No network traffic.
func (c *Client) GetPlayerLocal(ctx context.Context, lg league.League, idOrName string) (*athlete.PlayerRecord, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, crerr.Newf("empty player reference")
	}

	idx := c.localIndexFor(ctx, lg)
	if idx.empty() {
		return nil, nil
	}

	if raw, ok := idx.byID[idOrName]; ok {
		rec := recordFromPayload(raw, lg)
		return &rec, nil
	}

	wanted := NormalizeName(idOrName)
	match := func(raw map[string]any) *athlete.PlayerRecord {
		name := getString(raw, "name", "displayName", "fullName")
		if name != "" && NormalizeName(name) == wanted {
			rec := recordFromPayload(raw, lg)
			return &rec
		}
		return nil
	}
	for _, raw := range idx.list {
		if rec := match(raw); rec != nil {
			return rec, nil
		}
	}
	for _, raw := range idx.byID {
		if rec := match(raw); rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

// SearchPlayersLocal scans the bundled index for case-insensitive substring
// name matches. Zero local hits fall through to the remote search so a stale
// bundle never hides a real player.
func (c *Client) SearchPlayersLocal(ctx context.Context, query string, lg league.League, limit int) ([]athlete.PlayerRecord, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, crerr.Newf("empty search query")
	}
	if limit <= 0 {
		limit = 10
	}

	needle := NormalizeName(query)
	idx := c.localIndexFor(ctx, lg)

	var out []athlete.PlayerRecord
	seen := map[string]bool{}
	consider := func(raw map[string]any) bool {
		name := getString(raw, "name", "displayName", "fullName")
		if name == "" || !strings.Contains(NormalizeName(name), needle) {
			return len(out) < limit
		}
		rec := recordFromPayload(raw, lg)
		key := rec.ID
		if key == "" {
			key = NormalizeName(rec.Name)
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, rec)
		}
		return len(out) < limit
	}
	for _, raw := range idx.list {
		if !consider(raw) {
			break
		}
	}
	if len(out) < limit {
		for _, raw := range idx.byID {
			if !consider(raw) {
				break
			}
		}
	}

	if len(out) > 0 {
		return out, nil
	}
	return c.SearchPlayers(ctx, query, limit)
}

// SearchPlayers queries the site-wide search endpoint. Result groups nest
// their hits under a contents array; groups are flattened before
// normalization. Upstream failure yields an empty list.
func (c *Client) SearchPlayers(ctx context.Context, query string, limit int) ([]athlete.PlayerRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, crerr.Newf("empty search query")
	}
	if limit <= 0 {
		limit = 10
	}

	payload, err := c.fetchJSON(ctx, c.searchURL(query, limit), c.cacheTTL)
	if err != nil {
		if IsFetchError(err) {
			c.logger.WarnContext(ctx, "search unavailable", "query", query, "error", err)
			return nil, nil
		}
		return nil, err
	}

	var out []athlete.PlayerRecord
	for _, item := range flattenSearchResults(payload) {
		rec := normalizeSearchItem(item)
		if rec.ID != "" || rec.Name != "" {
			out = append(out, rec)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func flattenSearchResults(payload map[string]any) []map[string]any {
	var out []map[string]any
	for _, result := range getSlice(payload, "results", "items") {
		m := asMap(result)
		if m == nil {
			continue
		}
		if contents := getSlice(m, "contents"); len(contents) > 0 {
			out = append(out, mapSlice(contents)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

// normalizeSearchItem projects a search hit. Search results carry no league
// namespace and only a thin bio, so the record is a seed for enrichment, not
// a finished player.
func normalizeSearchItem(item map[string]any) athlete.PlayerRecord {
	rec := athlete.PlayerRecord{
		ID:   getString(item, "id", "uid"),
		Name: getString(item, "displayName", "title", "name"),
		HeadshotURL: firstNonEmpty(
			getString(getMap(item, "image"), "default", "href", "url"),
			getString(item, "image"),
		),
		Raw: item,
	}
	if !isNumericID(rec.ID) {
		if numeric := numericIDFromRecord(rec); numeric != "" {
			rec.ID = numeric
		}
	}
	return rec
}

// GetPlayer resolves a player through up to five enrichment steps: the local
// index, the search endpoint, the direct player endpoint, the athlete
// overview, and finally the team roster. Each step runs only while the
// record still lacks statistics, and each merge is non-destructive. A player
// no step can produce is nil, not an error.
func (c *Client) GetPlayer(ctx context.Context, lg league.League, idOrQuery string) (*athlete.PlayerRecord, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	idOrQuery = strings.TrimSpace(idOrQuery)
	if idOrQuery == "" {
		return nil, crerr.Newf("empty player reference")
	}

	merged := athlete.PlayerRecord{League: lg}

	local, err := c.GetPlayerLocal(ctx, lg, idOrQuery)
	if err != nil {
		return nil, err
	}
	if local != nil {
		merged = *local
		if merged.HasStats() {
			c.resolveEmbeddedTeam(ctx, lg, &merged)
			return &merged, nil
		}
	}

	if !merged.HasStats() {
		if seed := c.searchSeed(ctx, idOrQuery); seed != nil {
			seed.League = lg
			merged = athlete.Merge(merged, *seed)
		}
	}

	if !merged.HasStats() {
		if full := c.directPlayerRecord(ctx, lg, playerFetchID(merged, idOrQuery)); full != nil {
			merged = athlete.Merge(merged, *full)
		}
	}

	if !merged.HasStats() && lg.HasAthleteOverview() {
		if numeric := playerFetchID(merged, idOrQuery); numeric != "" {
			overview, err := c.GetAthleteOverview(ctx, lg, numeric)
			if err != nil {
				return nil, err
			}
			if overview != nil {
				merged = athlete.Merge(merged, *overview)
			}
		}
	}

	if !merged.HasStats() {
		c.resolveEmbeddedTeam(ctx, lg, &merged)
		if merged.Team != nil {
			c.fillFromRoster(ctx, lg, &merged)
		}
	}

	if merged.Empty() {
		return nil, nil
	}
	c.resolveEmbeddedTeam(ctx, lg, &merged)
	return &merged, nil
}

// playerFetchID picks the identifier to use against id-addressed endpoints:
// the query itself when numeric, else a numeric id recovered from the record
// so far.
func playerFetchID(rec athlete.PlayerRecord, idOrQuery string) string {
	if isNumericID(idOrQuery) {
		return idOrQuery
	}
	return numericIDFromRecord(rec)
}

// searchSeed picks the best search hit for the query: an id match (direct or
// URL-embedded) when the query is numeric, else the first hit.
func (c *Client) searchSeed(ctx context.Context, idOrQuery string) *athlete.PlayerRecord {
	results, err := c.SearchPlayers(ctx, idOrQuery, 10)
	if err != nil || len(results) == 0 {
		return nil
	}
	if isNumericID(idOrQuery) {
		for i := range results {
			if results[i].ID == idOrQuery || numericIDFromRecord(results[i]) == idOrQuery {
				return &results[i]
			}
		}
	}
	return &results[0]
}

// directPlayerRecord tries the league's id-addressed player endpoints. Both
// path spellings exist across leagues.
func (c *Client) directPlayerRecord(ctx context.Context, lg league.League, id string) *athlete.PlayerRecord {
	if id == "" {
		return nil
	}
	for _, suffix := range []string{"/athletes/" + id, "/players/" + id} {
		payload, err := c.fetchJSON(ctx, c.siteURL(lg, suffix), c.cacheTTL)
		if err != nil {
			continue
		}
		rec := recordFromPayload(payload, lg)
		if !rec.Empty() {
			return &rec
		}
	}
	return nil
}

// fillFromRoster locates the player on their team's roster and fills
// physicals, position and headshot only; rosters carry no season statistics.
func (c *Client) fillFromRoster(ctx context.Context, lg league.League, rec *athlete.PlayerRecord) {
	teamRef := rec.Team.ID
	if teamRef == "" {
		teamRef = rec.Team.Slug
	}
	if teamRef == "" {
		return
	}

	roster, err := c.GetTeamRoster(ctx, lg, teamRef)
	if err != nil || len(roster) == 0 {
		return
	}

	wanted := NormalizeName(rec.Name)
	for i := range roster {
		entry := &roster[i]
		if (rec.ID != "" && entry.ID == rec.ID) ||
			(wanted != "" && NormalizeName(entry.Name) == wanted) {
			if rec.Height == "" {
				rec.Height = entry.Height
			}
			if rec.Weight == "" {
				rec.Weight = entry.Weight
			}
			if rec.Position == "" {
				rec.Position = entry.Position
			}
			if rec.HeadshotURL == "" {
				rec.HeadshotURL = entry.HeadshotURL
			}
			if rec.ID == "" {
				rec.ID = entry.ID
			}
			return
		}
	}
}

// resolveEmbeddedTeam attaches a full team record when the payload carried a
// team reference (slug or name) without embedding the team object.
func (c *Client) resolveEmbeddedTeam(ctx context.Context, lg league.League, rec *athlete.PlayerRecord) {
	if rec.Team != nil {
		return
	}
	ref := getString(rec.Raw, "team", "teamSlug", "team_slug", "teamName")
	if ref == "" {
		return
	}
	resolved, err := c.GetTeam(ctx, lg, ref)
	if err == nil && resolved != nil {
		rec.Team = resolved
	}
}

// GetPlayerFull resolves through the direct full-player endpoint first and
// falls back to the step-wise GetPlayer enrichment when the direct endpoint
// comes back thin.
func (c *Client) GetPlayerFull(ctx context.Context, lg league.League, idOrQuery string) (*athlete.PlayerRecord, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	idOrQuery = strings.TrimSpace(idOrQuery)
	if idOrQuery == "" {
		return nil, crerr.Newf("empty player reference")
	}

	if isNumericID(idOrQuery) {
		if rec := c.directPlayerRecord(ctx, lg, idOrQuery); rec != nil && rec.HasStats() {
			return rec, nil
		}
	}
	return c.GetPlayer(ctx, lg, idOrQuery)
}

// GetAthleteOverview fetches the richer per-athlete overview endpoint.
// Leagues without the endpoint yield nil rather than a doomed fetch.
func (c *Client) GetAthleteOverview(ctx context.Context, lg league.League, athleteID string) (*athlete.PlayerRecord, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return nil, crerr.Newf("empty athlete id")
	}
	if !lg.HasAthleteOverview() {
		c.logger.DebugContext(ctx, "athlete overview not offered for league", "league", lg.String())
		return nil, nil
	}

	payload, err := c.fetchJSON(ctx, c.webURL(lg, "/athletes/"+athleteID+"/overview"), c.cacheTTL)
	if err != nil {
		if IsFetchError(err) {
			c.logger.WarnContext(ctx, "athlete overview unavailable", "league", lg.String(), "athlete", athleteID, "error", err)
			return nil, nil
		}
		return nil, err
	}

	rec := normalizeOverview(payload, lg)
	rec.Seasons = ExtractSeasons(payload)
	if direct := extractDirectCurrentStats(payload); direct != nil {
		rec.CurrentSeasonStats = direct
	}
	athlete.Finalize(&rec)
	if rec.Empty() {
		return nil, nil
	}
	if rec.ID == "" {
		rec.ID = athleteID
	}
	return &rec, nil
}
