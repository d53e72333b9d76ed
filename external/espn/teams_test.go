package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"

	crerr "github.com/cockroachdb/errors"

	"github.com/courtsidehq/sportsdata/internal/domain/league"
)

type countingHandler struct {
	requests atomic.Int64
	handler  http.HandlerFunc
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.requests.Add(1)
	if h.handler == nil {
		http.NotFound(w, r)
		return
	}
	h.handler(w, r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, local fstest.MapFS) (*Client, *countingHandler) {
	t.Helper()

	counting := &countingHandler{handler: handler}
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:       server.Client(),
		SiteAPIBaseURL:   server.URL + "/site",
		SearchAPIBaseURL: server.URL + "/search",
		WebAPIBaseURL:    server.URL + "/web",
		CoreAPIBaseURL:   server.URL + "/core",
		LocalData:        local,
		LocalDataDir:     "public",
	})
	return client, counting
}

func localFile(path, body string) fstest.MapFS {
	return fstest.MapFS{path: &fstest.MapFile{Data: []byte(body)}}
}

const nbaTeamsJSON = `{
	"sports": [{
		"leagues": [{
			"teams": [
				{"team": {"id": "9", "slug": "golden-state-warriors", "displayName": "Golden State Warriors", "abbreviation": "GSW"}},
				{"team": {"id": "2", "slug": "boston-celtics", "displayName": "Boston Celtics", "abbreviation": "BOS"}}
			]
		}]
	}]
}`

func TestListTeams_LocalBundlePreferred(t *testing.T) {
	t.Parallel()

	client, counter := newTestClient(t, nil, localFile("public/db/espn/nba/teams.json", nbaTeamsJSON))

	teams, err := client.ListTeams(context.Background(), league.NBA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("team count mismatch: got=%d want=2", len(teams))
	}
	if teams[0].Abbreviation != "GSW" {
		t.Fatalf("first team mismatch: got=%q want=GSW", teams[0].Abbreviation)
	}
	if got := counter.requests.Load(); got != 0 {
		t.Fatalf("local bundle hit should avoid network: requests=%d", got)
	}
}

func TestGetTeam_ListLookupWhenLocalFileAbsent(t *testing.T) {
	t.Parallel()

	client, counter := newTestClient(t, nil, localFile("public/db/espn/nba/teams.json", nbaTeamsJSON))

	rec, err := client.GetTeam(context.Background(), league.NBA, "GSW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.ID != "9" {
		t.Fatalf("list lookup failed: got=%+v", rec)
	}
	if got := counter.requests.Load(); got != 0 {
		t.Fatalf("list lookup should avoid network: requests=%d", got)
	}
}

func TestGetTeam_FuzzyUnderscoreMatch(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nil, localFile("public/db/espn/nba/teams.json", nbaTeamsJSON))

	rec, err := client.GetTeam(context.Background(), league.NBA, "golden_state")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.Slug != "golden-state-warriors" {
		t.Fatalf("fuzzy match failed: got=%+v", rec)
	}
}

func TestGetTeam_LocalFileIdentityCheck(t *testing.T) {
	t.Parallel()

	// The bundled file named after the query describes a different team; it
	// must be rejected in favor of the list lookup.
	local := fstest.MapFS{
		"public/db/espn/nba/lakers.json": &fstest.MapFile{Data: []byte(
			`{"team": {"id": "2", "slug": "boston-celtics", "displayName": "Boston Celtics"}}`,
		)},
		"public/db/espn/nba/teams.json": &fstest.MapFile{Data: []byte(
			`{"teams": [{"team": {"id": "13", "slug": "lakers", "displayName": "Los Angeles Lakers", "abbreviation": "LAL"}}]}`,
		)},
	}
	client, _ := newTestClient(t, nil, local)

	rec, err := client.GetTeam(context.Background(), league.NBA, "lakers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.ID != "13" {
		t.Fatalf("identity check failed, wrong team returned: got=%+v", rec)
	}
}

func TestGetTeam_RemoteVariantFallback(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site/basketball/nba/teams":
			w.Write([]byte(`{"sports": [{"leagues": [{"teams": []}]}]}`))
		case "/site/basketball/nba/teams/okc":
			w.Write([]byte(`{"team": {"id": "25", "slug": "oklahoma-city-thunder", "displayName": "Oklahoma City Thunder", "abbreviation": "OKC"}}`))
		default:
			http.NotFound(w, r)
		}
	}, nil)

	rec, err := client.GetTeam(context.Background(), league.NBA, "OKC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.ID != "25" {
		t.Fatalf("remote variant fallback failed: got=%+v", rec)
	}
}

func TestGetTeam_UnknownLeague(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nil, nil)

	_, err := client.GetTeam(context.Background(), league.League("xfl"), "anything")
	if !crerr.Is(err, ErrUnsupportedLeague) {
		t.Fatalf("expected unsupported league error, got %v", err)
	}
}

func TestGetTeam_AllStrategiesExhausted(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nil, nil)

	rec, err := client.GetTeam(context.Background(), league.NBA, "no-such-team")
	if err != nil {
		t.Fatalf("exhausted resolution must not error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil team, got %+v", rec)
	}
}

func TestGetTeamRoster_GroupedShape(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/site/football/nfl/teams/9/roster" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"athletes": [
				{"position": "offense", "items": [
					{"id": "1", "fullName": "Player One", "position": {"abbreviation": "QB"}},
					{"id": "2", "fullName": "Player Two", "position": {"abbreviation": "WR"}}
				]},
				{"position": "defense", "items": [
					{"id": "3", "fullName": "Player Three", "position": {"abbreviation": "LB"}}
				]}
			]
		}`))
	}, nil)

	roster, err := client.GetTeamRoster(context.Background(), league.NFL, "9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("roster size mismatch: got=%d want=3", len(roster))
	}
	if roster[0].Name != "Player One" || roster[0].Position != "QB" {
		t.Fatalf("first entry mismatch: got=%+v", roster[0])
	}
}

func TestGetTeamRoster_RetriesWithResolvedID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site/basketball/nba/teams/9/roster":
			w.Write([]byte(`{"athletes": [{"id": "201939", "fullName": "Stephen Curry"}]}`))
		default:
			http.NotFound(w, r)
		}
	}, localFile("public/db/espn/nba/teams.json", nbaTeamsJSON))

	roster, err := client.GetTeamRoster(context.Background(), league.NBA, "golden_state")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster) != 1 || roster[0].ID != "201939" {
		t.Fatalf("retry with resolved id failed: got=%+v", roster)
	}
}

func TestFlattenRosterEntries_Shapes(t *testing.T) {
	t.Parallel()

	flat := map[string]any{
		"entries": []any{
			map[string]any{"id": "1"},
			map[string]any{"id": "2"},
		},
	}
	if got := flattenRosterEntries(flat); len(got) != 2 {
		t.Fatalf("flat shape mismatch: got=%d want=2", len(got))
	}

	keyed := map[string]any{
		"roster": map[string]any{
			"forwards": []any{map[string]any{"id": "1"}},
			"guards":   []any{map[string]any{"id": "2"}, map[string]any{"id": "3"}},
		},
	}
	if got := flattenRosterEntries(keyed); len(got) != 3 {
		t.Fatalf("position-keyed shape mismatch: got=%d want=3", len(got))
	}

	wrapped := map[string]any{
		"detail": map[string]any{
			"roster": map[string]any{
				"entries": []any{map[string]any{"id": "1"}},
			},
		},
	}
	if got := flattenRosterEntries(wrapped); len(got) != 1 {
		t.Fatalf("detail-wrapped shape mismatch: got=%d want=1", len(got))
	}
}
