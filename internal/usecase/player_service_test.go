package usecase

import (
	"context"
	"testing"

	crerr "github.com/cockroachdb/errors"

	"github.com/courtsidehq/sportsdata/internal/domain/athlete"
	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/domain/team"
)

type fakeSportsData struct {
	players  map[string]*athlete.PlayerRecord
	searches map[league.League][]athlete.PlayerRecord
	teams    map[string]*team.Record

	getPlayerCalls int
}

func (f *fakeSportsData) GetPlayer(_ context.Context, lg league.League, ref string) (*athlete.PlayerRecord, error) {
	f.getPlayerCalls++
	return f.players[lg.String()+"/"+ref], nil
}

func (f *fakeSportsData) SearchPlayersLocal(_ context.Context, _ string, lg league.League, _ int) ([]athlete.PlayerRecord, error) {
	return f.searches[lg], nil
}

func (f *fakeSportsData) GetTeam(_ context.Context, lg league.League, ref string) (*team.Record, error) {
	return f.teams[lg.String()+"/"+ref], nil
}

func TestResolvePlayer_NotFoundSentinel(t *testing.T) {
	t.Parallel()

	svc := NewPlayerService(&fakeSportsData{}, nil)

	_, err := svc.ResolvePlayer(context.Background(), "nba", "nobody")
	if !crerr.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolvePlayer_InvalidLeague(t *testing.T) {
	t.Parallel()

	data := &fakeSportsData{}
	svc := NewPlayerService(data, nil)

	_, err := svc.ResolvePlayer(context.Background(), "cricket", "someone")
	if !crerr.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if data.getPlayerCalls != 0 {
		t.Fatalf("invalid league must not reach the data layer: calls=%d", data.getPlayerCalls)
	}
}

func TestResolvePlayer_Found(t *testing.T) {
	t.Parallel()

	data := &fakeSportsData{
		players: map[string]*athlete.PlayerRecord{
			"nba/3975": {ID: "3975", Name: "Stephen Curry", League: league.NBA},
		},
	}
	svc := NewPlayerService(data, nil)

	rec, err := svc.ResolvePlayer(context.Background(), "NBA", "3975")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "Stephen Curry" {
		t.Fatalf("record mismatch: got=%+v", rec)
	}
}

func TestSearchAllLeagues_OrderAndOmission(t *testing.T) {
	t.Parallel()

	data := &fakeSportsData{
		searches: map[league.League][]athlete.PlayerRecord{
			league.NBA: {{ID: "1", Name: "NBA Hit", League: league.NBA}},
			league.NFL: {{ID: "2", Name: "NFL Hit", League: league.NFL}},
		},
	}
	svc := NewPlayerService(data, nil)

	results, err := svc.SearchAllLeagues(context.Background(), "hit", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("result count mismatch: got=%d want=2", len(results))
	}
	// league.All order: nfl before nba.
	if results[0].League != league.NFL || results[1].League != league.NBA {
		t.Fatalf("league order mismatch: got=%v,%v", results[0].League, results[1].League)
	}
}

func TestSearchAllLeagues_EmptyQuery(t *testing.T) {
	t.Parallel()

	svc := NewPlayerService(&fakeSportsData{}, nil)
	if _, err := svc.SearchAllLeagues(context.Background(), "  ", 5); !crerr.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
