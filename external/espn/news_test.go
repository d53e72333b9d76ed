package espn

import (
	"context"
	"net/http"
	"testing"

	"github.com/courtsidehq/sportsdata/internal/domain/league"
)

const nflNewsJSON = `{
	"articles": [
		{
			"headline": "Mahomes throws five touchdowns",
			"description": "Another big night in Kansas City.",
			"published": "2026-08-30T02:15:00Z",
			"categories": [{"type": "athlete", "athleteId": "3139477"}],
			"links": {"web": {"href": "https://www.espn.com/nfl/story/_/id/99"}}
		},
		{
			"headline": "League announces schedule changes",
			"description": "Week 4 flexed to Monday.",
			"categories": [{"type": "league", "id": "28"}]
		},
		{
			"headline": "Injury report roundup",
			"description": "Patrick Mahomes listed as questionable.",
			"categories": []
		}
	]
}`

func TestGetPlayerNews_FilterByAthleteID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/site/football/nfl/news" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(nflNewsJSON))
	}, nil)

	items, err := client.GetPlayerNews(context.Background(), league.NFL, "3139477", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("filtered article count mismatch: got=%d want=1", len(items))
	}
	if items[0].Headline != "Mahomes throws five touchdowns" {
		t.Fatalf("wrong article selected: got=%q", items[0].Headline)
	}
	if items[0].Link == "" {
		t.Fatal("article link not extracted")
	}
}

func TestGetPlayerNews_FilterByName(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nflNewsJSON))
	}, nil)

	items, err := client.GetPlayerNews(context.Background(), league.NFL, "Patrick Mahomes", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("name-filtered count mismatch: got=%d want=1", len(items))
	}
	if items[0].Headline != "Injury report roundup" {
		t.Fatalf("wrong article selected: got=%q", items[0].Headline)
	}
}

func TestGetPlayerNews_UpstreamFailureYieldsEmpty(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, nil, nil)

	items, err := client.GetPlayerNews(context.Background(), league.NFL, "3139477", 10)
	if err != nil {
		t.Fatalf("upstream failure must be recovered: %v", err)
	}
	if items != nil {
		t.Fatalf("expected no items, got %+v", items)
	}
}

func TestGetPlayerContracts_ParsesItems(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/core/football/nfl/athletes/3139477/contracts" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"count": 2,
			"items": [
				{"season": 2025, "salary": 45000000, "active": true},
				{"season": 2024, "salary": 42000000, "active": false}
			]
		}`))
	}, nil)

	contracts, err := client.GetPlayerContracts(context.Background(), league.NFL, "3139477")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contracts) != 2 {
		t.Fatalf("contract count mismatch: got=%d want=2", len(contracts))
	}
	if contracts[0].Year != 2025 || contracts[0].Salary != 45000000 || !contracts[0].Active {
		t.Fatalf("first contract mismatch: got=%+v", contracts[0])
	}
}
