package athlete

import (
	"reflect"
	"testing"

	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/domain/team"
)

func TestMerge_NeverOverwritesNonEmptyFields(t *testing.T) {
	base := PlayerRecord{
		ID:     "8439",
		League: league.NFL,
		Name:   "Aaron Rodgers",
		Height: `6'2"`,
	}
	incoming := PlayerRecord{
		ID:          "8439",
		Name:        "A. Rodgers",
		Height:      "",
		Weight:      "225 lbs",
		HeadshotURL: "https://a.espncdn.com/i/headshots/nfl/players/full/8439.png",
	}

	merged := Merge(base, incoming)

	if merged.Name != "Aaron Rodgers" {
		t.Fatalf("earlier name replaced: %q", merged.Name)
	}
	if merged.Height != `6'2"` {
		t.Fatalf("earlier height replaced: %q", merged.Height)
	}
	if merged.Weight != "225 lbs" {
		t.Fatalf("empty weight not filled: %q", merged.Weight)
	}
	if merged.HeadshotURL == "" {
		t.Fatal("empty headshot not filled")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	a := PlayerRecord{
		ID:     "12",
		League: league.NBA,
		Name:   "Test Player",
		Seasons: []Season{
			{Label: "2025", Stats: map[string]any{"pts": 21.5}},
		},
	}
	b := PlayerRecord{
		ID:       "12",
		Position: "SG",
		Seasons: []Season{
			{Label: "2025", Stats: map[string]any{"reb": 4.1, "pts": 99.0}},
			{Label: "2024", Stats: map[string]any{"pts": 18.0}},
		},
	}

	once := Merge(a, b)
	twice := Merge(once, b)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
	}
	if got := once.Seasons[0].Stats["pts"]; got != 21.5 {
		t.Fatalf("earlier stat overwritten on label collision: %v", got)
	}
	if got := once.Seasons[0].Stats["reb"]; got != 4.1 {
		t.Fatalf("new stat not combined in: %v", got)
	}
	if len(once.Seasons) != 2 {
		t.Fatalf("season list length = %d, want 2", len(once.Seasons))
	}
}

func TestMerge_TeamCopiedByValue(t *testing.T) {
	incoming := PlayerRecord{
		Team: &team.Record{DisplayName: "Green Bay Packers", Abbreviation: "GB"},
	}

	merged := Merge(PlayerRecord{ID: "8439"}, incoming)

	if merged.Team == incoming.Team {
		t.Fatal("team should be copied, not aliased")
	}
	if merged.Team.DisplayName != "Green Bay Packers" {
		t.Fatalf("team not carried over: %#v", merged.Team)
	}
}

func TestFinalize_ExplicitCurrentBacksCurrentStats(t *testing.T) {
	p := PlayerRecord{
		Seasons: []Season{
			{Label: "2024", Stats: map[string]any{"pts": 18.0}},
			{Label: "2025", Stats: map[string]any{"pts": 22.0}, Current: CurrentTrue},
		},
		CurrentSeasonStats: map[string]any{"pts": 1.0},
	}

	Finalize(&p)

	if !sameMap(p.CurrentSeasonStats, p.Seasons[1].Stats) {
		t.Fatalf("current stats must alias the flagged season, got %v", p.CurrentSeasonStats)
	}
}

func TestFinalize_ExplicitNonCurrentSuppressesFallback(t *testing.T) {
	p := PlayerRecord{
		Seasons: []Season{
			{Label: "2024", Stats: map[string]any{"pts": 20.0}, Current: CurrentFalse},
		},
	}

	Finalize(&p)

	if p.CurrentSeasonStats != nil {
		t.Fatalf("explicit non-current season used as fallback: %v", p.CurrentSeasonStats)
	}
}

func TestFinalize_UnflaggedFallsBackToFirstSeason(t *testing.T) {
	p := PlayerRecord{
		Seasons: []Season{
			{Label: "2025", Stats: map[string]any{"pts": 22.0}},
			{Label: "2024", Stats: map[string]any{"pts": 18.0}},
		},
	}

	Finalize(&p)

	if !sameMap(p.CurrentSeasonStats, p.Seasons[0].Stats) {
		t.Fatalf("expected first season fallback, got %v", p.CurrentSeasonStats)
	}
}

func TestFinalize_KeepsDirectlySuppliedStats(t *testing.T) {
	direct := map[string]any{"passYds": 4100.0}
	p := PlayerRecord{CurrentSeasonStats: direct}

	Finalize(&p)

	if !sameMap(p.CurrentSeasonStats, direct) {
		t.Fatalf("directly supplied current stats dropped: %v", p.CurrentSeasonStats)
	}
}

func sameMap(a, b map[string]any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
