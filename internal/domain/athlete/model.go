package athlete

import (
	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/domain/team"
)

// Season is one statistical split attributed to a period label.
//
// Current is tri-state: nil means the source carried no flag, which is weaker
// than an explicit false. An explicit false must never be promoted to the
// current season by fallback logic.
type Season struct {
	Label   string
	Stats   map[string]any
	Current *bool
}

// PlayerRecord is the canonical player shape returned to all callers.
// Records are built fresh on every resolution call and must not be mutated
// after they are returned.
type PlayerRecord struct {
	ID          string
	League      league.League
	Name        string
	HeadshotURL string

	// Team is embedded by value semantics: a subset copy, not a reference
	// into any shared team list.
	Team *team.Record

	Position string
	Height   string
	Weight   string

	// Seasons keeps source insertion order, which is not necessarily
	// chronological.
	Seasons []Season

	// CurrentSeasonStats aliases exactly one Season's Stats map whenever any
	// season is explicitly flagged current. See Finalize.
	CurrentSeasonStats map[string]any

	// Raw is the last raw source payload, kept for debugging only.
	Raw map[string]any
}

func (p PlayerRecord) Empty() bool {
	return p.ID == "" && p.Name == ""
}

// HasStats reports whether the record carries any usable statistics.
func (p PlayerRecord) HasStats() bool {
	if len(p.CurrentSeasonStats) > 0 {
		return true
	}
	for _, s := range p.Seasons {
		if len(s.Stats) > 0 {
			return true
		}
	}
	return false
}

// HasPhysicals reports whether position, height and weight are all present.
func (p PlayerRecord) HasPhysicals() bool {
	return p.Position != "" && p.Height != "" && p.Weight != ""
}

func boolPtr(v bool) *bool { return &v }

// True and False are the explicit season flags as pointers.
var (
	CurrentTrue  = boolPtr(true)
	CurrentFalse = boolPtr(false)
)
