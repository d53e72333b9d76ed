package league

import "strings"

// League is a sports-league namespace. Player and team identifiers are only
// unique within one league.
type League string

const (
	NFL League = "nfl"
	NBA League = "nba"
	MLB League = "mlb"
	NHL League = "nhl"
)

// sportPath maps a league onto the provider's sport/league URL segment.
var sportPath = map[League]string{
	NFL: "football/nfl",
	NBA: "basketball/nba",
	MLB: "baseball/mlb",
	NHL: "hockey/nhl",
}

func All() []League {
	return []League{NFL, NBA, MLB, NHL}
}

func Parse(raw string) (League, bool) {
	l := League(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := sportPath[l]; !ok {
		return "", false
	}
	return l, true
}

func (l League) Known() bool {
	_, ok := sportPath[l]
	return ok
}

// SportPath returns the "{sport}/{league}" URL segment, e.g. "football/nfl".
func (l League) SportPath() string {
	return sportPath[l]
}

// HasAthleteOverview reports whether the provider exposes the richer
// athlete-overview endpoint for this league.
func (l League) HasAthleteOverview() bool {
	switch l {
	case NFL, NBA:
		return true
	default:
		return false
	}
}

func (l League) String() string {
	return string(l)
}
