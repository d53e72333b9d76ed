package usecase

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/courtsidehq/sportsdata/internal/domain/athlete"
	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/domain/team"
	"github.com/courtsidehq/sportsdata/internal/platform/logging"
)

// SportsData is the provider surface the service layer consumes. The
// external client satisfies it; tests substitute fakes.
type SportsData interface {
	GetPlayer(ctx context.Context, lg league.League, idOrQuery string) (*athlete.PlayerRecord, error)
	SearchPlayersLocal(ctx context.Context, query string, lg league.League, limit int) ([]athlete.PlayerRecord, error)
	GetTeam(ctx context.Context, lg league.League, ref string) (*team.Record, error)
}

// PlayerService wraps the data client with caller-facing error semantics:
// the client reports "not found" as nil, the service converts that to
// ErrNotFound so HTTP-ish consumers can branch on sentinels.
type PlayerService struct {
	data   SportsData
	logger *logging.Logger
}

func NewPlayerService(data SportsData, logger *logging.Logger) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerService{data: data, logger: logger}
}

func (s *PlayerService) ResolvePlayer(ctx context.Context, rawLeague, idOrQuery string) (*athlete.PlayerRecord, error) {
	lg, ok := league.Parse(rawLeague)
	if !ok {
		return nil, crerr.Wrapf(ErrInvalidInput, "league %q", rawLeague)
	}
	if strings.TrimSpace(idOrQuery) == "" {
		return nil, crerr.Wrap(ErrInvalidInput, "empty player reference")
	}

	rec, err := s.data.GetPlayer(ctx, lg, idOrQuery)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, crerr.Wrapf(ErrNotFound, "player %q in %s", idOrQuery, lg)
	}
	return rec, nil
}

func (s *PlayerService) ResolveTeam(ctx context.Context, rawLeague, ref string) (*team.Record, error) {
	lg, ok := league.Parse(rawLeague)
	if !ok {
		return nil, crerr.Wrapf(ErrInvalidInput, "league %q", rawLeague)
	}

	rec, err := s.data.GetTeam(ctx, lg, ref)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, crerr.Wrapf(ErrNotFound, "team %q in %s", ref, lg)
	}
	return rec, nil
}

// LeagueResults is one league's slice of a cross-league search.
type LeagueResults struct {
	League  league.League
	Players []athlete.PlayerRecord
}

// SearchAllLeagues fans one query out across every known league
// concurrently and returns the per-league hits in league declaration order.
// Leagues with no hits are omitted; a league whose search fails is logged
// and omitted rather than failing the whole fan-out.
func (s *PlayerService) SearchAllLeagues(ctx context.Context, query string, limitPerLeague int) ([]LeagueResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, crerr.Wrap(ErrInvalidInput, "empty search query")
	}
	if limitPerLeague <= 0 {
		limitPerLeague = 5
	}

	leagues := league.All()
	found := make([][]athlete.PlayerRecord, len(leagues))

	var wg conc.WaitGroup
	for i, lg := range leagues {
		i, lg := i, lg
		wg.Go(func() {
			players, err := s.data.SearchPlayersLocal(ctx, query, lg, limitPerLeague)
			if err != nil {
				s.logger.WarnContext(ctx, "league search failed", "league", lg.String(), "error", err)
				return
			}
			found[i] = players
		})
	}
	wg.Wait()

	out := make([]LeagueResults, 0, len(leagues))
	for i, lg := range leagues {
		if len(found[i]) > 0 {
			out = append(out, LeagueResults{League: lg, Players: found[i]})
		}
	}
	return out, nil
}
