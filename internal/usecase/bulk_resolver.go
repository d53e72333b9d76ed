package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/courtsidehq/sportsdata/internal/domain/athlete"
	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/platform/logging"
)

// PlayerResolver is the single-player lookup the bulk resolver parallelizes.
type PlayerResolver interface {
	GetPlayer(ctx context.Context, lg league.League, idOrQuery string) (*athlete.PlayerRecord, error)
}

// BulkRef identifies one player to resolve.
type BulkRef struct {
	League league.League
	Ref    string
}

const (
	BulkStatusSuccess = "success"
	BulkStatusFailed  = "failed"
	BulkStatusSkipped = "skipped"
)

// BulkResult is the outcome for one ref, in the same position as its input.
type BulkResult struct {
	Ref      BulkRef
	Player   *athlete.PlayerRecord
	Status   string
	Error    string
	Duration time.Duration
}

// BulkSummary aggregates a whole run.
type BulkSummary struct {
	Results []BulkResult
	Success int
	Failed  int
	Skipped int
}

// BulkResolver resolves many players over a bounded worker pool, typically
// to warm the URL cache before a page render that needs a full roster.
type BulkResolver struct {
	resolver PlayerResolver
	workers  int
	logger   *logging.Logger
}

func NewBulkResolver(resolver PlayerResolver, workers int, logger *logging.Logger) *BulkResolver {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BulkResolver{resolver: resolver, workers: workers, logger: logger}
}

// Resolve runs every ref through the resolver. Refs with an unknown league
// or empty reference are skipped, resolver errors and misses are failed;
// neither aborts the run. Results keep input order.
func (b *BulkResolver) Resolve(ctx context.Context, refs []BulkRef) (BulkSummary, error) {
	results := make([]BulkResult, len(refs))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return BulkSummary{}, crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, ref := range refs {
		i, ref := i, ref
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BulkResult{Ref: ref}

			switch {
			case !ref.League.Known() || ref.Ref == "":
				row.Status = BulkStatusSkipped
				skippedCount.Add(1)
			default:
				player, err := b.resolver.GetPlayer(ctx, ref.League, ref.Ref)
				switch {
				case err != nil:
					row.Status = BulkStatusFailed
					row.Error = err.Error()
					failedCount.Add(1)
				case player == nil:
					row.Status = BulkStatusFailed
					row.Error = "player not found"
					failedCount.Add(1)
				default:
					row.Status = BulkStatusSuccess
					row.Player = player
					successCount.Add(1)
				}
			}

			row.Duration = time.Since(start)
			results[i] = row
		}); err != nil {
			workers.Done()
			results[i] = BulkResult{Ref: ref, Status: BulkStatusFailed, Error: err.Error()}
			failedCount.Add(1)
		}
	}
	workers.Wait()

	summary := BulkSummary{
		Results: results,
		Success: int(successCount.Load()),
		Failed:  int(failedCount.Load()),
		Skipped: int(skippedCount.Load()),
	}
	b.logger.InfoContext(ctx, "bulk resolve finished",
		"total", len(refs),
		"success", summary.Success,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}
