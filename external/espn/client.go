package espn

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/courtsidehq/sportsdata/internal/config"
	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/platform/cache"
	"github.com/courtsidehq/sportsdata/internal/platform/logging"
	"github.com/courtsidehq/sportsdata/internal/platform/resilience"
)

const (
	defaultSiteAPIBaseURL   = "https://site.api.espn.com/apis/site/v2/sports"
	defaultSearchAPIBaseURL = "https://site.web.api.espn.com/apis/search/v2"
	defaultWebAPIBaseURL    = "https://site.web.api.espn.com/apis/common/v3/sports"
	defaultCoreAPIBaseURL   = "https://sports.core.api.espn.com/v2/sports"

	defaultCacheTTL     = 5 * time.Minute
	defaultLocalDataTTL = time.Hour

	maxBodyBytes = 6 << 20
)

// ErrFetch marks a failed upstream round trip: non-2xx status, network
// failure or an undecodable body. The orchestration layers recover from it by
// moving to the next data source; it never reaches a caller of the public
// operations.
var ErrFetch = crerr.New("espn: fetch failed")

// ErrUnsupportedLeague is the one programmer error this package surfaces
// eagerly; no data source can fix an unknown league namespace.
var ErrUnsupportedLeague = crerr.New("espn: unsupported league")

type ClientConfig struct {
	HTTPClient *http.Client

	SiteAPIBaseURL   string
	SearchAPIBaseURL string
	WebAPIBaseURL    string
	CoreAPIBaseURL   string

	Timeout    time.Duration
	MaxRetries int

	// Cache is the URL-keyed TTL store. Nil disables caching; every fetch
	// then goes upstream, which is slower but still correct.
	Cache    *cache.Store
	CacheTTL time.Duration

	// LocalData is the bundled per-league data tree (player_index.json,
	// teams.json, per-team files) rooted at LocalDataDir. Nil disables the
	// local source.
	LocalData    fs.FS
	LocalDataDir string
	LocalDataTTL time.Duration

	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// FromConfig maps the process configuration onto a client configuration,
// leaving injectables (HTTP client, cache backend, local fs) to the caller.
func FromConfig(cfg config.Config, local fs.FS, logger *logging.Logger) ClientConfig {
	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}
	return ClientConfig{
		SiteAPIBaseURL:   cfg.SiteAPIBaseURL,
		SearchAPIBaseURL: cfg.SearchAPIBaseURL,
		WebAPIBaseURL:    cfg.WebAPIBaseURL,
		CoreAPIBaseURL:   cfg.CoreAPIBaseURL,
		Timeout:          cfg.HTTPTimeout,
		MaxRetries:       cfg.MaxRetries,
		Cache:            store,
		CacheTTL:         cfg.CacheTTL,
		LocalData:        local,
		LocalDataDir:     cfg.LocalDataDir,
		LocalDataTTL:     cfg.LocalDataTTL,
		Logger:           logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CircuitEnabled,
			FailureThreshold: cfg.CircuitFailureCount,
			OpenTimeout:      cfg.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CircuitHalfOpenMaxReq,
		},
	}
}

// Client is a read-only client over the provider's site, search, web and
// core API surfaces plus a bundled local data tree. All public operations
// degrade to nil/empty results on upstream failure.
type Client struct {
	httpClient *http.Client

	siteBase   string
	searchBase string
	webBase    string
	coreBase   string

	maxRetries int
	cacheTTL   time.Duration
	localTTL   time.Duration

	cache *cache.Store
	local localStore

	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	localTTL := cfg.LocalDataTTL
	if localTTL <= 0 {
		localTTL = defaultLocalDataTTL
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		siteBase:       baseOrDefault(cfg.SiteAPIBaseURL, defaultSiteAPIBaseURL),
		searchBase:     baseOrDefault(cfg.SearchAPIBaseURL, defaultSearchAPIBaseURL),
		webBase:        baseOrDefault(cfg.WebAPIBaseURL, defaultWebAPIBaseURL),
		coreBase:       baseOrDefault(cfg.CoreAPIBaseURL, defaultCoreAPIBaseURL),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		cacheTTL:       cacheTTL,
		localTTL:       localTTL,
		cache:          cfg.Cache,
		local:          newLocalStore(cfg.LocalData, cfg.LocalDataDir, logger),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func baseOrDefault(raw, fallback string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return fallback
	}
	return base
}

// siteURL builds a league-scoped site API URL, e.g.
// {base}/football/nfl/teams/gb/roster.
func (c *Client) siteURL(lg league.League, suffix string) string {
	return c.siteBase + "/" + lg.SportPath() + suffix
}

func (c *Client) webURL(lg league.League, suffix string) string {
	return c.webBase + "/" + lg.SportPath() + suffix
}

func (c *Client) coreURL(lg league.League, suffix string) string {
	return c.coreBase + "/" + lg.SportPath() + suffix
}

func (c *Client) searchURL(query string, limit int) string {
	values := url.Values{}
	values.Set("query", query)
	values.Set("limit", fmt.Sprintf("%d", limit))
	values.Set("type", "player")
	return c.searchBase + "?" + values.Encode()
}

// fetchJSON performs a cached GET of fullURL. The cache is keyed by the
// exact URL string; concurrent fetches of one URL collapse into a single
// round trip. A nil cache always goes upstream.
func (c *Client) fetchJSON(ctx context.Context, fullURL string, ttl time.Duration) (map[string]any, error) {
	if ttl <= 0 {
		ttl = c.cacheTTL
	}

	if c.cache == nil {
		return c.requestJSON(ctx, fullURL)
	}

	value, err := c.cache.GetOrLoad(ctx, fullURL, ttl, func(ctx context.Context) (any, error) {
		return c.requestJSON(ctx, fullURL)
	})
	if err != nil {
		return nil, err
	}

	payload, ok := value.(map[string]any)
	if !ok {
		return nil, crerr.Newf("unexpected cached payload type %T", value)
	}
	return payload, nil
}

func (c *Client) requestJSON(ctx context.Context, fullURL string) (map[string]any, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.Mark(err, ErrFetch)
		}
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && ctx.Err() == nil {
			c.breaker.RecordFailure()
		} else if err == nil {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	payload, err := decodeObject(raw)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "decode %s", redactURL(fullURL)), ErrFetch)
	}
	return payload, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), ErrFetch)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), ErrFetch)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				lastErr = crerr.Mark(crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), ErrFetch)
				if !isRetryableStatus(resp.StatusCode) {
					return nil, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.Mark(crerr.New("provider request failed"), ErrFetch)
	}
	c.logger.WarnContext(ctx, "espn request failed", "url", redactURL(fullURL), "error", lastErr)
	return nil, lastErr
}

// IsFetchError reports whether err represents a recoverable upstream failure
// (as opposed to a programmer error like an unsupported league).
func IsFetchError(err error) bool {
	return crerr.Is(err, ErrFetch) || crerr.Is(err, resilience.ErrCircuitOpen)
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 200
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func redactURL(fullURL string) string {
	if parsed, err := url.Parse(fullURL); err == nil {
		parsed.RawQuery = ""
		return parsed.String()
	}
	return fullURL
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
