package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/courtsidehq/sportsdata/internal/platform/logging"
)

// Config stores runtime configuration for the data client.
type Config struct {
	SiteAPIBaseURL   string `validate:"required,url"`
	SearchAPIBaseURL string `validate:"required,url"`
	WebAPIBaseURL    string `validate:"required,url"`
	CoreAPIBaseURL   string `validate:"required,url"`

	HTTPTimeout time.Duration `validate:"gt=0"`
	MaxRetries  int           `validate:"gte=0,lte=5"`

	CacheEnabled bool
	CacheTTL     time.Duration `validate:"gte=0"`
	// LocalDataTTL bounds how long a parsed bundled index stays cached.
	LocalDataTTL time.Duration `validate:"gte=0"`

	LocalDataDir string `validate:"required"`

	CircuitEnabled        bool
	CircuitFailureCount   int           `validate:"gte=1"`
	CircuitOpenTimeout    time.Duration `validate:"gt=0"`
	CircuitHalfOpenMaxReq int           `validate:"gte=1"`

	LogLevel logging.Level
}

const (
	defaultSiteAPIBaseURL   = "https://site.api.espn.com/apis/site/v2/sports"
	defaultSearchAPIBaseURL = "https://site.web.api.espn.com/apis/search/v2"
	defaultWebAPIBaseURL    = "https://site.web.api.espn.com/apis/common/v3/sports"
	defaultCoreAPIBaseURL   = "https://sports.core.api.espn.com/v2/sports"
)

var validate = validator.New()

func Load() (Config, error) {
	httpTimeout, err := getDurationEnv("SPORTSDATA_HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	maxRetries, err := getIntEnv("SPORTSDATA_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := getBoolEnv("SPORTSDATA_CACHE_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	cacheTTL, err := getDurationEnv("SPORTSDATA_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	localTTL, err := getDurationEnv("SPORTSDATA_LOCAL_DATA_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}

	circuitEnabled, err := getBoolEnv("SPORTSDATA_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	circuitFailures, err := getIntEnv("SPORTSDATA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, err
	}

	circuitOpenTimeout, err := getDurationEnv("SPORTSDATA_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}

	circuitHalfOpen, err := getIntEnv("SPORTSDATA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, err
	}

	logLevel, err := parseLogLevel(getEnv("SPORTSDATA_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SiteAPIBaseURL:        strings.TrimRight(getEnv("SPORTSDATA_SITE_API_BASE_URL", defaultSiteAPIBaseURL), "/"),
		SearchAPIBaseURL:      strings.TrimRight(getEnv("SPORTSDATA_SEARCH_API_BASE_URL", defaultSearchAPIBaseURL), "/"),
		WebAPIBaseURL:         strings.TrimRight(getEnv("SPORTSDATA_WEB_API_BASE_URL", defaultWebAPIBaseURL), "/"),
		CoreAPIBaseURL:        strings.TrimRight(getEnv("SPORTSDATA_CORE_API_BASE_URL", defaultCoreAPIBaseURL), "/"),
		HTTPTimeout:           httpTimeout,
		MaxRetries:            maxRetries,
		CacheEnabled:          cacheEnabled,
		CacheTTL:              cacheTTL,
		LocalDataTTL:          localTTL,
		LocalDataDir:          getEnv("SPORTSDATA_LOCAL_DATA_DIR", "public"),
		CircuitEnabled:        circuitEnabled,
		CircuitFailureCount:   circuitFailures,
		CircuitOpenTimeout:    circuitOpenTimeout,
		CircuitHalfOpenMaxReq: circuitHalfOpen,
		LogLevel:              logLevel,
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func parseLogLevel(raw string) (logging.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return logging.LevelDebug, nil
	case "", "info":
		return logging.LevelInfo, nil
	case "warn", "warning":
		return logging.LevelWarn, nil
	case "error":
		return logging.LevelError, nil
	default:
		return logging.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}
