package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtsidehq/sportsdata/internal/domain/league"
	"github.com/courtsidehq/sportsdata/internal/platform/cache"
	"github.com/courtsidehq/sportsdata/internal/platform/resilience"
)

func TestFetchJSON_CachesByURL(t *testing.T) {
	t.Parallel()

	counting := &countingHandler{handler: func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sports": [{"leagues": [{"teams": [{"team": {"id": "1", "displayName": "Only Team"}}]}]}]}`))
	}}
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		SiteAPIBaseURL: server.URL,
		Cache:          cache.NewStore(time.Minute),
	})

	for i := 0; i < 3; i++ {
		teams, err := client.ListTeams(context.Background(), league.MLB)
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		if len(teams) != 1 {
			t.Fatalf("team count mismatch on call %d: got=%d want=1", i, len(teams))
		}
	}
	if got := counting.requests.Load(); got != 1 {
		t.Fatalf("cached URL refetched: requests=%d want=1", got)
	}
}

func TestExecuteRequest_RetriesOnServerError(t *testing.T) {
	t.Parallel()

	counting := &countingHandler{}
	counting.handler = func(w http.ResponseWriter, r *http.Request) {
		if counting.requests.Load() == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		SiteAPIBaseURL: server.URL,
		MaxRetries:     1,
	})

	payload, err := client.fetchJSON(context.Background(), server.URL+"/anything", 0)
	if err != nil {
		t.Fatalf("retry did not recover: %v", err)
	}
	if payload["ok"] != true {
		t.Fatalf("payload mismatch: got=%v", payload)
	}
	if got := counting.requests.Load(); got != 2 {
		t.Fatalf("request count mismatch: got=%d want=2", got)
	}
}

func TestExecuteRequest_NoRetryOnNotFound(t *testing.T) {
	t.Parallel()

	counting := &countingHandler{}
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		SiteAPIBaseURL: server.URL,
		MaxRetries:     3,
	})

	_, err := client.fetchJSON(context.Background(), server.URL+"/missing", 0)
	if !IsFetchError(err) {
		t.Fatalf("expected a fetch error, got %v", err)
	}
	if got := counting.requests.Load(); got != 1 {
		t.Fatalf("404 must not retry: requests=%d want=1", got)
	}
}

func TestRequestJSON_CircuitBreakerRejectsAfterThreshold(t *testing.T) {
	t.Parallel()

	counting := &countingHandler{}
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		SiteAPIBaseURL: server.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.fetchJSON(context.Background(), server.URL+"/a", 0); !IsFetchError(err) {
		t.Fatalf("expected a fetch error, got %v", err)
	}
	before := counting.requests.Load()

	if _, err := client.fetchJSON(context.Background(), server.URL+"/b", 0); !IsFetchError(err) {
		t.Fatalf("expected the open circuit to surface as a fetch error, got %v", err)
	}
	if got := counting.requests.Load(); got != before {
		t.Fatalf("open circuit still reached the network: requests=%d want=%d", got, before)
	}
}

func TestFetchJSON_NonJSONBodyIsFetchError(t *testing.T) {
	t.Parallel()

	counting := &countingHandler{handler: func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}}
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		SiteAPIBaseURL: server.URL,
	})

	if _, err := client.fetchJSON(context.Background(), server.URL+"/html", 0); !IsFetchError(err) {
		t.Fatalf("expected non-JSON body to be a fetch error, got %v", err)
	}
}
