package leaderboardhandlerintegrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/opti-runner/app"
	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	"github.com/Black-And-White-Club/opti-runner/app/modules/auth"
	"github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard"
	leaderboardcache "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/cache"
	"github.com/Black-And-White-Club/opti-runner/app/modules/profile"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/app/observability/leaderboardmetrics"
	"github.com/Black-And-White-Club/opti-runner/config"
	"github.com/Black-And-White-Club/opti-runner/integration_tests/testutils"
)

var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing leaderboard handler test environment...")
		testEnv, testEnvErr = testutils.NewTestEnvironment(t)
	})
	if testEnvErr != nil {
		t.Fatalf("Handler test environment initialization failed: %v", testEnvErr)
	}
	return testEnv
}

// TestServer is the full HTTP stack over the shared containers.
type TestServer struct {
	Ctx    context.Context
	Env    *testutils.TestEnvironment
	Router http.Handler
	Auth   *auth.Module
}

// SetupTestServer wires every module the way the server does, with the event
// router consuming from NATS so cross-module events are delivered.
func SetupTestServer(t *testing.T) *TestServer {
	t.Helper()
	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	cfg := &config.Config{
		JWT:         config.JWTConfig{Secret: "integration-secret", DefaultTTL: time.Hour},
		RateLimit:   config.RateLimitConfig{Requests: 1000, Window: time.Minute},
		Leaderboard: config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100, CacheTTL: time.Minute},
		Profile:     config.ProfileConfig{MaxNameChanges: 3, DefaultName: "Player"},
	}
	obs := observability.NewNop()
	ctx, cancel := context.WithCancel(env.Ctx)

	bus, err := eventbus.New(env.NatsURL, obs.Logger)
	if err != nil {
		cancel()
		t.Fatalf("Failed to create event bus: %v", err)
	}
	router, err := eventbus.NewRouter(obs.Logger, bus, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to create event router: %v", err)
	}

	opMetrics := observability.NewPrometheusOperationMetrics(obs.Registry, "opti_runner_test")
	authModule := auth.NewModule(ctx, cfg, obs)
	profileModule := profile.NewProfileModule(ctx, cfg, obs, opMetrics, bus, env.DB)
	leaderboardModule, err := leaderboard.NewLeaderboardModule(ctx, cfg, obs, leaderboard.Deps{
		DB:        env.DB,
		Bus:       bus,
		Profiles:  profileModule.Repository,
		Cache:     leaderboardcache.NewRedisCache(env.Redis, cfg.Leaderboard.CacheTTL),
		Metrics:   leaderboardmetrics.NewPrometheus(obs.Registry, opMetrics),
		OpMetrics: opMetrics,
	})
	if err != nil {
		cancel()
		t.Fatalf("Failed to create leaderboard module: %v", err)
	}
	leaderboardModule.RegisterSubscribers(router)

	go func() {
		if err := router.Run(ctx); err != nil {
			log.Printf("event router stopped: %v", err)
		}
	}()
	select {
	case <-router.Running():
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatalf("event router did not start")
	}

	t.Cleanup(func() {
		cancel()
		_ = router.Close()
		_ = bus.Close()
	})

	return &TestServer{
		Ctx:    ctx,
		Env:    env,
		Router: app.NewRouter(obs, authModule, profileModule, leaderboardModule),
		Auth:   authModule,
	}
}

// Token issues a bearer token for the player.
func (s *TestServer) Token(t *testing.T, player testutils.Player) string {
	t.Helper()
	token, err := s.Auth.GetService().IssueToken(s.Ctx, player.ID, player.Name, 0)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	return token
}

// Do sends a request through the router. body is JSON-encoded when non-nil.
func (s *TestServer) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the API response shape with a typed data field.
type envelope[T any] struct {
	Success   bool            `json:"success"`
	Data      T               `json:"data"`
	Error     string          `json:"error"`
	Reasons   json.RawMessage `json:"reasons"`
	Retryable bool            `json:"retryable"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}
