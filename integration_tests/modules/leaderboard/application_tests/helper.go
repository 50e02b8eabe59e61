package leaderboardintegrationtests

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/events"
	leaderboardcache "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/cache"
	leaderboarddb "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/Black-And-White-Club/opti-runner/integration_tests/testutils"
)

var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// GetTestEnv starts the shared containers on first use.
func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing leaderboard test environment...")
		testEnv, testEnvErr = testutils.NewTestEnvironment(t)
	})
	if testEnvErr != nil {
		t.Fatalf("Leaderboard test environment initialization failed: %v", testEnvErr)
	}
	return testEnv
}

// MutableClock is a clock tests can move.
type MutableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *MutableClock) Now() time.Time { return c.NowUTC() }

func (c *MutableClock) NowUTC() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *MutableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ shared.Clock = (*MutableClock)(nil)

type TestDeps struct {
	Ctx      context.Context
	BunDB    *bun.DB
	Repo     leaderboarddb.Repository
	Profiles profiledb.Repository
	Cache    *leaderboardcache.RedisCache
	Bus      *eventbus.EventBus
	Capture  *testutils.MessageCapture
	Clock    *MutableClock
	Service  *leaderboardservice.LeaderboardService
}

// serviceOption tweaks the wiring of one test's service.
type serviceOption func(*serviceConfig)

type serviceConfig struct {
	wrapProfiles func(profiledb.Repository) leaderboardservice.ProfileStore
}

// withProfileStore wraps the real profile repository the service writes through.
func withProfileStore(wrap func(profiledb.Repository) leaderboardservice.ProfileStore) serviceOption {
	return func(c *serviceConfig) {
		c.wrapProfiles = wrap
	}
}

// SetupTestLeaderboardService resets storage and builds a service over the
// real repositories, redis cache and NATS bus.
func SetupTestLeaderboardService(t *testing.T, opts ...serviceOption) TestDeps {
	t.Helper()
	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bus, err := eventbus.New(env.NatsURL, logger)
	if err != nil {
		t.Fatalf("Failed to create event bus: %v", err)
	}
	ctx, cancel := context.WithCancel(env.Ctx)
	capture, err := testutils.CaptureTopics(ctx, bus,
		leaderboardevents.ScoreAcceptedV1,
		leaderboardevents.ScoreRejectedV1,
		leaderboardevents.WeeklyClosedV1,
	)
	if err != nil {
		cancel()
		t.Fatalf("Failed to capture topics: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
	})

	profiles := profiledb.NewRepository(env.DB)
	var cfg serviceConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	var store leaderboardservice.ProfileStore = profiles
	if cfg.wrapProfiles != nil {
		store = cfg.wrapProfiles(profiles)
	}

	repo := leaderboarddb.NewRepository(env.DB)
	cache := leaderboardcache.NewRedisCache(env.Redis, time.Minute)
	clock := &MutableClock{now: time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC)}

	service := leaderboardservice.NewLeaderboardService(
		repo,
		store,
		cache,
		bus,
		logger,
		nil,
		noop.NewTracerProvider().Tracer("test_leaderboard_service"),
		env.DB,
		leaderboardservice.Options{
			Thresholds: leaderboarddomain.DefaultThresholds(),
			Clock:      clock,
		},
	)

	return TestDeps{
		Ctx:      env.Ctx,
		BunDB:    env.DB,
		Repo:     repo,
		Profiles: profiles,
		Cache:    cache,
		Bus:      bus,
		Capture:  capture,
		Clock:    clock,
		Service:  service,
	}
}

// submit is a shorthand for a plausible run by player.
func submit(t *testing.T, deps TestDeps, player testutils.Player, score int64) leaderboardservice.SubmitOutcome {
	t.Helper()
	outcome, err := deps.Service.Submit(deps.Ctx, leaderboardservice.SubmitRequest{
		PlayerID:    player.ID,
		DisplayName: player.Name,
		Result:      testutils.PlausibleRun(score),
	})
	if err != nil {
		t.Fatalf("Submit(%s, %d) failed: %v", player.ID, score, err)
	}
	if !outcome.Accepted() {
		t.Fatalf("Submit(%s, %d) rejected: %+v", player.ID, score, outcome.Violations)
	}
	return outcome
}
