package testutils

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/opti-runner/app"
	"github.com/Black-And-White-Club/opti-runner/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by one test package.
type TestEnvironment struct {
	Ctx            context.Context
	CancelContext  context.CancelFunc
	PgContainer    *postgres.PostgresContainer
	RedisContainer testcontainers.Container
	NatsContainer  testcontainers.Container
	DB             *bun.DB
	DSN            string
	Redis          *redis.Client
	RedisAddr      string
	NatsURL        string
}

// NewTestEnvironment starts Postgres, Redis and NATS, then migrates the schema.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{Ctx: ctx, CancelContext: cancel}

	if err := env.setupContainers(ctx); err != nil {
		cancel()
		env.terminate(context.Background())
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.DSN = dsn

	redisContainer, redisAddr, err := containers.SetupRedisContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup redis container: %w", err)
	}
	env.RedisContainer = redisContainer
	env.RedisAddr = redisAddr

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	env.DB = app.NewDB(dsn)
	if err := env.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigrations(ctx, env.DB, dsn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	env.Redis = redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := env.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Reset truncates application tables and flushes redis.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	if err := CleanupDatabase(ctx, env.DB); err != nil {
		return err
	}
	if err := env.Redis.FlushAll(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush redis: %w", err)
	}
	return nil
}

// Cleanup closes connections and terminates every container.
func (env *TestEnvironment) Cleanup() {
	if env.Redis != nil {
		_ = env.Redis.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	env.CancelContext()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	env.terminate(ctx)
}

func (env *TestEnvironment) terminate(ctx context.Context) {
	for name, c := range map[string]testcontainers.Container{
		"redis": env.RedisContainer,
		"nats":  env.NatsContainer,
	} {
		if c == nil {
			continue
		}
		if err := c.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate %s container: %v", name, err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
}
