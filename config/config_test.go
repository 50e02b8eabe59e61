package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file/db
jwt:
  secret: file-secret
http:
  address: ":9090"
  allowed_origins: ["https://game.example"]
anticheat:
  min_duration: 3s
  max_score: 5000
leaderboard:
  default_limit: 20
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.Postgres.DSN)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://game.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Anticheat.MinDuration)
	assert.Equal(t, int64(5000), cfg.Anticheat.MaxScore)
	assert.Equal(t, 20, cfg.Leaderboard.DefaultLimit)

	// untouched fields fall back to defaults
	assert.Equal(t, 1.5, cfg.Anticheat.PointsPerSecond)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 2, cfg.Profile.MaxNameChanges)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file/db
jwt:
  secret: file-secret
`)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("BANNED_IPS", "10.0.0.1, 10.0.0.2")
	t.Setenv("JOBS_ENABLED", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.HTTP.BannedIPs)
	assert.True(t, cfg.Jobs.Enabled)
}

func TestLoadConfig_EnvFallback(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		verify  func(t *testing.T, cfg *Config)
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"JWT_SECRET": "s"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "missing jwt secret",
			env:     map[string]string{"DATABASE_URL": "postgres://x"},
			wantErr: "jwt secret",
		},
		{
			name:    "invalid rate limit window",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s", "RATE_LIMIT_WINDOW": "soon"},
			wantErr: "RATE_LIMIT_WINDOW",
		},
		{
			name: "defaults applied",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ":8080", cfg.HTTP.Address)
				assert.Equal(t, 5*time.Second, cfg.Anticheat.MinDuration)
				assert.Equal(t, 10, cfg.Leaderboard.DefaultLimit)
				assert.True(t, cfg.Jobs.Enabled)
				assert.Empty(t, cfg.NATS.URL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig(missing)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadConfig_ExplicitZeroThresholdsKept(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file/db
jwt:
  secret: file-secret
anticheat:
  score_slack: 0
  currency_slack: 0
  currency_score_tolerance: 0
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Zero(t, cfg.Anticheat.ScoreSlack)
	assert.Zero(t, cfg.Anticheat.CurrencySlack)
	assert.Zero(t, cfg.Anticheat.CurrencyScoreTolerance)
	// keys left out keep the stock value
	assert.Equal(t, int64(10000), cfg.Anticheat.MaxScore)
	assert.Equal(t, 5*time.Second, cfg.Anticheat.BonusSpawnInterval)
}

func TestValidate_LimitOrdering(t *testing.T) {
	cfg := &Config{Postgres: PostgresConfig{DSN: "x"}, JWT: JWTConfig{Secret: "s"}}
	applyDefaults(cfg)
	cfg.Leaderboard.DefaultLimit = 500

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_limit")
}

func TestAnticheatThresholds_MatchStockRuleset(t *testing.T) {
	cfg := newConfig()
	applyDefaults(&cfg)

	assert.Equal(t, leaderboarddomain.DefaultThresholds(), cfg.Anticheat.Thresholds())
}
