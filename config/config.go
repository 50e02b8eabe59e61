package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	HTTP          HTTPConfig          `yaml:"http"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Anticheat     AnticheatConfig     `yaml:"anticheat"`
	Leaderboard   LeaderboardConfig   `yaml:"leaderboard"`
	Profile       ProfileConfig       `yaml:"profile"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in-process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the optional leaderboard cache configuration.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// HTTPConfig holds the API listener configuration.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	BannedIPs      []string `yaml:"banned_ips"`
}

// RateLimitConfig bounds requests per client IP and route.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// AnticheatConfig holds the score plausibility thresholds.
type AnticheatConfig struct {
	MinDuration            time.Duration `yaml:"min_duration"`
	MaxDuration            time.Duration `yaml:"max_duration"`
	PointsPerSecond        float64       `yaml:"points_per_second"`
	ScoreSlack             int64         `yaml:"score_slack"`
	MaxScorePerJump        float64       `yaml:"max_score_per_jump"`
	HighScoreFloor         int64         `yaml:"high_score_floor"`
	MinJumpsForHighScore   int64         `yaml:"min_jumps_for_high_score"`
	MaxJumps               int64         `yaml:"max_jumps"`
	BonusSpawnInterval     time.Duration `yaml:"bonus_spawn_interval"`
	CurrencySlack          int64         `yaml:"currency_slack"`
	MaxCurrency            int64         `yaml:"max_currency"`
	PointsPerBonus         int64         `yaml:"points_per_bonus"`
	CurrencyScoreTolerance int64         `yaml:"currency_score_tolerance"`
	MaxScore               int64         `yaml:"max_score"`
}

// Thresholds maps the anticheat section onto the validator's thresholds.
func (a AnticheatConfig) Thresholds() leaderboarddomain.Thresholds {
	return leaderboarddomain.Thresholds{
		MinDuration:            a.MinDuration,
		MaxDuration:            a.MaxDuration,
		PointsPerSecond:        a.PointsPerSecond,
		ScoreSlack:             a.ScoreSlack,
		MaxScorePerJump:        a.MaxScorePerJump,
		HighScoreFloor:         a.HighScoreFloor,
		MinJumpsForHighScore:   a.MinJumpsForHighScore,
		MaxJumps:               a.MaxJumps,
		BonusSpawnInterval:     a.BonusSpawnInterval,
		CurrencySlack:          a.CurrencySlack,
		MaxCurrency:            a.MaxCurrency,
		PointsPerBonus:         a.PointsPerBonus,
		CurrencyScoreTolerance: a.CurrencyScoreTolerance,
		MaxScore:               a.MaxScore,
	}
}

// LeaderboardConfig holds read-side leaderboard settings.
type LeaderboardConfig struct {
	DefaultLimit int           `yaml:"default_limit"`
	MaxLimit     int           `yaml:"max_limit"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// ProfileConfig holds player profile settings.
type ProfileConfig struct {
	MaxNameChanges int    `yaml:"max_name_changes"`
	DefaultName    string `yaml:"default_name"`
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	Enabled         bool `yaml:"enabled"`
	WeeklyCloseSize int  `yaml:"weekly_close_size"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment   string  `yaml:"environment"`
	LogLevel      string  `yaml:"log_level"`
	ServiceName   string  `yaml:"service_name"`
	TraceSampling float64 `yaml:"trace_sampling"`
}

// newConfig returns a Config whose anticheat section holds the stock ruleset.
// Keys present in the YAML file overwrite it, absent keys keep it.
func newConfig() Config {
	return Config{Anticheat: DefaultAnticheat()}
}

// DefaultAnticheat mirrors leaderboarddomain.DefaultThresholds.
func DefaultAnticheat() AnticheatConfig {
	t := leaderboarddomain.DefaultThresholds()
	return AnticheatConfig{
		MinDuration:            t.MinDuration,
		MaxDuration:            t.MaxDuration,
		PointsPerSecond:        t.PointsPerSecond,
		ScoreSlack:             t.ScoreSlack,
		MaxScorePerJump:        t.MaxScorePerJump,
		HighScoreFloor:         t.HighScoreFloor,
		MinJumpsForHighScore:   t.MinJumpsForHighScore,
		MaxJumps:               t.MaxJumps,
		BonusSpawnInterval:     t.BonusSpawnInterval,
		CurrencySlack:          t.CurrencySlack,
		MaxCurrency:            t.MaxCurrency,
		PointsPerBonus:         t.PointsPerBonus,
		CurrencyScoreTolerance: t.CurrencyScoreTolerance,
		MaxScore:               t.MaxScore,
	}
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	cfg := newConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.DefaultTTL = d
		}
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("BANNED_IPS"); v != "" {
		cfg.HTTP.BannedIPs = splitList(v)
	}
	if v := os.Getenv("JOBS_ENABLED"); v != "" {
		cfg.Jobs.Enabled = v == "true"
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	cfg := newConfig()

	// Load Postgres DSN
	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	// NATS and Redis are optional
	cfg.NATS.URL = os.Getenv("NATS_URL")
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value: %v", err)
		}
		cfg.Redis.DB = n
	}

	// Load JWT settings
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_DEFAULT_TTL value: %v", err)
		}
		cfg.JWT.DefaultTTL = d
	}

	cfg.HTTP.Address = os.Getenv("HTTP_ADDRESS")
	cfg.HTTP.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	cfg.HTTP.BannedIPs = splitList(os.Getenv("BANNED_IPS"))

	if v := os.Getenv("RATE_LIMIT_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS value: %v", err)
		}
		cfg.RateLimit.Requests = n
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW value: %v", err)
		}
		cfg.RateLimit.Window = d
	}

	cfg.Jobs.Enabled = os.Getenv("JOBS_ENABLED") != "false"

	// Load Observability settings
	cfg.Observability.Environment = os.Getenv("ENV")
	cfg.Observability.LogLevel = os.Getenv("LOG_LEVEL")
	if v := os.Getenv("TRACE_SAMPLING"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACE_SAMPLING value: %v", err)
		}
		cfg.Observability.TraceSampling = f
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills zero service settings. Anticheat thresholds are seeded
// by newConfig before decoding instead, so an explicit 0 survives.
func applyDefaults(cfg *Config) {
	if cfg.JWT.DefaultTTL == 0 {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 15 * time.Minute
	}

	if cfg.Leaderboard.DefaultLimit == 0 {
		cfg.Leaderboard.DefaultLimit = 10
	}
	if cfg.Leaderboard.MaxLimit == 0 {
		cfg.Leaderboard.MaxLimit = 100
	}
	if cfg.Leaderboard.CacheTTL == 0 {
		cfg.Leaderboard.CacheTTL = 30 * time.Second
	}

	if cfg.Profile.MaxNameChanges == 0 {
		cfg.Profile.MaxNameChanges = 2
	}
	if cfg.Profile.DefaultName == "" {
		cfg.Profile.DefaultName = "Player"
	}

	if cfg.Jobs.WeeklyCloseSize == 0 {
		cfg.Jobs.WeeklyCloseSize = 10
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "opti-runner"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.TraceSampling == 0 {
		cfg.Observability.TraceSampling = 0.1
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Leaderboard.DefaultLimit > c.Leaderboard.MaxLimit {
		return fmt.Errorf("leaderboard default_limit %d exceeds max_limit %d", c.Leaderboard.DefaultLimit, c.Leaderboard.MaxLimit)
	}
	if c.Anticheat.MinDuration >= c.Anticheat.MaxDuration {
		return fmt.Errorf("anticheat min_duration must be below max_duration")
	}
	return nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
