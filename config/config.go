package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Redis         RedisConfig         `yaml:"redis"`
	Judge         JudgeConfig         `yaml:"judge"`
	Engine        EngineConfig        `yaml:"engine"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the catalog cache configuration. An empty Addr disables caching.
type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	CatalogTTL time.Duration `yaml:"catalog_ttl"`
}

// JudgeConfig holds the Codeforces API client configuration.
type JudgeConfig struct {
	BaseURL        string        `yaml:"base_url"`
	ProblemBaseURL string        `yaml:"problem_base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	Burst          int           `yaml:"burst"`
	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// EngineConfig holds the match engine tunables.
type EngineConfig struct {
	CommandPrefix       string        `yaml:"command_prefix"`
	AcceptWindow        time.Duration `yaml:"accept_window"`
	DuelDuration        time.Duration `yaml:"duel_duration"`
	LockoutDuration     time.Duration `yaml:"lockout_duration"`
	MaxLockoutDuration  time.Duration `yaml:"max_lockout_duration"`
	DefaultRating       int           `yaml:"default_rating"`
	MinRating           int           `yaml:"min_rating"`
	MaxRating           int           `yaml:"max_rating"`
	DefaultProblemCount int           `yaml:"default_problem_count"`
	MaxProblemCount     int           `yaml:"max_problem_count"`
	DefaultIncrement    int           `yaml:"default_increment"`
	RandomizeConstant   float64       `yaml:"randomize_constant"`
	SubmissionLimit     int           `yaml:"submission_limit"`
	ChallengeSkipAfter  time.Duration `yaml:"challenge_skip_after"`
	RegistrationWindow  time.Duration `yaml:"registration_window"`
	MaxICPCProblems     int           `yaml:"max_icpc_problems"`
	PersistTimeout      time.Duration `yaml:"persist_timeout"`
	// PointTable maps a rating bracket (rating/100 - 8) to challenge points.
	PointTable []int `yaml:"point_table"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	LogLevel       string `yaml:"log_level"`
	Environment    string `yaml:"environment"`
}

// DefaultPointTable is the challenge reward per 100-rating bracket starting at 800.
var DefaultPointTable = []int{
	1, 2, 3, 3, 4, 4, 6, 8, 8, 10, 11, 15, 20, 22,
	27, 35, 40, 49, 57, 75, 90, 103, 119, 137, 154, 170, 188, 200,
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
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
	if v := os.Getenv("JUDGE_BASE_URL"); v != "" {
		cfg.Judge.BaseURL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("COMMAND_PREFIX"); v != "" {
		cfg.Engine.CommandPrefix = v
	}
	if v := os.Getenv("JUDGE_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid JUDGE_RATE_PER_SECOND value: %w", err)
		}
		cfg.Judge.RatePerSecond = f
	}
	if v := os.Getenv("RANDOMIZE_CONSTANT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RANDOMIZE_CONSTANT value: %w", err)
		}
		cfg.Engine.RandomizeConstant = f
	}
	if v := os.Getenv("DEFAULT_RATING"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_RATING value: %w", err)
		}
		cfg.Engine.DefaultRating = n
	}
	if v := os.Getenv("DUEL_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DUEL_DURATION value: %w", err)
		}
		cfg.Engine.DuelDuration = d
	}
	if v := os.Getenv("ACCEPT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ACCEPT_WINDOW value: %w", err)
		}
		cfg.Engine.AcceptWindow = d
	}
	return nil
}

// Validate rejects tunables that defaults cannot repair.
func (c *Config) Validate() error {
	alpha := c.Engine.RandomizeConstant
	if !(alpha > 0) || math.IsInf(alpha, 1) {
		return fmt.Errorf("randomize_constant must be a positive number, got %v", alpha)
	}
	return nil
}

// ApplyDefaults fills every unset tunable.
func (c *Config) ApplyDefaults() {
	if c.Judge.BaseURL == "" {
		c.Judge.BaseURL = "https://codeforces.com/api"
	}
	if c.Judge.ProblemBaseURL == "" {
		c.Judge.ProblemBaseURL = "https://codeforces.com"
	}
	if c.Judge.Timeout == 0 {
		c.Judge.Timeout = 10 * time.Second
	}
	if c.Judge.RatePerSecond == 0 {
		c.Judge.RatePerSecond = 5
	}
	if c.Judge.Burst == 0 {
		c.Judge.Burst = 1
	}
	if c.Judge.BreakerFailures == 0 {
		c.Judge.BreakerFailures = 5
	}
	if c.Judge.BreakerCooldown == 0 {
		c.Judge.BreakerCooldown = 30 * time.Second
	}
	if c.Redis.CatalogTTL == 0 {
		c.Redis.CatalogTTL = time.Hour
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	c.Engine.applyDefaults()
}

func (e *EngineConfig) applyDefaults() {
	if e.CommandPrefix == "" {
		e.CommandPrefix = "~"
	}
	if e.AcceptWindow == 0 {
		e.AcceptWindow = 30 * time.Second
	}
	if e.DuelDuration == 0 {
		e.DuelDuration = 90 * time.Minute
	}
	if e.LockoutDuration == 0 {
		e.LockoutDuration = 90 * time.Minute
	}
	if e.MaxLockoutDuration == 0 {
		e.MaxLockoutDuration = 6 * time.Hour
	}
	if e.DefaultRating == 0 {
		e.DefaultRating = 1000
	}
	if e.MinRating == 0 {
		e.MinRating = 800
	}
	if e.MaxRating == 0 {
		e.MaxRating = 3500
	}
	if e.DefaultProblemCount == 0 {
		e.DefaultProblemCount = 5
	}
	if e.MaxProblemCount == 0 {
		e.MaxProblemCount = 10
	}
	if e.DefaultIncrement == 0 {
		e.DefaultIncrement = 100
	}
	if e.RandomizeConstant == 0 {
		e.RandomizeConstant = 2.0
	}
	if e.SubmissionLimit == 0 {
		e.SubmissionLimit = 10000
	}
	if e.ChallengeSkipAfter == 0 {
		e.ChallengeSkipAfter = 30 * time.Minute
	}
	if e.RegistrationWindow == 0 {
		e.RegistrationWindow = 60 * time.Second
	}
	if e.MaxICPCProblems == 0 {
		e.MaxICPCProblems = 20
	}
	if e.PersistTimeout == 0 {
		e.PersistTimeout = 5 * time.Second
	}
	if len(e.PointTable) == 0 {
		e.PointTable = append([]int(nil), DefaultPointTable...)
	}
}

// DefaultEngineConfig returns an EngineConfig with every tunable set.
func DefaultEngineConfig() EngineConfig {
	var e EngineConfig
	e.applyDefaults()
	return e
}
