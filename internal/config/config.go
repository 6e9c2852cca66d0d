// Package config handles application configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/your-org/wave3-backtester/internal/indicator"
)

// Config defines the structure for all application configuration.
type Config struct {
	Symbol      string            `yaml:"symbol"`
	Interval    string            `yaml:"interval"`
	Strategy    StrategyConfig    `yaml:"strategy"`
	Filter      FilterConfig      `yaml:"filter"`
	Indicator   indicator.Config  `yaml:"indicator"`
	WalkForward WalkForwardConfig `yaml:"walk_forward"`
	DBWriter    DBWriterConfig    `yaml:"db_writer"`
	LogLevel    string            `yaml:"-"` // Loaded from env
	Database    DatabaseConfig    `yaml:"-"` // Loaded from env
}

// StrategyConfig holds the Wave3 rule parameters. Every constant the scoring
// rules depend on lives here, not inline in the scorer.
type StrategyConfig struct {
	EMAShortSpan       int         `yaml:"ema_short_span"`
	EMALongSpan        int         `yaml:"ema_long_span"`
	EntryZoneTolerance float64     `yaml:"entry_zone_tolerance"`
	MinQualityScore    float64     `yaml:"min_quality_score"`
	RiskRewardRatio    float64     `yaml:"risk_reward_ratio"`
	StopPct            float64     `yaml:"stop_pct"`
	MaxHoldingBars     int         `yaml:"max_holding_bars"`
	MomentumLookback   int         `yaml:"momentum_lookback"`
	Score              ScoreConfig `yaml:"score"`
}

// ScoreConfig holds the quality-score weights and caps. Each sub-score is
// normalized by its cap before weighting, so both can be tuned independently
// of the scoring algorithm.
type ScoreConfig struct {
	SeparationWeight float64 `yaml:"separation_weight"`
	MomentumWeight   float64 `yaml:"momentum_weight"`
	VolatilityWeight float64 `yaml:"volatility_weight"`
	SeparationCap    float64 `yaml:"separation_cap"`
	MomentumCap      float64 `yaml:"momentum_cap"`
	VolatilityCap    float64 `yaml:"volatility_cap"`
}

// FilterConfig holds the ML confidence-filter policy.
type FilterConfig struct {
	Mode      FilterMode `yaml:"mode"`
	Threshold float64    `yaml:"threshold"`
}

// WalkForwardConfig holds the fold layout for walk-forward evaluation.
type WalkForwardConfig struct {
	TrainDays   int `yaml:"train_days"`
	TestDays    int `yaml:"test_days"`
	StepDays    int `yaml:"step_days"`
	MinFolds    int `yaml:"min_folds"`
	MaxParallel int `yaml:"max_parallel"` // 0 means one worker per fold
}

// DBWriterConfig holds the batching parameters of the results writer.
type DBWriterConfig struct {
	BatchSize            int `yaml:"batch_size"`
	WriteIntervalSeconds int `yaml:"write_interval_seconds"`
}

// DatabaseConfig holds TimescaleDB connection settings, loaded from the
// environment only so credentials never land in the YAML file.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// URL assembles a pgx-compatible connection string.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Enabled reports whether enough settings are present to attempt a connection.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != "" && d.Name != ""
}

// defaultConfig returns the configuration used when the YAML file leaves a
// field unset.
func defaultConfig() *Config {
	return &Config{
		Symbol:   "BTCUSDT",
		Interval: "1d",
		Strategy: StrategyConfig{
			EMAShortSpan:       9,
			EMALongSpan:        21,
			EntryZoneTolerance: 0.01,
			MinQualityScore:    55,
			RiskRewardRatio:    3.0,
			StopPct:            0.06,
			MaxHoldingBars:     20,
			MomentumLookback:   5,
			Score: ScoreConfig{
				SeparationWeight: 0.40,
				MomentumWeight:   0.35,
				VolatilityWeight: 0.25,
				SeparationCap:    0.04,
				MomentumCap:      0.05,
				VolatilityCap:    0.03,
			},
		},
		Filter: FilterConfig{
			Mode:      FilterModePositive,
			Threshold: 0.55,
		},
		Indicator: indicator.DefaultConfig(),
		WalkForward: WalkForwardConfig{
			TrainDays: 90,
			TestDays:  30,
			StepDays:  30,
			MinFolds:  2,
		},
		DBWriter: DBWriterConfig{
			BatchSize:            0, // persistence disabled unless configured
			WriteIntervalSeconds: 1,
		},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}

	// Load sensitive data and overrides from environment variables
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	cfg.Database = DatabaseConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with. It runs once
// at load time so the components themselves can trust their inputs.
func (c *Config) Validate() error {
	s := c.Strategy
	if s.EMAShortSpan <= 0 || s.EMALongSpan <= 0 {
		return fmt.Errorf("ema spans must be positive (short=%d long=%d)", s.EMAShortSpan, s.EMALongSpan)
	}
	if s.EMAShortSpan >= s.EMALongSpan {
		return fmt.Errorf("ema_short_span %d must be below ema_long_span %d", s.EMAShortSpan, s.EMALongSpan)
	}
	if s.EntryZoneTolerance <= 0 {
		return fmt.Errorf("entry_zone_tolerance must be positive, got %v", s.EntryZoneTolerance)
	}
	if s.MinQualityScore < 0 || s.MinQualityScore > 100 {
		return fmt.Errorf("min_quality_score must be in [0,100], got %v", s.MinQualityScore)
	}
	if s.RiskRewardRatio <= 0 {
		return fmt.Errorf("risk_reward_ratio must be positive, got %v", s.RiskRewardRatio)
	}
	if s.StopPct <= 0 || s.StopPct >= 1 {
		return fmt.Errorf("stop_pct must be in (0,1), got %v", s.StopPct)
	}
	if s.MaxHoldingBars <= 0 {
		return fmt.Errorf("max_holding_bars must be positive, got %d", s.MaxHoldingBars)
	}
	if s.MomentumLookback <= 0 {
		return fmt.Errorf("momentum_lookback must be positive, got %d", s.MomentumLookback)
	}
	// The scorer looks up its EMA lines by span, so a strategy span the
	// indicator engine never computes would silently produce zero signals.
	for _, span := range []int{s.EMAShortSpan, s.EMALongSpan} {
		if !containsInt(c.Indicator.EMASpans, span) {
			return fmt.Errorf("strategy ema span %d is missing from indicator.ema_spans %v", span, c.Indicator.EMASpans)
		}
	}
	sc := s.Score
	if sc.SeparationWeight < 0 || sc.MomentumWeight < 0 || sc.VolatilityWeight < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}
	if sc.SeparationWeight+sc.MomentumWeight+sc.VolatilityWeight == 0 {
		return fmt.Errorf("at least one score weight must be positive")
	}
	if sc.SeparationCap <= 0 || sc.MomentumCap <= 0 || sc.VolatilityCap <= 0 {
		return fmt.Errorf("score caps must be positive")
	}
	if c.Filter.Threshold < 0 || c.Filter.Threshold > 1 {
		return fmt.Errorf("filter threshold must be in [0,1], got %v", c.Filter.Threshold)
	}
	wf := c.WalkForward
	if wf.TrainDays <= 0 || wf.TestDays <= 0 || wf.StepDays <= 0 {
		return fmt.Errorf("walk-forward windows must be positive (train=%d test=%d step=%d)",
			wf.TrainDays, wf.TestDays, wf.StepDays)
	}
	return nil
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
