package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/cargoplan/internal/engine"
	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds placement settings.
type EngineConfig struct {
	Algorithm       string        `mapstructure:"algorithm"`
	SupportFraction float64       `mapstructure:"support_fraction"`
	Epsilon         float64       `mapstructure:"epsilon"`
	Genetic         GeneticConfig `mapstructure:"genetic"`
}

// GeneticConfig tunes the ordering search. A zero population lets the engine
// size the search to the manifest.
type GeneticConfig struct {
	Population     int     `mapstructure:"population"`
	Generations    int     `mapstructure:"generations"`
	MutationRate   float64 `mapstructure:"mutation_rate"`
	TournamentSize int     `mapstructure:"tournament_size"`
	Elite          int     `mapstructure:"elite"`
	Seed           int64   `mapstructure:"seed"`
}

// ThresholdsConfig holds advisor limits in percent or score points.
type ThresholdsConfig struct {
	OverloadPercent       float64 `mapstructure:"overload_percent"`
	NearLimitPercent      float64 `mapstructure:"near_limit_percent"`
	WeightWarningPercent  float64 `mapstructure:"weight_warning_percent"`
	StabilityFloor        float64 `mapstructure:"stability_floor"`
	LateralStabilityFloor float64 `mapstructure:"lateral_stability_floor"`
	UtilizationFloor      float64 `mapstructure:"utilization_floor"`
}

// CatalogConfig points at the container catalog file. An empty path uses the
// built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// DefaultsConfig holds values used when a command does not name them.
type DefaultsConfig struct {
	Container  string  `mapstructure:"container"`
	FillFactor float64 `mapstructure:"fill_factor"`
}

// DefaultConfigDir returns the default directory for configuration: ~/.cargoplan
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cargoplan")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LoadDefaultConfig loads DefaultConfigPath when it exists and falls back to
// built-in defaults when it does not.
func LoadDefaultConfig() (*Config, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return LoadConfig("")
	}
	return LoadConfig(path)
}

// LoadConfig loads configuration from file and environment. An empty path
// means defaults and environment only; a named file must exist and parse.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	defaults := model.DefaultPackSettings()
	th := model.DefaultThresholds()
	ga := engine.DefaultGeneticConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("engine.algorithm", string(defaults.Algorithm))
	v.SetDefault("engine.support_fraction", defaults.SupportFraction)
	v.SetDefault("engine.epsilon", defaults.Epsilon)
	v.SetDefault("engine.genetic.population", 0)
	v.SetDefault("engine.genetic.generations", ga.Generations)
	v.SetDefault("engine.genetic.mutation_rate", ga.MutationRate)
	v.SetDefault("engine.genetic.tournament_size", ga.TournamentSize)
	v.SetDefault("engine.genetic.elite", ga.EliteCount)
	v.SetDefault("engine.genetic.seed", ga.Seed)
	v.SetDefault("thresholds.overload_percent", th.OverloadPercent)
	v.SetDefault("thresholds.near_limit_percent", th.NearLimitPercent)
	v.SetDefault("thresholds.weight_warning_percent", th.WeightWarningPercent)
	v.SetDefault("thresholds.stability_floor", th.StabilityFloor)
	v.SetDefault("thresholds.lateral_stability_floor", th.LateralStabilityFloor)
	v.SetDefault("thresholds.utilization_floor", th.UtilizationFloor)
	v.SetDefault("catalog.path", "")
	v.SetDefault("defaults.container", "dry-van-53")
	v.SetDefault("defaults.fill_factor", 85.0)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("CARGOPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch model.Algorithm(strings.ToLower(cfg.Engine.Algorithm)) {
	case model.AlgorithmGreedy, model.AlgorithmGenetic:
		cfg.Engine.Algorithm = strings.ToLower(cfg.Engine.Algorithm)
	default:
		return nil, fmt.Errorf("unknown engine.algorithm %q", cfg.Engine.Algorithm)
	}

	return &cfg, nil
}

// PackSettings converts the engine section for the optimizer.
func (c *Config) PackSettings() model.PackSettings {
	return model.PackSettings{
		Algorithm:       model.Algorithm(c.Engine.Algorithm),
		SupportFraction: c.Engine.SupportFraction,
		Epsilon:         c.Engine.Epsilon,
	}
}

// Optimizer builds an optimizer from the engine section.
func (c *Config) Optimizer() *engine.Optimizer {
	o := engine.New(c.PackSettings())
	g := c.Engine.Genetic
	o.Genetic = engine.GeneticConfig{
		PopulationSize: g.Population,
		Generations:    g.Generations,
		MutationRate:   g.MutationRate,
		TournamentSize: g.TournamentSize,
		EliteCount:     g.Elite,
		Seed:           g.Seed,
	}
	return o
}

// ThresholdSet converts the thresholds section for the advisor.
func (c *Config) ThresholdSet() model.Thresholds {
	t := c.Thresholds
	return model.Thresholds{
		OverloadPercent:       t.OverloadPercent,
		NearLimitPercent:      t.NearLimitPercent,
		WeightWarningPercent:  t.WeightWarningPercent,
		StabilityFloor:        t.StabilityFloor,
		LateralStabilityFloor: t.LateralStabilityFloor,
		UtilizationFloor:      t.UtilizationFloor,
	}
}

// SetupLogger creates a logger with the configured level and format.
// Output goes to w so command output on stdout stays parseable.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
