package project

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/cargoplan/internal/engine"
	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv removes CARGOPLAN_* variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "CARGOPLAN_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, model.DefaultPackSettings(), cfg.PackSettings())
	assert.Equal(t, model.DefaultThresholds(), cfg.ThresholdSet())
	assert.Equal(t, "", cfg.Catalog.Path)
	assert.Equal(t, "dry-van-53", cfg.Defaults.Container)
	assert.Equal(t, 85.0, cfg.Defaults.FillFactor)
	assert.Equal(t, int64(42), cfg.Engine.Genetic.Seed)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
log:
  level: debug
  format: json
engine:
  algorithm: Genetic
  support_fraction: 0.8
  genetic:
    population: 12
    generations: 5
thresholds:
  overload_percent: 95
  lateral_stability_floor: 60
  utilization_floor: 40
catalog:
  path: /etc/cargoplan/containers.yaml
defaults:
  container: reefer-53
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, model.AlgorithmGenetic, cfg.PackSettings().Algorithm)
	assert.Equal(t, 0.8, cfg.PackSettings().SupportFraction)
	assert.Equal(t, 95.0, cfg.ThresholdSet().OverloadPercent)
	assert.Equal(t, 80.0, cfg.ThresholdSet().NearLimitPercent)
	assert.Equal(t, 60.0, cfg.ThresholdSet().LateralStabilityFloor)
	assert.Equal(t, 40.0, cfg.ThresholdSet().UtilizationFloor)
	assert.Equal(t, "/etc/cargoplan/containers.yaml", cfg.Catalog.Path)
	assert.Equal(t, "reefer-53", cfg.Defaults.Container)

	o := cfg.Optimizer()
	assert.Equal(t, 12, o.Genetic.PopulationSize)
	assert.Equal(t, 5, o.Genetic.Generations)
	assert.Equal(t, engine.DefaultGeneticConfig().TournamentSize, o.Genetic.TournamentSize)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("CARGOPLAN_LOG_LEVEL", "warn")
	t.Setenv("CARGOPLAN_ENGINE_ALGORITHM", "genetic")
	t.Setenv("CARGOPLAN_THRESHOLDS_STABILITY_FLOOR", "55")
	t.Setenv("CARGOPLAN_DEFAULTS_CONTAINER", "container-40")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, model.AlgorithmGenetic, cfg.PackSettings().Algorithm)
	assert.Equal(t, 55.0, cfg.ThresholdSet().StabilityFloor)
	assert.Equal(t, "container-40", cfg.Defaults.Container)
}

func TestLoadConfig_NamedFileMustExist(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.ErrorContains(t, err, "/nonexistent/path/config.yaml")
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.conf")
	require.NoError(t, os.WriteFile(path, []byte("log = debug"), 0644))

	_, err := LoadConfig(path)
	var unsupported viper.UnsupportedConfigError
	assert.ErrorAs(t, err, &unsupported)
}

func TestLoadDefaultConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadDefaultConfig()
	require.NoError(t, err, "missing default file falls back to defaults")
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".cargoplan"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".cargoplan", "config.yaml"), []byte("log:\n  level: error\n"), 0644))

	cfg, err = LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content: [[["), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_UnknownAlgorithm(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARGOPLAN_ENGINE_ALGORITHM", "simulated-annealing")

	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "simulated-annealing")
}

func TestSetupLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "json"}}, &buf)
	logger.Info("planned", "placed", 3)
	assert.Contains(t, buf.String(), `"placed":3`)

	buf.Reset()
	logger = SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "text"}}, &buf)
	logger.Info("planned", "placed", 3)
	assert.Contains(t, buf.String(), "placed=3")
}

func TestSetupLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&Config{Log: LogConfig{Level: "warn"}}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	// Unknown levels fall back to info.
	buf.Reset()
	logger = SetupLogger(&Config{Log: LogConfig{Level: "invalid"}}, &buf)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
