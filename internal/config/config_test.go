package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-lab/internal/domain"
)

func TestLoadTuning_MissingFileUsesDefaults(t *testing.T) {
	tuning, err := LoadTuning(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tuning)
}

func TestLoadTuning_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lotto.toml")
	content := `
[weights]
frequency = 40.0
trend = 20.0
absence = 10.0
hotness = 30.0

[backtest]
combos_per_round = 5
workers = 2

[optimizer]
threshold = 4
schedule = ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, domain.WeightConfiguration{Frequency: 40, Trend: 20, Absence: 10, Hotness: 30}, tuning.Weights)
	assert.Equal(t, 5, tuning.Backtest.CombosPerRound)
	assert.Equal(t, 2, tuning.Backtest.Workers)
	assert.Equal(t, 4, tuning.Optimizer.Threshold)
	assert.Empty(t, tuning.Optimizer.Schedule)
	assert.Equal(t, DefaultTuning().Bounds, tuning.Bounds, "untouched sections keep defaults")
	assert.Equal(t, int64(1000), tuning.Backtest.Prizes.UnitCost)
}

func TestLoadTuning_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad strategy":  "[optimizer]\nstrategy = \"lucky\"\n",
		"bad threshold": "[optimizer]\nthreshold = 7\n",
		"bad cron":      "[optimizer]\nschedule = \"every saturday\"\n",
		"bad bounds":    "[bounds.trend]\nmin = 50.0\nmax = 10.0\n",
		"zero combos":   "[backtest]\ncombos_per_round = 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lotto.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := LoadTuning(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveTuning_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	want := DefaultTuning()
	want.Optimizer.Trials = 50

	require.NoError(t, SaveTuning(path, want))
	got, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOTTO_CACHE_DIR", dir)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LOTTO_TUNING_FILE", filepath.Join(dir, "none.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.CacheDir)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.True(t, cfg.LogPretty)
	assert.NotNil(t, cfg.Tuning)
}

func TestLoad_BadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")
	t.Setenv("LOTTO_TUNING_FILE", filepath.Join(t.TempDir(), "none.toml"))

	_, err := Load()
	assert.Error(t, err)
}
