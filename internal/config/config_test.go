package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/event"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.WorkerCount())
	assert.Equal(t, 0, cfg.NormalizedThresholds().Len())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "cfg.yaml", `
thresholds: [0.5, 2, 0.5]
allow_list: "JPsi, Psi2S"
workers: 4
triggers:
  - name: CMUL7
    label: dimuon
    pt_cut: 2
    dimuon: true
run_overrides:
  - first_run: 100
    last_run: 200
    tracks:
      eta_min: -3.9
      eta_max: -2.6
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 0.5}, cfg.NormalizedThresholds().Values())
	assert.Equal(t, "JPsi, Psi2S", cfg.AllowList)
	assert.Equal(t, 4, cfg.WorkerCount())
	require.Len(t, cfg.Triggers, 1)
	assert.Equal(t, "dimuon", cfg.Triggers[0].OutputLabel())
	assert.Equal(t, event.MatchLowPt, cfg.Triggers[0].PtCut)
	require.Len(t, cfg.RunOverrides, 1)
	assert.True(t, cfg.RunOverrides[0].Contains(150))
	assert.False(t, cfg.RunOverrides[0].Contains(201))

	// Unset fields keep their defaults.
	assert.Equal(t, "V0M", cfg.CentralityEstimator)
	assert.Equal(t, Window{Min: 60, Max: 120}, cfg.MassWindow)
	assert.True(t, cfg.PhysicsSelection)
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "threshold: [1]\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadEmptyYAMLGivesDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadCUE(t *testing.T) {
	path := writeFile(t, "cfg.cue", `
thresholds: [1.0, 3.0]
allow_list: "JPsi"
triggers: [{name: "CMSL7", pt_cut: 2, dimuon: false}]
workers: 2 * 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, cfg.NormalizedThresholds().Values())
	assert.Equal(t, 6, cfg.Workers)
	require.Len(t, cfg.Triggers, 1)
	assert.Equal(t, "CMSL7", cfg.Triggers[0].Name)
}

func TestLoadCUEReportsPosition(t *testing.T) {
	path := writeFile(t, "bad.cue", "workers: int\n")
	_, err := Load(path)
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "cue", cerr.Field)
	assert.True(t, cerr.Pos.IsValid())
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "cfg.toml", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no triggers", func(c *Config) { c.Triggers = nil }, "triggers"},
		{"empty trigger name", func(c *Config) { c.Triggers[0].Name = "" }, "triggers[0].name"},
		{"bad label", func(c *Config) { c.Triggers[0].Label = "a/b" }, "triggers[0].label"},
		{"reserved label", func(c *Config) { c.Triggers[2].Label = GeneratedLabel }, "triggers[2].label"},
		{"reserved name", func(c *Config) { c.Triggers[0].Name = "generated" }, "triggers[0].label"},
		{"reserved override label", func(c *Config) {
			c.RunOverrides = []RunOverride{{FirstRun: 1, LastRun: 2, Triggers: []TriggerClass{{Name: "CMUL7", Label: "generated"}}}}
		}, "run_overrides[0].triggers[0].label"},
		{"duplicate label", func(c *Config) { c.Triggers[1].Label = "CINT7" }, "triggers[1].label"},
		{"pt cut range", func(c *Config) { c.Triggers[0].PtCut = 4 }, "triggers[0].pt_cut"},
		{"eta order", func(c *Config) { c.Tracks.EtaMin = -2 }, "tracks.eta_min"},
		{"negative pt", func(c *Config) { c.Tracks.PtMin = -1 }, "tracks.pt_min"},
		{"override range", func(c *Config) { c.RunOverrides = []RunOverride{{FirstRun: 5, LastRun: 1}} }, "run_overrides[0]"},
		{"rapidity", func(c *Config) { c.Rapidity = Window{Min: -2, Max: -4} }, "rapidity"},
		{"mass window", func(c *Config) { c.MassWindow = Window{} }, "mass_window"},
		{"workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"estimator", func(c *Config) { c.CentralityEstimator = "" }, "centrality_estimator"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
}

func TestDigestIgnoresThresholdOrderAndWorkers(t *testing.T) {
	a := Default()
	a.Thresholds = []float64{1, 2, 2}
	b := Default()
	b.Thresholds = []float64{2, 1}
	b.Workers = 8

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)

	b.AllowList = "JPsi"
	dc, err := b.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, dc)
}
