// Package config holds the analysis configuration: tracklet thresholds,
// pair-type allow-list, trigger classes, track cuts and their per-run
// overrides, and the inspection windows.
//
// Configurations are read from YAML or CUE files; both map onto the same
// Config struct.
package config

import (
	"fmt"
	"math"

	"github.com/roach88/dimu/internal/cascade"
	"github.com/roach88/dimu/internal/event"
	"github.com/roach88/dimu/internal/ir"
)

// Config is the full analysis configuration.
type Config struct {
	// Thresholds are the tracklet-distance cuts. Order and duplicates do
	// not matter; they are normalised before use.
	Thresholds []float64 `yaml:"thresholds" json:"thresholds"`

	// AllowList is a comma-delimited list of pair types to record. Empty
	// records every pair type.
	AllowList string `yaml:"allow_list" json:"allow_list"`

	// PhysicsSelection requires the offline physics-selection flag.
	PhysicsSelection bool `yaml:"physics_selection" json:"physics_selection"`

	// CentralityEstimator names the centrality axis.
	CentralityEstimator string `yaml:"centrality_estimator" json:"centrality_estimator"`

	Triggers []TriggerClass `yaml:"triggers" json:"triggers"`
	Tracks   TrackCuts      `yaml:"tracks" json:"tracks"`

	// RunOverrides replace the triggers and track cuts for run ranges.
	RunOverrides []RunOverride `yaml:"run_overrides" json:"run_overrides"`

	// Rapidity restricts projections in inspection reports.
	Rapidity Window `yaml:"rapidity" json:"rapidity"`

	// MassWindow is the invariant-mass range of the efficiency integral.
	MassWindow Window `yaml:"mass_window" json:"mass_window"`

	// Workers is the number of parallel processors. Zero means one.
	Workers int `yaml:"workers" json:"workers"`
}

// TriggerClass selects events by fired trigger class.
type TriggerClass struct {
	// Name is matched against the fired classes: "CMUL7" matches
	// "CMUL7" and "CMUL7-B-NOPF-MUFAST".
	Name string `yaml:"name" json:"name"`

	// Label is the output path segment. Defaults to Name.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// PtCut is the minimum trigger-match level a reconstructed muon needs
	// to count as having fired the trigger.
	PtCut int `yaml:"pt_cut" json:"pt_cut"`

	// Dimuon requires both muons of a pair to satisfy PtCut; otherwise one
	// is enough.
	Dimuon bool `yaml:"dimuon" json:"dimuon"`
}

// GeneratedLabel is the output label reserved for the generated pass. No
// trigger class may use it.
const GeneratedLabel = "generated"

// OutputLabel returns Label, or Name when Label is empty.
func (t TriggerClass) OutputLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Name
}

// TrackCuts select reconstructed tracks.
type TrackCuts struct {
	EtaMin   float64 `yaml:"eta_min" json:"eta_min"`
	EtaMax   float64 `yaml:"eta_max" json:"eta_max"`
	PtMin    float64 `yaml:"pt_min" json:"pt_min"`
	MinMatch int     `yaml:"min_match" json:"min_match"`
}

// RunOverride replaces the trigger classes and track cuts for runs in
// [FirstRun, LastRun].
type RunOverride struct {
	FirstRun int            `yaml:"first_run" json:"first_run"`
	LastRun  int            `yaml:"last_run" json:"last_run"`
	Triggers []TriggerClass `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Tracks   *TrackCuts     `yaml:"tracks,omitempty" json:"tracks,omitempty"`
}

// Contains reports whether run is in the override's range.
func (o RunOverride) Contains(run int) bool {
	return run >= o.FirstRun && run <= o.LastRun
}

// Window is an open interval (Min, Max).
type Window struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		PhysicsSelection:    true,
		CentralityEstimator: "V0M",
		Triggers: []TriggerClass{
			{Name: "CINT7", PtCut: event.MatchNone},
			{Name: "CMSL7", PtCut: event.MatchLowPt},
			{Name: "CMUL7", PtCut: event.MatchLowPt, Dimuon: true},
			{Name: "CMLL7", PtCut: event.MatchLowPt, Dimuon: true},
		},
		Tracks: TrackCuts{
			EtaMin:   -4,
			EtaMax:   -2.5,
			MinMatch: event.MatchNone,
		},
		Rapidity:   Window{Min: -3.999, Max: -2.501},
		MassWindow: Window{Min: 60, Max: 120},
		Workers:    1,
	}
}

// NormalizedThresholds returns the thresholds ready for counting.
func (c *Config) NormalizedThresholds() cascade.Thresholds {
	return cascade.Normalize(c.Thresholds)
}

// WorkerCount returns Workers, at least one.
func (c *Config) WorkerCount() int {
	return max(c.Workers, 1)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	for i, t := range c.Thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &Error{Field: fmt.Sprintf("thresholds[%d]", i), Message: "must be finite"}
		}
	}
	if c.CentralityEstimator == "" {
		return &Error{Field: "centrality_estimator", Message: "is required"}
	}
	if err := validateTriggers("triggers", c.Triggers, true); err != nil {
		return err
	}
	if err := validateTracks("tracks", c.Tracks); err != nil {
		return err
	}
	for i, o := range c.RunOverrides {
		field := fmt.Sprintf("run_overrides[%d]", i)
		if o.FirstRun > o.LastRun {
			return &Error{Field: field, Message: fmt.Sprintf("first_run %d after last_run %d", o.FirstRun, o.LastRun)}
		}
		if err := validateTriggers(field+".triggers", o.Triggers, false); err != nil {
			return err
		}
		if o.Tracks != nil {
			if err := validateTracks(field+".tracks", *o.Tracks); err != nil {
				return err
			}
		}
	}
	if c.Rapidity.Min >= c.Rapidity.Max {
		return &Error{Field: "rapidity", Message: "min must be below max"}
	}
	if c.MassWindow.Min >= c.MassWindow.Max {
		return &Error{Field: "mass_window", Message: "min must be below max"}
	}
	if c.Workers < 0 {
		return &Error{Field: "workers", Message: "must not be negative"}
	}
	return nil
}

func validateTriggers(field string, triggers []TriggerClass, required bool) error {
	if required && len(triggers) == 0 {
		return &Error{Field: field, Message: "at least one trigger class is required"}
	}
	labels := make(map[string]bool, len(triggers))
	for i, t := range triggers {
		f := fmt.Sprintf("%s[%d]", field, i)
		if t.Name == "" {
			return &Error{Field: f + ".name", Message: "is required"}
		}
		if _, err := ir.NewPath(t.OutputLabel()); err != nil {
			return &Error{Field: f + ".label", Message: err.Error()}
		}
		if t.OutputLabel() == GeneratedLabel {
			return &Error{Field: f + ".label", Message: fmt.Sprintf("label %q is reserved for the generated pass", GeneratedLabel)}
		}
		if t.PtCut < event.MatchNone || t.PtCut > event.MatchHighPt {
			return &Error{Field: f + ".pt_cut", Message: fmt.Sprintf("must be in [%d, %d]", event.MatchNone, event.MatchHighPt)}
		}
		if labels[t.OutputLabel()] {
			return &Error{Field: f + ".label", Message: fmt.Sprintf("duplicate label %q", t.OutputLabel())}
		}
		labels[t.OutputLabel()] = true
	}
	return nil
}

func validateTracks(field string, t TrackCuts) error {
	if t.EtaMin >= t.EtaMax {
		return &Error{Field: field + ".eta_min", Message: "must be below eta_max"}
	}
	if t.PtMin < 0 {
		return &Error{Field: field + ".pt_min", Message: "must not be negative"}
	}
	if t.MinMatch < event.MatchNone || t.MinMatch > event.MatchHighPt {
		return &Error{Field: field + ".min_match", Message: fmt.Sprintf("must be in [%d, %d]", event.MatchNone, event.MatchHighPt)}
	}
	return nil
}

// Digest returns a content hash of the effective configuration. Threshold
// order and duplicates do not change the digest.
func (c *Config) Digest() (string, error) {
	return ir.Digest(ir.DomainConfig, c.snapshot())
}

func (c *Config) snapshot() ir.IRObject {
	thresholds := make(ir.IRArray, 0, len(c.Thresholds))
	for _, t := range c.NormalizedThresholds().Values() {
		thresholds = append(thresholds, ir.IRFloat(t))
	}
	overrides := make(ir.IRArray, len(c.RunOverrides))
	for i, o := range c.RunOverrides {
		obj := ir.IRObject{
			"first_run": ir.IRInt(o.FirstRun),
			"last_run":  ir.IRInt(o.LastRun),
			"triggers":  triggersSnapshot(o.Triggers),
		}
		if o.Tracks != nil {
			obj["tracks"] = tracksSnapshot(*o.Tracks)
		}
		overrides[i] = obj
	}
	return ir.IRObject{
		"thresholds":           thresholds,
		"allow_list":           ir.IRString(c.AllowList),
		"physics_selection":    ir.IRBool(c.PhysicsSelection),
		"centrality_estimator": ir.IRString(c.CentralityEstimator),
		"triggers":             triggersSnapshot(c.Triggers),
		"tracks":               tracksSnapshot(c.Tracks),
		"run_overrides":        overrides,
		"rapidity":             windowSnapshot(c.Rapidity),
		"mass_window":          windowSnapshot(c.MassWindow),
	}
}

func triggersSnapshot(triggers []TriggerClass) ir.IRArray {
	arr := make(ir.IRArray, len(triggers))
	for i, t := range triggers {
		arr[i] = ir.IRObject{
			"name":   ir.IRString(t.Name),
			"label":  ir.IRString(t.OutputLabel()),
			"pt_cut": ir.IRInt(t.PtCut),
			"dimuon": ir.IRBool(t.Dimuon),
		}
	}
	return arr
}

func tracksSnapshot(t TrackCuts) ir.IRObject {
	return ir.IRObject{
		"eta_min":   ir.IRFloat(t.EtaMin),
		"eta_max":   ir.IRFloat(t.EtaMax),
		"pt_min":    ir.IRFloat(t.PtMin),
		"min_match": ir.IRInt(t.MinMatch),
	}
}

func windowSnapshot(w Window) ir.IRObject {
	return ir.IRObject{"min": ir.IRFloat(w.Min), "max": ir.IRFloat(w.Max)}
}
