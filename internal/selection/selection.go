// Package selection decides which events, tracks and pairs enter the
// analysis.
//
// Authority is the interface the pipeline consumes; Cuts is the
// configuration-driven implementation.
package selection

import (
	"log/slog"
	"strings"

	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/event"
)

// Authority answers selection questions for the pipeline.
type Authority interface {
	// IsEventSelected reports whether the event enters the analysis.
	IsEventSelected(ev *event.Event) bool

	// Triggers returns the output labels of the fired trigger classes, in
	// configuration order.
	Triggers(ev *event.Event) []string

	// Centrality returns the event's centrality percentile.
	Centrality(ev *event.Event) float64

	// AcceptTrack reports whether a reconstructed track is selected.
	AcceptTrack(p *event.Particle) bool

	// PairMatchesTrigger reports whether the pair satisfies the trigger
	// pT cut of the class labelled trigger.
	PairMatchesTrigger(trigger string, a, b *event.Particle) bool
}

// RunNotifier is implemented by authorities with run-dependent settings.
// NotifyRun is called before the first event of each new run.
type RunNotifier interface {
	NotifyRun(run int)
}

// Truth acceptance of generated muons.
const (
	GeneratedEtaMin    = -4.0
	GeneratedEtaMax    = -2.5
	GeneratedMaxStatus = 10
)

// AcceptGenerated reports whether a generated particle is a muon produced
// by the generator inside the spectrometer acceptance.
func AcceptGenerated(p *event.Particle) bool {
	if p.PDG != 13 && p.PDG != -13 {
		return false
	}
	if p.Status >= GeneratedMaxStatus {
		return false
	}
	eta := p.Eta()
	return eta > GeneratedEtaMin && eta < GeneratedEtaMax
}

// Cuts is the configuration-driven Authority.
type Cuts struct {
	physicsSelection bool
	baseTriggers     []config.TriggerClass
	baseTracks       config.TrackCuts
	overrides        []config.RunOverride

	triggers []config.TriggerClass
	tracks   config.TrackCuts
	byLabel  map[string]config.TriggerClass
	run      int
	logger   *slog.Logger
}

// NewCuts builds Cuts from a validated configuration.
func NewCuts(cfg config.Config, logger *slog.Logger) *Cuts {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cuts{
		physicsSelection: cfg.PhysicsSelection,
		baseTriggers:     cfg.Triggers,
		baseTracks:       cfg.Tracks,
		overrides:        cfg.RunOverrides,
		run:              -1,
		logger:           logger,
	}
	c.apply(c.baseTriggers, c.baseTracks)
	return c
}

func (c *Cuts) apply(triggers []config.TriggerClass, tracks config.TrackCuts) {
	c.triggers = triggers
	c.tracks = tracks
	c.byLabel = make(map[string]config.TriggerClass, len(triggers))
	for _, t := range triggers {
		c.byLabel[t.OutputLabel()] = t
	}
}

// NotifyRun switches to the settings of the first override containing run,
// or back to the base settings.
func (c *Cuts) NotifyRun(run int) {
	if run == c.run {
		return
	}
	c.run = run

	triggers, tracks := c.baseTriggers, c.baseTracks
	override := -1
	for i, o := range c.overrides {
		if !o.Contains(run) {
			continue
		}
		override = i
		if len(o.Triggers) > 0 {
			triggers = o.Triggers
		}
		if o.Tracks != nil {
			tracks = *o.Tracks
		}
		break
	}
	c.apply(triggers, tracks)
	c.logger.Info("run configuration",
		"run", run,
		"override", override,
		"triggers", len(triggers),
		"eta_min", tracks.EtaMin,
		"eta_max", tracks.EtaMax)
}

// IsEventSelected requires physics selection, when configured, and at
// least one fired trigger class.
func (c *Cuts) IsEventSelected(ev *event.Event) bool {
	if c.physicsSelection && !ev.PhysicsSelected {
		return false
	}
	return len(c.Triggers(ev)) > 0
}

// Triggers returns the labels of the configured classes that fired.
func (c *Cuts) Triggers(ev *event.Event) []string {
	var out []string
	for _, t := range c.triggers {
		for _, fired := range ev.Triggers {
			if classMatches(t.Name, fired) {
				out = append(out, t.OutputLabel())
				break
			}
		}
	}
	return out
}

// classMatches reports whether fired is the class name, optionally
// followed by a "-" suffix.
func classMatches(name, fired string) bool {
	rest, ok := strings.CutPrefix(fired, name)
	return ok && (rest == "" || rest[0] == '-')
}

// Centrality returns the event's centrality percentile.
func (c *Cuts) Centrality(ev *event.Event) float64 {
	return ev.Centrality
}

// AcceptTrack applies the pseudorapidity, pT and trigger-match cuts.
func (c *Cuts) AcceptTrack(p *event.Particle) bool {
	eta := p.Eta()
	if !(eta > c.tracks.EtaMin && eta < c.tracks.EtaMax) {
		return false
	}
	if p.Pt() < c.tracks.PtMin {
		return false
	}
	return p.Match >= c.tracks.MinMatch
}

// PairMatchesTrigger checks the trigger pT cut: both muons for dimuon
// classes, at least one otherwise. Unknown labels never match.
func (c *Cuts) PairMatchesTrigger(trigger string, a, b *event.Particle) bool {
	t, ok := c.byLabel[trigger]
	if !ok {
		return false
	}
	okA, okB := a.Match >= t.PtCut, b.Match >= t.PtCut
	if t.Dimuon {
		return okA && okB
	}
	return okA || okB
}

var (
	_ Authority   = (*Cuts)(nil)
	_ RunNotifier = (*Cuts)(nil)
)
