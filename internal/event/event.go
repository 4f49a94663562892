// Package event defines the raw per-event input of the pipeline: tracks,
// optional simulation truth and the auxiliary tracklet multiplicity.
package event

import (
	"github.com/roach88/dimu/internal/cascade"
)

// Trigger-match levels of a reconstructed track, ordered by strictness.
const (
	MatchNone = iota
	MatchAllPt
	MatchLowPt
	MatchHighPt
)

// Particle is a reconstructed track or a generated particle.
type Particle struct {
	Px     float64 `json:"px" yaml:"px"`
	Py     float64 `json:"py" yaml:"py"`
	Pz     float64 `json:"pz" yaml:"pz"`
	Charge int     `json:"charge" yaml:"charge"`

	// PDG is the particle species code. Zero for reconstructed tracks.
	PDG int `json:"pdg,omitempty" yaml:"pdg,omitempty"`

	// Status is the generator status code (generated particles only).
	Status int `json:"status,omitempty" yaml:"status,omitempty"`

	// Mother is the MC stack index of the mother, -1 for primaries.
	Mother int `json:"mother" yaml:"mother"`

	// Label is the MC stack index this particle corresponds to, -1 if none.
	Label int `json:"label" yaml:"label"`

	// Match is the trigger-match level (MatchNone..MatchHighPt).
	Match int `json:"match,omitempty" yaml:"match,omitempty"`
}

// MCStack holds the generated particles of a simulated event, indexed by
// their position.
type MCStack struct {
	Particles []Particle `json:"particles" yaml:"particles"`
}

// Len returns the number of generated particles; 0 for a nil stack.
func (s *MCStack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Particles)
}

// At returns the particle at index i, or nil when out of range.
func (s *MCStack) At(i int) *Particle {
	if s == nil || i < 0 || i >= len(s.Particles) {
		return nil
	}
	return &s.Particles[i]
}

// Multiplicity is the tracklet measurement of an event.
type Multiplicity struct {
	Tracklets []cascade.Hit `json:"tracklets" yaml:"tracklets"`
}

// Event is one collision.
type Event struct {
	Run    int `json:"run" yaml:"run"`
	Number int `json:"number" yaml:"number"`

	// Triggers are the fired trigger classes.
	Triggers []string `json:"triggers" yaml:"triggers"`

	// PhysicsSelected is the outcome of the offline physics selection.
	PhysicsSelected bool `json:"physics_selected" yaml:"physics_selected"`

	// Centrality is the multiplicity percentile of the event.
	Centrality float64 `json:"centrality" yaml:"centrality"`

	Tracks []Particle `json:"tracks" yaml:"tracks"`

	// MC is the simulation truth; nil for real data.
	MC *MCStack `json:"mc,omitempty" yaml:"mc,omitempty"`

	// Multiplicity is nil when the measurement is unavailable.
	Multiplicity *Multiplicity `json:"multiplicity,omitempty" yaml:"multiplicity,omitempty"`
}

// Hits returns the tracklet hits, or nil when there is no measurement.
func (e *Event) Hits() []cascade.Hit {
	if e.Multiplicity == nil {
		return nil
	}
	return e.Multiplicity.Tracklets
}

// MotherOf returns the mother index of the particle at label, -1 when the
// label is unknown, the particle is a primary, or its mother is not on the
// stack.
func (s *MCStack) MotherOf(label int) int {
	p := s.At(label)
	if p == nil || s.At(p.Mother) == nil {
		return -1
	}
	return p.Mother
}
