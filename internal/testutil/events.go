package testutil

import (
	"math"

	"github.com/roach88/dimu/internal/cascade"
	"github.com/roach88/dimu/internal/event"
)

// Muon returns a reconstructed muon with the given transverse momentum,
// pseudorapidity, azimuth and charge. It is trigger matched at the
// high-pT level and has no MC label.
func Muon(pt, eta, phi float64, charge int) event.Particle {
	return event.Particle{
		Px:     pt * math.Cos(phi),
		Py:     pt * math.Sin(phi),
		Pz:     pt * math.Sinh(eta),
		Charge: charge,
		Mother: -1,
		Label:  -1,
		Match:  event.MatchHighPt,
	}
}

// Generated returns a generated particle with the given species, mother
// and kinematics. Status is 1 (final state).
func Generated(pdg, mother int, pt, eta, phi float64) event.Particle {
	p := Muon(pt, eta, phi, 0)
	if pdg == 13 || pdg == -13 {
		p.Charge = -pdg / 13
	}
	p.PDG = pdg
	p.Status = 1
	p.Mother = mother
	p.Match = event.MatchNone
	return p
}

// EventBuilder assembles events for tests.
//
// Events start physics selected, at 10% centrality, without triggers.
type EventBuilder struct {
	ev event.Event
}

// NewEvent starts an event.
func NewEvent(run, number int) *EventBuilder {
	return &EventBuilder{ev: event.Event{
		Run:             run,
		Number:          number,
		PhysicsSelected: true,
		Centrality:      10,
	}}
}

// Triggers sets the fired trigger classes.
func (b *EventBuilder) Triggers(names ...string) *EventBuilder {
	b.ev.Triggers = append(b.ev.Triggers, names...)
	return b
}

// Rejected clears the physics-selection flag.
func (b *EventBuilder) Rejected() *EventBuilder {
	b.ev.PhysicsSelected = false
	return b
}

// Centrality sets the centrality percentile.
func (b *EventBuilder) Centrality(c float64) *EventBuilder {
	b.ev.Centrality = c
	return b
}

// Tracks appends reconstructed tracks.
func (b *EventBuilder) Tracks(tracks ...event.Particle) *EventBuilder {
	b.ev.Tracks = append(b.ev.Tracks, tracks...)
	return b
}

// Tracklets sets the multiplicity measurement.
func (b *EventBuilder) Tracklets(hits ...cascade.Hit) *EventBuilder {
	b.ev.Multiplicity = &event.Multiplicity{Tracklets: hits}
	return b
}

// MC attaches a simulation truth stack.
func (b *EventBuilder) MC(particles ...event.Particle) *EventBuilder {
	b.ev.MC = &event.MCStack{Particles: particles}
	return b
}

// Build returns a copy of the assembled event.
func (b *EventBuilder) Build() *event.Event {
	ev := b.ev
	return &ev
}

// DimuonEvent returns a selected event with one opposite-sign muon pair
// fired on trigger.
func DimuonEvent(run, number int, trigger string) *event.Event {
	return NewEvent(run, number).
		Triggers(trigger).
		Tracks(Muon(2, -3, 0.5, 1), Muon(3, -3.2, 3, -1)).
		Build()
}
