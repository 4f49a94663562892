package testutil

import (
	"slices"

	"github.com/roach88/dimu/internal/event"
)

// StubAuthority selects every event, reports a fixed trigger list and
// accepts every track and pair.
//
// Rejected event numbers are not selected.
type StubAuthority struct {
	Labels   []string
	Rejected []int

	// Runs records NotifyRun calls in order.
	Runs []int
}

func (a *StubAuthority) IsEventSelected(ev *event.Event) bool {
	return !slices.Contains(a.Rejected, ev.Number)
}

func (a *StubAuthority) Triggers(*event.Event) []string {
	return a.Labels
}

func (a *StubAuthority) Centrality(ev *event.Event) float64 {
	return ev.Centrality
}

func (a *StubAuthority) AcceptTrack(*event.Particle) bool {
	return true
}

func (a *StubAuthority) PairMatchesTrigger(string, *event.Particle, *event.Particle) bool {
	return true
}

func (a *StubAuthority) NotifyRun(run int) {
	a.Runs = append(a.Runs, run)
}

// FixedResolver labels every pair with Label and every particle as prompt.
type FixedResolver struct {
	Label string
}

func (r FixedResolver) ParticleType(*event.Selected, *event.MCStack) event.ParticleType {
	return event.TypePrompt
}

func (r FixedResolver) History(*event.Selected, *event.MCStack) string {
	return "fixed"
}

func (r FixedResolver) CommonAncestor(_, _ *event.Selected, _ *event.MCStack) int {
	return -1
}

func (r FixedResolver) PairType(event.ParticleType, event.ParticleType, int, *event.MCStack) string {
	return r.Label
}
