package pipeline

import "github.com/roach88/dimu/internal/config"

// State is the position of a Processor in its per-event cycle.
type State int

const (
	StateIdle State = iota
	StateSelection
	StatePairing
	StateDispatch
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelection:
		return "selection"
	case StatePairing:
		return "pairing"
	case StateDispatch:
		return "dispatch"
	}
	return "unknown"
}

// Pass is one traversal of an event's particles.
type Pass struct {
	Name string

	// Generated passes read the simulation truth instead of reconstructed
	// tracks.
	Generated bool
}

// GeneratedLabel is the trigger label of the generated pass.
const GeneratedLabel = config.GeneratedLabel

var (
	PassReconstructed = Pass{Name: "reconstructed"}
	PassGenerated     = Pass{Name: "generated", Generated: true}
)

// passesFor lists the passes run over ev, reconstructed first.
func passesFor(hasMC bool) []Pass {
	if hasMC {
		return []Pass{PassReconstructed, PassGenerated}
	}
	return []Pass{PassReconstructed}
}
