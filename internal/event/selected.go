package event

// ParticleType is the provenance category of a selected particle.
type ParticleType int

const (
	TypeUnidentified ParticleType = iota
	TypeHadron
	TypeDecay
	TypePrompt
	TypeLightResonance
	TypeCharm
	TypeBeauty
	TypeQuarkonium
	TypeW
	TypeZ
)

var particleTypeNames = [...]string{
	TypeUnidentified:   "Unidentified",
	TypeHadron:         "Hadron",
	TypeDecay:          "DecayMu",
	TypePrompt:         "PromptMu",
	TypeLightResonance: "LMRMu",
	TypeCharm:          "CharmMu",
	TypeBeauty:         "BeautyMu",
	TypeQuarkonium:     "QuarkoniumMu",
	TypeW:              "WMu",
	TypeZ:              "ZMu",
}

// String returns the type name.
func (t ParticleType) String() string {
	if t < 0 || int(t) >= len(particleTypeNames) {
		return "Unknown"
	}
	return particleTypeNames[t]
}

// Selected is a particle accepted by a processing pass, annotated with its
// provenance. It lives for one pass of one event.
type Selected struct {
	Particle *Particle
	Type     ParticleType

	// Ancestor is the MC index of the particle's ancestor, -1 if none.
	Ancestor int

	// History is a human-readable provenance trail.
	History string

	// Index is the position of the particle in its source list.
	Index int

	// Label is the MC stack index used for ancestry: the track label on the
	// reconstructed pass, the particle's own index on the generated pass.
	Label int
}
