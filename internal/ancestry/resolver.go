// Package ancestry derives particle provenance from the simulation truth:
// the source category of a muon, the nearest common ancestor of two
// particles, and the category of a pair.
//
// Real data carry no truth; every query then answers "unidentified".
package ancestry

import (
	"fmt"
	"strings"

	"github.com/roach88/dimu/internal/event"
)

// maxDepth bounds mother-chain walks so a malformed stack cannot loop.
const maxDepth = 64

// Resolver is the default provenance resolver. The zero value is ready to
// use and holds no state.
type Resolver struct{}

// New returns a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// chain returns the mother indices of label, nearest first. The walk stops
// at the first index that is not on the stack.
func chain(label int, mc *event.MCStack) []int {
	var out []int
	for m := mc.MotherOf(label); m >= 0 && mc.At(m) != nil && len(out) < maxDepth; m = mc.MotherOf(m) {
		out = append(out, m)
	}
	return out
}

// ParticleType classifies the source of a selected particle from its
// mother chain.
func (r *Resolver) ParticleType(sel *event.Selected, mc *event.MCStack) event.ParticleType {
	p := mc.At(sel.Label)
	if p == nil {
		return event.TypeUnidentified
	}
	if abs(p.PDG) != pdgMuon {
		return event.TypeHadron
	}

	mothers := chain(sel.Label, mc)
	if len(mothers) == 0 {
		return event.TypePrompt
	}
	if first := mc.At(mothers[0]).PDG; isLightHadron(first) && !isLightResonance(first) {
		return event.TypeDecay
	}

	charm := false
	for _, m := range mothers {
		pdg := mc.At(m).PDG
		switch {
		case abs(pdg) == pdgZ:
			return event.TypeZ
		case abs(pdg) == pdgW:
			return event.TypeW
		case isQuarkonium(pdg):
			return event.TypeQuarkonium
		case isLightResonance(pdg):
			return event.TypeLightResonance
		case heaviestQuark(pdg) == 5:
			return event.TypeBeauty
		case heaviestQuark(pdg) == 4:
			charm = true
		}
	}
	if charm {
		return event.TypeCharm
	}
	return event.TypePrompt
}

// History renders the mother chain as "pdg[index] <- pdg[index] ...".
func (r *Resolver) History(sel *event.Selected, mc *event.MCStack) string {
	p := mc.At(sel.Label)
	if p == nil {
		return "no MC"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d[%d]", p.PDG, sel.Label)
	for _, m := range chain(sel.Label, mc) {
		fmt.Fprintf(&b, " <- %d[%d]", mc.At(m).PDG, m)
	}
	return b.String()
}

// CommonAncestor returns the MC index of the nearest ancestor shared by a
// and b, or -1. The result does not depend on argument order.
func (r *Resolver) CommonAncestor(a, b *event.Selected, mc *event.MCStack) int {
	if mc.At(a.Label) == nil || mc.At(b.Label) == nil || a.Label == b.Label {
		return -1
	}
	ca, cb := chain(a.Label, mc), chain(b.Label, mc)
	depth := make(map[int]int, len(ca))
	for i, m := range ca {
		depth[m] = i
	}
	best, bestDepth := -1, -1
	for j, m := range cb {
		i, ok := depth[m]
		if !ok {
			continue
		}
		// Nearest by combined distance; ties go to the lower index.
		d := i + j
		if best < 0 || d < bestDepth || (d == bestDepth && m < best) {
			best, bestDepth = m, d
		}
	}
	return best
}

// PairType names the pair category: the resonance species when the two
// particles share a known ancestor, otherwise the two source types in a
// fixed order.
func (r *Resolver) PairType(typeA, typeB event.ParticleType, ancestor int, mc *event.MCStack) string {
	if mc == nil {
		return event.TypeUnidentified.String()
	}
	if typeA > typeB {
		typeA, typeB = typeB, typeA
	}
	combined := typeA.String() + "_" + typeB.String()

	anc := mc.At(ancestor)
	if anc == nil {
		return combined
	}
	pdg := abs(anc.PDG)
	switch {
	case pdg == pdgZ:
		return "Z"
	case pdg == pdgPhoton:
		return "DrellYan"
	}
	if name, ok := resonanceNames[pdg]; ok {
		return name
	}
	if isQuarkonium(pdg) {
		return "Quarkonium"
	}
	return "Correlated" + combined
}
