// Package classify assigns a particle pair to its categorical bins: the
// pair-origin label from a Resolver and the charge-sign combination.
//
// Classification is symmetric: Classify(a, b) and Classify(b, a) always
// produce the same Pair.
package classify

import (
	"strings"

	"github.com/roach88/dimu/internal/event"
)

// Charge-sign labels.
const (
	SameSign     = "SS"
	OppositeSign = "OS"
)

// Charge returns SameSign when the product of the charges is non-negative,
// OppositeSign otherwise. Neutral particles are therefore same-sign.
func Charge(a, b *event.Particle) string {
	if a.Charge*b.Charge >= 0 {
		return SameSign
	}
	return OppositeSign
}

// Resolver answers provenance questions about selected particles.
// Implementations must be symmetric in CommonAncestor and PairType.
type Resolver interface {
	ParticleType(sel *event.Selected, mc *event.MCStack) event.ParticleType
	History(sel *event.Selected, mc *event.MCStack) string
	CommonAncestor(a, b *event.Selected, mc *event.MCStack) int
	PairType(typeA, typeB event.ParticleType, ancestor int, mc *event.MCStack) string
}

// AllowList restricts the pair types that are recorded. The zero value
// admits everything.
type AllowList struct {
	names []string
}

// ParseAllowList splits a comma-delimited list, trimming spaces around
// each entry and dropping empty entries.
func ParseAllowList(s string) AllowList {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return AllowList{names: names}
}

// NewAllowList builds an allow-list from explicit entries.
func NewAllowList(names ...string) AllowList {
	return ParseAllowList(strings.Join(names, ","))
}

// Allows reports whether pairType is admitted. Matching is by whole
// entry, so "JPsi" does not admit "JPsiFromB".
func (l AllowList) Allows(pairType string) bool {
	if len(l.names) == 0 {
		return true
	}
	for _, n := range l.names {
		if n == pairType {
			return true
		}
	}
	return false
}

// Empty reports whether the list admits everything.
func (l AllowList) Empty() bool {
	return len(l.names) == 0
}

// Names returns the entries in input order.
func (l AllowList) Names() []string {
	return append([]string(nil), l.names...)
}

// String renders the list as it would be parsed, "all particles" when
// empty.
func (l AllowList) String() string {
	if len(l.names) == 0 {
		return "all particles"
	}
	return strings.Join(l.names, ",")
}

// Pair is the classification of one unordered pair.
type Pair struct {
	Type     string
	Charge   string
	Ancestor int
}

// Classifier combines a Resolver with an AllowList.
type Classifier struct {
	resolver Resolver
	allow    AllowList
}

// New returns a Classifier. The zero AllowList admits everything.
func New(resolver Resolver, allow AllowList) *Classifier {
	return &Classifier{resolver: resolver, allow: allow}
}

// Classify returns the pair classification. ok is false when the pair
// type is filtered out by the allow-list.
func (c *Classifier) Classify(a, b *event.Selected, mc *event.MCStack) (Pair, bool) {
	ancestor := c.resolver.CommonAncestor(a, b, mc)
	p := Pair{
		Type:     c.resolver.PairType(a.Type, b.Type, ancestor, mc),
		Charge:   Charge(a.Particle, b.Particle),
		Ancestor: ancestor,
	}
	if !c.allow.Allows(p.Type) {
		return p, false
	}
	return p, true
}

// AllowList returns the configured allow-list.
func (c *Classifier) AllowList() AllowList {
	return c.allow
}
