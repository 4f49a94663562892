// Package cascade implements the cascading tracklet-distance cut counter.
//
// A set of distance thresholds is kept sorted from loosest (largest) to
// tightest (smallest). A hit passing a tighter cut necessarily passes every
// looser one, so the scan for a hit stops at the first threshold it fails.
// One extra unconditional slot counts every hit regardless of distance.
package cascade

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// AngularWindow is the maximum azimuthal distance between a pair and a hit
// for the hit to be counted.
const AngularWindow = math.Pi / 2

// LabelPrefix prefixes every cut-level label.
const LabelPrefix = "trackletDistCuts_"

// NoCutLabel is the label of the unconditional slot.
const NoCutLabel = LabelPrefix + "none"

// Hit is one entry of the auxiliary multiplicity measurement.
type Hit struct {
	Phi  float64 `json:"phi" yaml:"phi"`
	Dist float64 `json:"dist" yaml:"dist"`
}

// Thresholds is a normalised, strictly descending list of distance cuts.
// Build it with Normalize; the zero value is the empty list.
type Thresholds struct {
	values []float64
}

// Normalize sorts values descending and drops duplicates and NaNs.
func Normalize(values []float64) Thresholds {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	out = slices.Compact(out)
	return Thresholds{values: out}
}

// Values returns a copy of the thresholds, loosest first.
func (t Thresholds) Values() []float64 {
	return slices.Clone(t.values)
}

// Len returns the number of thresholds (excluding the unconditional slot).
func (t Thresholds) Len() int {
	return len(t.values)
}

// Slots returns the number of counting slots: one per threshold plus the
// unconditional slot.
func (t Thresholds) Slots() int {
	return len(t.values) + 1
}

// Passes reports, for each slot, whether distance d passes the cut.
// The last slot is the unconditional one and is always true.
func (t Thresholds) Passes(d float64) []bool {
	out := make([]bool, t.Slots())
	t.accumulate(d, func(slot int) { out[slot] = true })
	return out
}

// Count sums the per-slot passes of every hit within AngularWindow of phi.
// The returned slice always has Slots() entries.
func (t Thresholds) Count(phi float64, hits []Hit) []int {
	counts := make([]int, t.Slots())
	for _, h := range hits {
		if AngularDistance(phi, h.Phi) > AngularWindow {
			continue
		}
		t.accumulate(h.Dist, func(slot int) { counts[slot]++ })
	}
	return counts
}

// accumulate calls mark for every slot that d passes.
func (t Thresholds) accumulate(d float64, mark func(slot int)) {
	for i, cut := range t.values {
		// Sorted descending: failing this cut means failing all tighter ones.
		if d > cut {
			break
		}
		mark(i)
	}
	mark(len(t.values))
}

// Labels returns one label per slot, e.g. "trackletDistCuts_5",
// "trackletDistCuts_2", "trackletDistCuts_none".
func (t Thresholds) Labels() []string {
	labels := make([]string, 0, t.Slots())
	for _, v := range t.values {
		labels = append(labels, LabelPrefix+strconv.FormatFloat(v, 'g', -1, 64))
	}
	return append(labels, NoCutLabel)
}

// String renders the thresholds for logging; "none" when empty.
func (t Thresholds) String() string {
	if len(t.values) == 0 {
		return "none"
	}
	return fmt.Sprint(t.values)
}

// AngularDistance returns the absolute azimuthal separation of a and b,
// wrapped into [0, pi].
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
