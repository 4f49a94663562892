package hist

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Axis is one bounded, uniformly binned dimension.
type Axis struct {
	name  string
	unit  string
	bins  int
	min   float64
	max   float64
	edges []float64
}

// NewAxis builds an axis with bins uniform bins over [min, max).
func NewAxis(name, unit string, bins int, min, max float64) (Axis, error) {
	if bins <= 0 {
		return Axis{}, fmt.Errorf("axis %q: bin count must be positive, got %d", name, bins)
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return Axis{}, fmt.Errorf("axis %q: bounds must be finite", name)
	}
	if !(min < max) {
		return Axis{}, fmt.Errorf("axis %q: lower bound %g must be below upper bound %g", name, min, max)
	}

	edges := make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		edges[i] = min + float64(i)*(max-min)/float64(bins)
	}
	edges[bins] = max

	return Axis{name: name, unit: unit, bins: bins, min: min, max: max, edges: edges}, nil
}

// MustAxis is like NewAxis but panics on error.
func MustAxis(name, unit string, bins int, min, max float64) Axis {
	a, err := NewAxis(name, unit, bins, min, max)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Axis) Name() string { return a.name }
func (a Axis) Unit() string { return a.unit }
func (a Axis) Bins() int    { return a.bins }
func (a Axis) Min() float64 { return a.min }
func (a Axis) Max() float64 { return a.max }

// Edges returns a copy of the bins+1 bin edges.
func (a Axis) Edges() []float64 {
	return slices.Clone(a.edges)
}

// Title renders "name (unit)", or just the name when there is no unit.
func (a Axis) Title() string {
	return strings.ReplaceAll(fmt.Sprintf("%s (%s)", a.name, a.unit), " ()", "")
}

// FindBin returns the 0-based bin containing x.
// ok is false when x is outside [min, max) or NaN.
func (a Axis) FindBin(x float64) (bin int, ok bool) {
	if math.IsNaN(x) || x < a.min || x >= a.max {
		return 0, false
	}
	bin = int((x - a.min) / (a.max - a.min) * float64(a.bins))
	// Guard against rounding at the edges.
	if bin >= a.bins {
		bin = a.bins - 1
	}
	if bin > 0 && x < a.edges[bin] {
		bin--
	}
	if bin < a.bins-1 && x >= a.edges[bin+1] {
		bin++
	}
	return bin, true
}

// BinCenter returns the midpoint of bin.
func (a Axis) BinCenter(bin int) float64 {
	return 0.5 * (a.edges[bin] + a.edges[bin+1])
}

// BinLowEdge returns the lower edge of bin.
func (a Axis) BinLowEdge(bin int) float64 {
	return a.edges[bin]
}

// BinUpEdge returns the upper edge of bin.
func (a Axis) BinUpEdge(bin int) float64 {
	return a.edges[bin+1]
}

// clampBin returns the bin containing x, clamped into the axis range.
func (a Axis) clampBin(x float64) int {
	if bin, ok := a.FindBin(x); ok {
		return bin
	}
	if x < a.min {
		return 0
	}
	return a.bins - 1
}

// equal compares bin counts and edges. Names and units are labels only.
func (a Axis) equal(b Axis) bool {
	return a.bins == b.bins && slices.Equal(a.edges, b.edges)
}
