package hist

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/roach88/dimu/internal/ir"
)

// ErrAxisMismatch is returned when histograms with different templates are
// combined.
var ErrAxisMismatch = errors.New("axis template mismatch")

// Template is an immutable, shareable set of axes.
type Template struct {
	axes    []Axis
	strides []uint64
	total   uint64
}

// NewTemplate builds a template. At least one axis is required and the total
// number of bins must fit in a uint64.
func NewTemplate(axes ...Axis) (*Template, error) {
	if len(axes) == 0 {
		return nil, errors.New("template needs at least one axis")
	}

	t := &Template{
		axes:    make([]Axis, len(axes)),
		strides: make([]uint64, len(axes)),
	}
	copy(t.axes, axes)

	total := uint64(1)
	for i := len(axes) - 1; i >= 0; i-- {
		if axes[i].bins <= 0 {
			return nil, fmt.Errorf("axis %d (%q) is not initialised", i, axes[i].name)
		}
		t.strides[i] = total
		hi, lo := bits.Mul64(total, uint64(axes[i].bins))
		if hi != 0 || lo > math.MaxInt64 {
			return nil, fmt.Errorf("template has too many bins")
		}
		total = lo
	}
	t.total = total
	return t, nil
}

// MustTemplate is like NewTemplate but panics on error.
func MustTemplate(axes ...Axis) *Template {
	t, err := NewTemplate(axes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Dims returns the number of axes.
func (t *Template) Dims() int {
	return len(t.axes)
}

// Axis returns axis i.
func (t *Template) Axis(i int) Axis {
	return t.axes[i]
}

// TotalBins returns the product of all bin counts.
func (t *Template) TotalBins() uint64 {
	return t.total
}

// Equal reports whether both templates have the same bin counts and edges
// on every axis.
func (t *Template) Equal(other *Template) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || len(t.axes) != len(other.axes) {
		return false
	}
	for i := range t.axes {
		if !t.axes[i].equal(other.axes[i]) {
			return false
		}
	}
	return true
}

// Snapshot returns the canonical description of the template.
func (t *Template) Snapshot() ir.IRArray {
	axes := make(ir.IRArray, len(t.axes))
	for i, a := range t.axes {
		axes[i] = ir.IRObject{
			"name": ir.IRString(a.name),
			"unit": ir.IRString(a.unit),
			"bins": ir.IRInt(a.bins),
			"min":  ir.IRFloat(a.min),
			"max":  ir.IRFloat(a.max),
		}
	}
	return axes
}

// Digest returns a content hash of the template, stable across processes.
func (t *Template) Digest() string {
	return ir.MustDigest(ir.DomainTemplate, t.Snapshot())
}

// index converts per-axis bins to the linear index.
func (t *Template) index(bins []int) uint64 {
	var idx uint64
	for i, b := range bins {
		idx += uint64(b) * t.strides[i]
	}
	return idx
}

// unindex converts a linear index to per-axis bins.
func (t *Template) unindex(idx uint64) []int {
	bins := make([]int, len(t.axes))
	for i := range t.axes {
		bins[i] = int(idx / t.strides[i])
		idx %= t.strides[i]
	}
	return bins
}
