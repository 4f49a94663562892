package hist

import (
	"fmt"
	"maps"
	"slices"
)

// cell is the content of one non-empty bin.
type cell struct {
	sumw float64
	n    int64
}

// Cell is an exported view of one non-empty bin.
type Cell struct {
	Index   uint64
	Bins    []int
	Sum     float64
	Entries int64
}

// Histogram is a sparse N-dimensional histogram bound to a Template.
// Not safe for concurrent use.
type Histogram struct {
	tmpl    *Template
	cells   map[uint64]cell
	entries int64
	dropped int64
}

// New creates an empty histogram sharing tmpl.
func New(tmpl *Template) *Histogram {
	return &Histogram{
		tmpl:  tmpl,
		cells: make(map[uint64]cell),
	}
}

// Template returns the shared axis template.
func (h *Histogram) Template() *Template {
	return h.tmpl
}

// Find maps a sample to per-axis bins.
// ok is false when the sample has the wrong dimension or any coordinate is
// out of range.
func (h *Histogram) Find(x []float64) (bins []int, ok bool) {
	if len(x) != len(h.tmpl.axes) {
		return nil, false
	}
	bins = make([]int, len(x))
	for i, v := range x {
		b, in := h.tmpl.axes[i].FindBin(v)
		if !in {
			return nil, false
		}
		bins[i] = b
	}
	return bins, true
}

// Fill adds weight to the bin addressed by x.
// Returns false and counts the sample in Dropped() when it is out of range.
func (h *Histogram) Fill(x []float64, weight float64) bool {
	bins, ok := h.Find(x)
	if !ok {
		h.dropped++
		return false
	}
	idx := h.tmpl.index(bins)
	c := h.cells[idx]
	c.sumw += weight
	c.n++
	h.cells[idx] = c
	h.entries++
	return true
}

// BinContent returns the sum of weights in the bin addressed by bins.
// Out-of-range bins return 0.
func (h *Histogram) BinContent(bins ...int) float64 {
	idx, ok := h.checkedIndex(bins)
	if !ok {
		return 0
	}
	return h.cells[idx].sumw
}

// BinEntries returns the number of fills in the bin addressed by bins.
func (h *Histogram) BinEntries(bins ...int) int64 {
	idx, ok := h.checkedIndex(bins)
	if !ok {
		return 0
	}
	return h.cells[idx].n
}

func (h *Histogram) checkedIndex(bins []int) (uint64, bool) {
	if len(bins) != len(h.tmpl.axes) {
		return 0, false
	}
	for i, b := range bins {
		if b < 0 || b >= h.tmpl.axes[i].bins {
			return 0, false
		}
	}
	return h.tmpl.index(bins), true
}

// Entries returns the number of accepted fills.
func (h *Histogram) Entries() int64 {
	return h.entries
}

// Dropped returns the number of out-of-range samples.
func (h *Histogram) Dropped() int64 {
	return h.dropped
}

// Sum returns the total weight over all bins.
func (h *Histogram) Sum() float64 {
	var s float64
	for _, idx := range h.sortedIndices() {
		s += h.cells[idx].sumw
	}
	return s
}

// Len returns the number of non-empty bins.
func (h *Histogram) Len() int {
	return len(h.cells)
}

// Cells returns the non-empty bins ordered by linear index.
func (h *Histogram) Cells() []Cell {
	out := make([]Cell, 0, len(h.cells))
	for _, idx := range h.sortedIndices() {
		c := h.cells[idx]
		out = append(out, Cell{Index: idx, Bins: h.tmpl.unindex(idx), Sum: c.sumw, Entries: c.n})
	}
	return out
}

// AddCell adds stored content to the bin at a linear index. Used to restore
// persisted histograms.
func (h *Histogram) AddCell(index uint64, sum float64, entries int64) error {
	if index >= h.tmpl.total {
		return fmt.Errorf("bin index %d out of range (%d bins)", index, h.tmpl.total)
	}
	if entries < 0 {
		return fmt.Errorf("bin index %d: negative entries %d", index, entries)
	}
	c := h.cells[index]
	c.sumw += sum
	c.n += entries
	h.cells[index] = c
	h.entries += entries
	return nil
}

// AddDropped adds to the out-of-range counter. Used when restoring.
func (h *Histogram) AddDropped(n int64) {
	h.dropped += n
}

// Merge adds other's content into h.
// Returns ErrAxisMismatch, leaving h untouched, when the templates differ.
func (h *Histogram) Merge(other *Histogram) error {
	if other == nil {
		return nil
	}
	if !h.tmpl.Equal(other.tmpl) {
		return fmt.Errorf("merge histograms: %w", ErrAxisMismatch)
	}
	for idx, oc := range other.cells {
		c := h.cells[idx]
		c.sumw += oc.sumw
		c.n += oc.n
		h.cells[idx] = c
	}
	h.entries += other.entries
	h.dropped += other.dropped
	return nil
}

// Range restricts an axis to the bins containing Min and Max, inclusive.
// Bounds given in either order select the same bins.
type Range struct {
	Axis int
	Min  float64
	Max  float64
}

// Project returns the 1-D marginal along axis, summing over every other
// axis. Ranges restrict the summed-over axes. ok is false when the
// projection has no entries.
func (h *Histogram) Project(axis int, ranges ...Range) (*Histogram, bool) {
	if axis < 0 || axis >= len(h.tmpl.axes) {
		return nil, false
	}

	type window struct{ lo, hi int }
	windows := make(map[int]window, len(ranges))
	for _, r := range ranges {
		if r.Axis < 0 || r.Axis >= len(h.tmpl.axes) {
			continue
		}
		a := h.tmpl.axes[r.Axis]
		lo, hi := a.clampBin(r.Min), a.clampBin(r.Max)
		if lo > hi {
			lo, hi = hi, lo
		}
		windows[r.Axis] = window{lo: lo, hi: hi}
	}

	proj := New(MustTemplate(h.tmpl.axes[axis]))
	for _, idx := range h.sortedIndices() {
		bins := h.tmpl.unindex(idx)
		inside := true
		for ax, w := range windows {
			if bins[ax] < w.lo || bins[ax] > w.hi {
				inside = false
				break
			}
		}
		if !inside {
			continue
		}
		c := h.cells[idx]
		if err := proj.AddCell(uint64(bins[axis]), c.sumw, c.n); err != nil {
			// Unreachable: bins[axis] is within the axis by construction.
			panic(err)
		}
	}

	if proj.entries == 0 {
		return nil, false
	}
	return proj, true
}

// Integral sums the weights of every bin whose coordinate on axis lies in
// [lo, hi] (0-based bins, inclusive).
func (h *Histogram) Integral(axis, lo, hi int) float64 {
	if axis < 0 || axis >= len(h.tmpl.axes) {
		return 0
	}
	var s float64
	for _, idx := range h.sortedIndices() {
		b := h.tmpl.unindex(idx)[axis]
		if b >= lo && b <= hi {
			s += h.cells[idx].sumw
		}
	}
	return s
}

// Clone returns a deep copy sharing the same template.
func (h *Histogram) Clone() *Histogram {
	return &Histogram{
		tmpl:    h.tmpl,
		cells:   maps.Clone(h.cells),
		entries: h.entries,
		dropped: h.dropped,
	}
}

// Equal reports bin-by-bin equality with matching templates and counters.
func (h *Histogram) Equal(other *Histogram) bool {
	if other == nil || !h.tmpl.Equal(other.tmpl) {
		return false
	}
	return h.entries == other.entries &&
		h.dropped == other.dropped &&
		maps.Equal(h.cells, other.cells)
}

// EstimateSize approximates the memory footprint in bytes.
func (h *Histogram) EstimateSize() int64 {
	const perCell = 8 + 16 + 16 // key, value, map overhead
	return 64 + int64(len(h.cells))*perCell
}

// sortedIndices gives a deterministic iteration order, so float sums do not
// depend on map order.
func (h *Histogram) sortedIndices() []uint64 {
	return slices.Sorted(maps.Keys(h.cells))
}
