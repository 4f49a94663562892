package collection

import (
	"github.com/roach88/dimu/internal/hist"
	"github.com/roach88/dimu/internal/ir"
)

// Kind is the variant tag of an Object.
type Kind int

const (
	KindInvalid Kind = iota
	KindHistogram
	KindCounter
)

// String returns the kind name used in snapshots and storage.
func (k Kind) String() string {
	switch k {
	case KindHistogram:
		return "histogram"
	case KindCounter:
		return "counter"
	}
	return "invalid"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) Kind {
	switch s {
	case "histogram":
		return KindHistogram
	case "counter":
		return KindCounter
	}
	return KindInvalid
}

// Counter is a mergeable event counter.
type Counter struct {
	n int64
}

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) {
	c.n += delta
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return c.n
}

// Merge adds other's count.
func (c *Counter) Merge(other *Counter) {
	if other != nil {
		c.n += other.n
	}
}

// Object is a mergeable leaf of a collection: a histogram or a counter.
// The zero Object is invalid.
type Object struct {
	kind    Kind
	hist    *hist.Histogram
	counter *Counter
}

// HistogramObject wraps a histogram.
func HistogramObject(h *hist.Histogram) Object {
	return Object{kind: KindHistogram, hist: h}
}

// CounterObject wraps a counter. A nil counter is replaced by a zero one.
func CounterObject(c *Counter) Object {
	if c == nil {
		c = &Counter{}
	}
	return Object{kind: KindCounter, counter: c}
}

// Kind returns the variant tag.
func (o Object) Kind() Kind {
	return o.kind
}

// Histogram returns the histogram, or nil for other kinds.
func (o Object) Histogram() *hist.Histogram {
	return o.hist
}

// Counter returns the counter, or nil for other kinds.
func (o Object) Counter() *Counter {
	return o.counter
}

// Valid reports whether the object carries a payload for its kind.
func (o Object) Valid() bool {
	switch o.kind {
	case KindHistogram:
		return o.hist != nil
	case KindCounter:
		return o.counter != nil
	}
	return false
}

func (o Object) merge(key string, other Object) error {
	if o.kind != other.kind {
		return newError(ErrCodeKindMismatch, key, "cannot merge "+other.kind.String()+" into "+o.kind.String())
	}
	switch o.kind {
	case KindHistogram:
		if err := o.hist.Merge(other.hist); err != nil {
			return newError(ErrCodeAxisMismatch, key, err.Error())
		}
	case KindCounter:
		o.counter.Merge(other.counter)
	}
	return nil
}

func (o Object) clone() Object {
	switch o.kind {
	case KindHistogram:
		return HistogramObject(o.hist.Clone())
	case KindCounter:
		return CounterObject(&Counter{n: o.counter.n})
	}
	return o
}

func (o Object) estimateSize() int64 {
	switch o.kind {
	case KindHistogram:
		return o.hist.EstimateSize()
	case KindCounter:
		return 16
	}
	return 0
}

func (o Object) equal(other Object) bool {
	if o.kind != other.kind {
		return false
	}
	switch o.kind {
	case KindHistogram:
		return o.hist.Equal(other.hist)
	case KindCounter:
		return o.counter.n == other.counter.n
	}
	return true
}

// snapshot returns the canonical form of the object. Histogram cells are
// [index, sum, entries] triples in index order.
func (o Object) snapshot() ir.IRObject {
	obj := ir.IRObject{"kind": ir.IRString(o.kind.String())}
	switch o.kind {
	case KindHistogram:
		cells := o.hist.Cells()
		arr := make(ir.IRArray, len(cells))
		for i, c := range cells {
			arr[i] = ir.IRArray{ir.IRInt(c.Index), ir.IRFloat(c.Sum), ir.IRInt(c.Entries)}
		}
		obj["template"] = ir.IRString(o.hist.Template().Digest())
		obj["entries"] = ir.IRInt(o.hist.Entries())
		obj["dropped"] = ir.IRInt(o.hist.Dropped())
		obj["cells"] = arr
	case KindCounter:
		obj["count"] = ir.IRInt(o.counter.n)
	}
	return obj
}
