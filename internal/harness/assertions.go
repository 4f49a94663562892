package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/ir"
	"github.com/roach88/dimu/internal/pipeline"
)

// weightTolerance absorbs summation-order differences between merge
// strategies.
const weightTolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

func evaluate(coll *collection.Collection, a Assertion) error {
	switch a.Type {
	case AssertCounter:
		return assertCounter(coll, a)
	case AssertWeight:
		return assertWeight(coll, a)
	case AssertPaths:
		return assertPaths(coll, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func parsePath(s string) (ir.Path, error) {
	p, err := ir.ParsePath(s)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", s, err)
	}
	return p, nil
}

// assertCounter checks the value of one counter. A missing counter reads
// as zero, so `value: 0` also passes when nothing was counted.
func assertCounter(coll *collection.Collection, a Assertion) error {
	path, err := parsePath(a.Path)
	if err != nil {
		return err
	}
	name := a.Name
	if name == "" {
		name = pipeline.ObjectEvents
	}

	var got int64
	if c, ok := coll.Counter(path, name); ok {
		got = c.Value()
	}
	if got != *a.Value {
		return &AssertionError{
			Type:     AssertCounter,
			Expected: fmt.Sprintf("%s/%s = %d", a.Path, name, *a.Value),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

// assertWeight checks the content of one bin, or of the whole histogram.
func assertWeight(coll *collection.Collection, a Assertion) error {
	path, err := parsePath(a.Path)
	if err != nil {
		return err
	}
	name := a.Name
	if name == "" {
		name = pipeline.ObjectSparse
	}
	where := a.Path + "/" + name

	h, ok := coll.Histogram(path, name)
	if !ok {
		return &AssertionError{Type: AssertWeight, Expected: "histogram " + where, Actual: "none"}
	}

	sum, entries := h.Sum(), h.Entries()
	if len(a.X) > 0 {
		bins, ok := h.Find(a.X)
		if !ok {
			return fmt.Errorf("sample %v is outside %s", a.X, where)
		}
		sum, entries = h.BinContent(bins...), h.BinEntries(bins...)
		where = fmt.Sprintf("%s bin %v", where, bins)
	}

	if a.Weight != nil && math.Abs(sum-*a.Weight) > weightTolerance {
		return &AssertionError{
			Type:     AssertWeight,
			Expected: fmt.Sprintf("weight %g in %s", *a.Weight, where),
			Actual:   fmt.Sprintf("%g", sum),
		}
	}
	if a.Entries != nil && entries != *a.Entries {
		return &AssertionError{
			Type:     AssertWeight,
			Expected: fmt.Sprintf("%d entries in %s", *a.Entries, where),
			Actual:   fmt.Sprintf("%d", entries),
		}
	}
	return nil
}

// assertPaths compares the object paths with the expected set.
func assertPaths(coll *collection.Collection, a Assertion) error {
	want := make([]string, 0, len(a.Paths))
	for _, s := range a.Paths {
		p, err := parsePath(s)
		if err != nil {
			return err
		}
		want = append(want, p.String())
	}
	slices.Sort(want)
	want = slices.Compact(want)

	var got []string
	for _, p := range coll.Paths() {
		got = append(got, p.String())
	}
	slices.Sort(got)

	if !slices.Equal(want, got) {
		return &AssertionError{
			Type:     AssertPaths,
			Expected: "[" + strings.Join(want, ", ") + "]",
			Actual:   "[" + strings.Join(got, ", ") + "]",
		}
	}
	return nil
}
