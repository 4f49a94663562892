package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/hist"
	"github.com/roach88/dimu/internal/ir"
)

const fixedTime = "2026-01-02T03:04:05Z"

// createTestStore creates a store in a temporary directory with
// deterministic ids and timestamps.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	if len(ids) == 0 {
		ids = []string{"run-1", "run-2", "run-3"}
	}
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(NewFixedGenerator(ids...)),
		WithClock(func() string { return fixedTime }),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTemplate = hist.MustTemplate(
	hist.MustAxis("p_{T}", "GeV/c", 10, 0, 10),
	hist.MustAxis("M_{#mu#mu}", "GeV/c^{2}", 30, 0, 15),
)

func testFactory(name string) (collection.Object, error) {
	switch name {
	case "DimuSparse":
		return collection.HistogramObject(hist.New(testTemplate)), nil
	case "nevents":
		return collection.CounterObject(nil), nil
	}
	return collection.Object{}, collection.ErrUnknownObject
}

// createTestCollection fills a small collection with two trigger paths.
func createTestCollection(t *testing.T) *collection.Collection {
	t.Helper()
	c := collection.New()
	for i, trig := range []string{"CMUL7", "CINT7"} {
		sparse := ir.MustPath(trig, "trackletDistCuts_none", "signal", "OS")
		obj, _, err := c.Resolve(sparse, "DimuSparse", testFactory)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		h := obj.Histogram()
		h.Fill([]float64{1.5, 3.1}, 1)
		h.Fill([]float64{2.5 + float64(i), 9.4}, 0.5)
		h.Fill([]float64{50, 3.1}, 1) // out of range

		events := ir.MustPath(trig)
		obj, _, err = c.Resolve(events, "nevents", testFactory)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		obj.Counter().Add(int64(10 + i))
	}
	return c
}
