package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/ir"
)

// Summary renders the aggregate as canonical JSON: one entry per object,
// in key order, with its kind and totals. Bin contents are summarised by
// the number of non-empty bins.
func Summary(name string, coll *collection.Collection) ([]byte, error) {
	objects := ir.IRArray{}
	for _, e := range coll.Entries() {
		entry := ir.IRObject{
			"key":  ir.IRString(e.Key.String()),
			"kind": ir.IRString(e.Object.Kind().String()),
		}
		switch e.Object.Kind() {
		case collection.KindCounter:
			entry["count"] = ir.IRInt(e.Object.Counter().Value())
		case collection.KindHistogram:
			h := e.Object.Histogram()
			entry["bins"] = ir.IRInt(h.Len())
			entry["entries"] = ir.IRInt(h.Entries())
			entry["dropped"] = ir.IRInt(h.Dropped())
			entry["sum"] = ir.IRFloat(h.Sum())
		}
		objects = append(objects, entry)
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario_name": ir.IRString(name),
		"objects":       objects,
	})
}

// RunWithGolden executes a scenario and compares its summary against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot execute. Failed assertions and
// golden mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	for _, e := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, e)
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result with its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Summary(scenarioName, result.Collection)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
