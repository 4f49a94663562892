package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/ir"
	"github.com/roach88/dimu/internal/pipeline"
)

var factory = pipeline.ObjectFactory(pipeline.NewDimuonTemplate("V0M"))

func fillPair(t *testing.T, c *collection.Collection, trigger, typ string, y, mass, w float64) {
	t.Helper()
	p := ir.MustPath(trigger, "trackletDistCuts_none", typ, "OS")
	obj, _, err := c.Resolve(p, pipeline.ObjectSparse, factory)
	require.NoError(t, err)
	obj.Histogram().Fill([]float64{2, y, 1, mass, 15, 10}, w)
}

func countEvents(t *testing.T, c *collection.Collection, label string, n int64) {
	t.Helper()
	obj, _, err := c.Resolve(ir.MustPath(label), pipeline.ObjectEvents, factory)
	require.NoError(t, err)
	obj.Counter().Add(n)
}

func jpsiWindow() Options {
	return Options{
		Rapidity: config.Window{Min: -3.999, Max: -2.501},
		Mass:     config.Window{Min: 2.9, Max: 3.3},
	}
}

func TestBuildProjectsEveryAxis(t *testing.T) {
	c := collection.New()
	fillPair(t, c, "CMUL7", "JPsi", -3, 3.1, 1)

	r := Build(c, jpsiWindow())
	require.Len(t, r.Projections, 6)
	for i, p := range r.Projections {
		assert.Equal(t, i, p.Axis)
		assert.Equal(t, int64(1), p.Hist.Entries())
	}
	assert.Equal(t, "CMUL7_trackletDistCuts_none_OS_JPsi_proj3", r.Projections[pipeline.AxisMass].Name())
	assert.Equal(t, "M_{#mu#mu} (GeV/c^{2})", r.Projections[pipeline.AxisMass].Title)
}

func TestBuildDiscardsEmptyProjections(t *testing.T) {
	c := collection.New()
	// Outside the rapidity window: every projection is empty.
	fillPair(t, c, "CMUL7", "JPsi", -4.2, 3.1, 1)

	r := Build(c, jpsiWindow())
	assert.Empty(t, r.Projections)
	assert.Empty(t, r.Efficiencies)
}

func TestBuildRapidityWindowFilters(t *testing.T) {
	c := collection.New()
	fillPair(t, c, "CMUL7", "JPsi", -3, 3.1, 1)
	fillPair(t, c, "CMUL7", "JPsi", -4.2, 3.1, 1)

	r := Build(c, jpsiWindow())
	require.NotEmpty(t, r.Projections)
	assert.Equal(t, int64(1), r.Projections[0].Hist.Entries())
}

func TestBuildEfficiency(t *testing.T) {
	c := collection.New()
	fillPair(t, c, "CMUL7", "JPsi", -3, 3.1, 1)
	fillPair(t, c, pipeline.GeneratedLabel, "JPsi", -3, 3.1, 1)
	fillPair(t, c, pipeline.GeneratedLabel, "JPsi", -3, 3.12, 1)
	fillPair(t, c, pipeline.GeneratedLabel, "JPsi", -3, 5, 1) // outside the window

	r := Build(c, jpsiWindow())
	require.Len(t, r.Efficiencies, 1)
	e := r.Efficiencies[0]
	assert.Equal(t, "CMUL7", e.Group.Trigger)
	assert.Equal(t, 1.0, e.Reconstructed)
	assert.Equal(t, 2.0, e.Generated)
	assert.Equal(t, 0.5, e.Ratio())
	assert.InDelta(t, 2.9, e.Low, 1e-9)
	assert.InDelta(t, 3.3, e.High, 1e-9)
}

func TestBuildEfficiencyWindowOutsideAxis(t *testing.T) {
	c := collection.New()
	fillPair(t, c, "CMUL7", "Z", -3, 3.1, 1)
	fillPair(t, c, pipeline.GeneratedLabel, "Z", -3, 3.1, 1)

	cfg := config.Default()
	r := Build(c, OptionsFrom(cfg))
	require.Len(t, r.Efficiencies, 1)
	e := r.Efficiencies[0]
	assert.Equal(t, 60.0, e.Low)
	assert.Equal(t, 120.0, e.High)
	assert.Zero(t, e.Generated)
	assert.Zero(t, e.Ratio())
}

func TestBuildEfficiencyNeedsGenerated(t *testing.T) {
	c := collection.New()
	fillPair(t, c, "CMUL7", "JPsi", -3, 3.1, 1)
	fillPair(t, c, pipeline.GeneratedLabel, "Upsilon1S", -3, 3.1, 1)

	r := Build(c, jpsiWindow())
	assert.Empty(t, r.Efficiencies, "no generated histogram for the same group")
}

func TestBuildEventCounts(t *testing.T) {
	c := collection.New()
	countEvents(t, c, "CMUL7", 4)
	countEvents(t, c, "CINT7", 9)

	r := Build(c, jpsiWindow())
	assert.Equal(t, []EventCount{{Label: "CINT7", Events: 9}, {Label: "CMUL7", Events: 4}}, r.Events)
}

func TestWriteText(t *testing.T) {
	c := collection.New()
	countEvents(t, c, "CMUL7", 1)
	fillPair(t, c, "CMUL7", "JPsi", -3, 3.1, 1)
	fillPair(t, c, pipeline.GeneratedLabel, "JPsi", -3, 3.1, 1)

	var buf bytes.Buffer
	require.NoError(t, Build(c, jpsiWindow()).WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "CMUL7")
	assert.Contains(t, out, "CMUL7_trackletDistCuts_none_OS_JPsi_proj0")
	assert.Contains(t, out, "Eff for CMUL7_trackletDistCuts_none_OS_JPsi in (")
	assert.Contains(t, out, "): 1 / 1 = 1")
}

func TestWriteTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build(collection.New(), jpsiWindow()).WriteText(&buf))
	assert.Contains(t, buf.String(), "(none)")
	assert.NotContains(t, buf.String(), "Efficiencies")
}

func TestReportJSON(t *testing.T) {
	c := collection.New()
	fillPair(t, c, "CMUL7", "JPsi", -3, 3.1, 1)
	fillPair(t, c, pipeline.GeneratedLabel, "JPsi", -3, 3.1, 2)

	data, err := json.Marshal(Build(c, jpsiWindow()))
	require.NoError(t, err)

	var decoded struct {
		Projections []struct {
			Name string `json:"name"`
			Bins []struct {
				Content float64 `json:"content"`
			} `json:"bins"`
		} `json:"projections"`
		Efficiencies []struct {
			Ratio float64 `json:"ratio"`
		} `json:"efficiencies"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Projections, 12)
	require.Len(t, decoded.Projections[0].Bins, 1)
	require.Len(t, decoded.Efficiencies, 1)
	assert.Equal(t, 0.5, decoded.Efficiencies[0].Ratio)
}
