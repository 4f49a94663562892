package report

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/hist"
	"github.com/roach88/dimu/internal/ir"
	"github.com/roach88/dimu/internal/pipeline"
)

// Path levels of a pair histogram.
const (
	levelTrigger = iota
	levelCut
	levelType
	levelCharge
	pathDepth
)

// Options selects the windows applied while building a report.
type Options struct {
	Rapidity config.Window
	Mass     config.Window
}

// OptionsFrom takes the windows from cfg.
func OptionsFrom(cfg config.Config) Options {
	return Options{Rapidity: cfg.Rapidity, Mass: cfg.MassWindow}
}

// Group identifies one pair histogram by its four classification labels.
type Group struct {
	Trigger string `json:"trigger"`
	Cut     string `json:"cut"`
	Type    string `json:"type"`
	Charge  string `json:"charge"`
}

func groupOf(p ir.Path) (Group, bool) {
	if len(p) != pathDepth {
		return Group{}, false
	}
	return Group{
		Trigger: p[levelTrigger],
		Cut:     p[levelCut],
		Type:    p[levelType],
		Charge:  p[levelCharge],
	}, true
}

// String renders trigger_cut_charge_type.
func (g Group) String() string {
	return strings.Join([]string{g.Trigger, g.Cut, g.Charge, g.Type}, "_")
}

// Projection is the marginal of one pair histogram on one axis.
type Projection struct {
	Group Group
	Axis  int
	Title string
	Hist  *hist.Histogram
}

// Name renders the projection identifier, e.g. CMUL7_trackletDistCuts_none_OS_Z_proj3.
func (p Projection) Name() string {
	return fmt.Sprintf("%s_proj%d", p.Group, p.Axis)
}

// Efficiency compares the reconstructed and generated yields of one group
// inside the mass window.
type Efficiency struct {
	Group         Group
	Low, High     float64
	Reconstructed float64
	Generated     float64
}

// Ratio returns Reconstructed/Generated, or 0 when nothing was generated.
func (e Efficiency) Ratio() float64 {
	if e.Generated == 0 {
		return 0
	}
	return e.Reconstructed / e.Generated
}

// EventCount is one per-label event counter.
type EventCount struct {
	Label  string `json:"label"`
	Events int64  `json:"events"`
}

// Report is the inspection summary of a collection.
type Report struct {
	Events       []EventCount `json:"events"`
	Projections  []Projection `json:"projections"`
	Efficiencies []Efficiency `json:"efficiencies"`
	MassTitle    string       `json:"mass_title"`
}

// Build projects every pair histogram in coll. Keys are visited in sorted
// order, so the report is deterministic.
func Build(coll *collection.Collection, opts Options) *Report {
	r := &Report{}
	massProj := make(map[Group]*hist.Histogram)

	for _, e := range coll.Entries() {
		switch e.Key.Name {
		case pipeline.ObjectEvents:
			if c := e.Object.Counter(); c != nil && len(e.Key.Path) == 1 {
				r.Events = append(r.Events, EventCount{Label: e.Key.Path[0], Events: c.Value()})
			}

		case pipeline.ObjectSparse:
			h := e.Object.Histogram()
			g, ok := groupOf(e.Key.Path)
			if h == nil || !ok {
				continue
			}
			window := hist.Range{Axis: pipeline.AxisRapidity, Min: opts.Rapidity.Min, Max: opts.Rapidity.Max}
			for axis := 0; axis < h.Template().Dims(); axis++ {
				proj, ok := h.Project(axis, window)
				if !ok {
					continue
				}
				r.Projections = append(r.Projections, Projection{
					Group: g,
					Axis:  axis,
					Title: h.Template().Axis(axis).Title(),
					Hist:  proj,
				})
				if axis == pipeline.AxisMass {
					massProj[g] = proj
					r.MassTitle = h.Template().Axis(axis).Title()
				}
			}
		}
	}

	r.Efficiencies = efficiencies(massProj, opts.Mass)
	return r
}

// efficiencies pairs every reconstructed mass projection with the
// generated one of the same cut, type and charge.
func efficiencies(massProj map[Group]*hist.Histogram, window config.Window) []Efficiency {
	groups := make([]Group, 0, len(massProj))
	for g := range massProj {
		if g.Trigger != pipeline.GeneratedLabel {
			groups = append(groups, g)
		}
	}
	sortGroups(groups)

	var out []Efficiency
	for _, g := range groups {
		gen := g
		gen.Trigger = pipeline.GeneratedLabel
		genHist, ok := massProj[gen]
		if !ok {
			continue
		}
		reco := massProj[g]
		eff := Efficiency{Group: g, Low: window.Min, High: window.Max}
		if lo, hi, ok := windowBins(reco.Template().Axis(0), window); ok {
			a := reco.Template().Axis(0)
			eff.Low, eff.High = a.BinLowEdge(lo), a.BinUpEdge(hi)
			eff.Reconstructed = reco.Integral(0, lo, hi)
			eff.Generated = genHist.Integral(0, lo, hi)
		}
		out = append(out, eff)
	}
	return out
}

// windowBins returns the bins holding the interior of the open window. ok
// is false when the window does not overlap the axis.
func windowBins(a hist.Axis, w config.Window) (lo, hi int, ok bool) {
	if w.Max <= a.Min() || w.Min >= a.Max() {
		return 0, 0, false
	}
	lo, in := a.FindBin(math.Nextafter(w.Min, math.Inf(1)))
	if !in {
		lo = 0
	}
	hi, in = a.FindBin(math.Nextafter(w.Max, math.Inf(-1)))
	if !in {
		hi = a.Bins() - 1
	}
	return lo, hi, true
}

func sortGroups(gs []Group) {
	slices.SortFunc(gs, func(a, b Group) int {
		return strings.Compare(a.String(), b.String())
	})
}

// WriteText renders the report for terminals.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Events:\n")
	if len(r.Events) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, ev := range r.Events {
		fmt.Fprintf(&b, "  %-20s %d\n", ev.Label, ev.Events)
	}

	b.WriteString("\nProjections:\n")
	if len(r.Projections) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, p := range r.Projections {
		fmt.Fprintf(&b, "  %-60s %-24s entries=%d sum=%g\n", p.Name(), p.Title, p.Hist.Entries(), p.Hist.Sum())
	}

	if len(r.Efficiencies) > 0 {
		b.WriteString("\nEfficiencies:\n")
	}
	for _, e := range r.Efficiencies {
		fmt.Fprintf(&b, "  Eff for %s in (%g<%s<%g): %g / %g = %g\n",
			e.Group, e.Low, r.MassTitle, e.High, e.Reconstructed, e.Generated, e.Ratio())
	}

	_, err := io.WriteString(w, b.String())
	return err
}
