package pipeline

import (
	"fmt"
	"math"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/hist"
)

// Object names.
const (
	ObjectSparse = "DimuSparse"
	ObjectEvents = "nevents"
)

// Axis indices of the dimuon template.
const (
	AxisPt = iota
	AxisRapidity
	AxisPhi
	AxisMass
	AxisCentrality
	AxisTracklets
)

// NewDimuonTemplate builds the six-axis pair template. estimator names the
// centrality axis.
func NewDimuonTemplate(estimator string) *hist.Template {
	return hist.MustTemplate(
		hist.MustAxis("p_{T}", "GeV/c", 100, 0, 100),
		hist.MustAxis("y", "", 25, -4.5, -2),
		hist.MustAxis("#phi", "rad", 36, 0, 2*math.Pi),
		hist.MustAxis("M_{#mu#mu}", "GeV/c^{2}", 750, 0, 15),
		hist.MustAxis(fmt.Sprintf("Centrality (%s)", estimator), "", 10, 0, 100),
		hist.MustAxis("SPD tracklets", "", 150, -0.5, 149.5),
	)
}

// ObjectFactory creates the pipeline's objects: the pair histogram bound to
// tmpl and the event counter.
func ObjectFactory(tmpl *hist.Template) collection.Factory {
	return func(name string) (collection.Object, error) {
		switch name {
		case ObjectSparse:
			return collection.HistogramObject(hist.New(tmpl)), nil
		case ObjectEvents:
			return collection.CounterObject(nil), nil
		}
		return collection.Object{}, fmt.Errorf("object %q: %w", name, collection.ErrUnknownObject)
	}
}
