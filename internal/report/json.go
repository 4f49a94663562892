package report

import "encoding/json"

type binJSON struct {
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Content float64 `json:"content"`
	Entries int64   `json:"entries"`
}

// MarshalJSON renders the projection with its non-empty bins.
func (p Projection) MarshalJSON() ([]byte, error) {
	a := p.Hist.Template().Axis(0)
	cells := p.Hist.Cells()
	bins := make([]binJSON, 0, len(cells))
	for _, c := range cells {
		bin := c.Bins[0]
		bins = append(bins, binJSON{
			Low:     a.BinLowEdge(bin),
			High:    a.BinUpEdge(bin),
			Content: c.Sum,
			Entries: c.Entries,
		})
	}
	return json.Marshal(struct {
		Name    string    `json:"name"`
		Group   Group     `json:"group"`
		Axis    int       `json:"axis"`
		Title   string    `json:"title"`
		Entries int64     `json:"entries"`
		Sum     float64   `json:"sum"`
		Bins    []binJSON `json:"bins"`
	}{p.Name(), p.Group, p.Axis, p.Title, p.Hist.Entries(), p.Hist.Sum(), bins})
}

// MarshalJSON adds the ratio to the efficiency fields.
func (e Efficiency) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Group         Group   `json:"group"`
		Low           float64 `json:"low"`
		High          float64 `json:"high"`
		Reconstructed float64 `json:"reconstructed"`
		Generated     float64 `json:"generated"`
		Ratio         float64 `json:"ratio"`
	}{e.Group, e.Low, e.High, e.Reconstructed, e.Generated, e.Ratio()})
}
