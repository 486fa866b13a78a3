// Package estats accumulates named metric series over the recorded epochs
// of a training run and exports them as an etable for saving or plotting.
package estats

import (
	"os"
	"sort"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// Series holds one []float64 per metric name, appended to once per
// recorded epoch.  Key order is first-seen order so exported tables have
// stable columns.
type Series struct {
	Values map[string][]float64
	Order  []string
	Epochs []int `desc:"epoch index of each recorded row"`
}

func InitSeries() *Series {
	return &Series{Values: make(map[string][]float64)}
}

// AddEpoch starts a new recorded row at the given epoch.
func (sr *Series) AddEpoch(epoch int) {
	sr.Epochs = append(sr.Epochs, epoch)
}

// Add appends a value to the named series, registering the name on first
// use.
func (sr *Series) Add(name string, value float64) {
	if _, ok := sr.Values[name]; !ok {
		sr.Order = append(sr.Order, name)
	}
	sr.Values[name] = append(sr.Values[name], value)
}

// AddAll merges a callback's name -> value map into the current row.
// Known names keep their column order; new names are registered in sorted
// order so column layout is deterministic.
func (sr *Series) AddAll(vals map[string]float64) {
	for _, name := range sr.Order {
		if v, ok := vals[name]; ok {
			sr.Add(name, v)
		}
	}
	var fresh []string
	for name := range vals {
		if _, ok := sr.Values[name]; !ok {
			fresh = append(fresh, name)
		}
	}
	sort.Strings(fresh)
	for _, name := range fresh {
		sr.Add(name, vals[name])
	}
}

// Get returns the series for a metric name, nil if never recorded.
func (sr *Series) Get(name string) []float64 {
	return sr.Values[name]
}

func (sr *Series) Keys() []string {
	return sr.Order
}

// Rows is the number of recorded epochs.
func (sr *Series) Rows() int {
	return len(sr.Epochs)
}

// Table builds an etable with an Epoch column plus one column per metric.
// Series shorter than the row count (metrics that appeared late) are
// left-padded with NaN by position from the end.
func (sr *Series) Table() *etable.Table {
	sch := etable.Schema{
		{Name: "Epoch", Type: etensor.INT64, CellShape: nil, DimNames: nil},
	}
	for _, name := range sr.Order {
		sch = append(sch, etable.Column{Name: name, Type: etensor.FLOAT64, CellShape: nil, DimNames: nil})
	}
	dt := &etable.Table{}
	dt.SetFromSchema(sch, sr.Rows())
	for row, ep := range sr.Epochs {
		dt.SetCellFloat("Epoch", row, float64(ep))
	}
	for _, name := range sr.Order {
		vals := sr.Values[name]
		off := sr.Rows() - len(vals)
		for i, v := range vals {
			dt.SetCellFloat(name, off+i, v)
		}
	}
	return dt
}

// SaveTSV writes the metrics table to a tab-separated file.
func (sr *Series) SaveTSV(fnm string) error {
	f, err := os.Create(fnm)
	if err != nil {
		return err
	}
	defer f.Close()
	dt := sr.Table()
	dt.WriteCSVHeaders(f, etable.Tab)
	for row := 0; row < dt.Rows; row++ {
		dt.WriteCSVRow(f, row, etable.Tab)
	}
	return nil
}
