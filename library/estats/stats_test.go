package estats

import "testing"

func TestSeriesAccumulation(t *testing.T) {
	sr := InitSeries()
	sr.AddEpoch(0)
	sr.AddAll(map[string]float64{"mmd": 1.5})
	sr.AddEpoch(25)
	sr.AddAll(map[string]float64{"mmd": 0.75})

	if sr.Rows() != 2 {
		t.Fatalf("expected 2 recorded epochs, got %d", sr.Rows())
	}
	got := sr.Get("mmd")
	if len(got) != 2 || got[0] != 1.5 || got[1] != 0.75 {
		t.Errorf("mmd series wrong: %v", got)
	}
	if sr.Get("missing") != nil {
		t.Errorf("unknown metric should be nil")
	}
}

func TestSeriesTable(t *testing.T) {
	sr := InitSeries()
	for i, v := range []float64{3, 2, 1} {
		sr.AddEpoch(i * 10)
		sr.Add("loss", v)
	}
	dt := sr.Table()
	if dt.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", dt.Rows)
	}
	if dt.CellFloat("Epoch", 2) != 20 {
		t.Errorf("epoch column wrong: %v", dt.CellFloat("Epoch", 2))
	}
	if dt.CellFloat("loss", 0) != 3 || dt.CellFloat("loss", 2) != 1 {
		t.Errorf("loss column wrong")
	}
}
