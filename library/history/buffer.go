// Package history holds the forgetting window of recent simulated
// minibatches: a bounded FIFO whose entries are down-weighted
// geometrically by age when the surrogate estimator concatenates them
// into one effective batch.
package history

import (
	"math"

	"github.com/emer/etable/etensor"
)

// Entry is one simulated minibatch.  The design matrix is kept alongside
// the rate and mask because the gradient of each trial's log-probability
// has to be re-evaluated from it on every later epoch the entry survives.
type Entry struct {
	Rate *etensor.Float64 `desc:"conditional intensity [time, trial] at the epoch the batch was drawn"`
	Mask *etensor.Float64 `desc:"simulated spike mask [time, trial]"`
	X    *etensor.Float64 `desc:"design matrix [time, trial, basis] for the batch"`
}

// Buffer is a fixed-capacity ring over Entry.  Push appends and evicts the
// oldest entry once the capacity is reached; no reallocation happens after
// construction.
type Buffer struct {
	entries []Entry
	start   int
	n       int
}

// NewBuffer returns a buffer holding at most cap entries.  cap must be >= 1.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

// Push appends an entry, evicting the oldest first if at capacity.
func (bf *Buffer) Push(e Entry) {
	if bf.n < len(bf.entries) {
		bf.entries[(bf.start+bf.n)%len(bf.entries)] = e
		bf.n++
		return
	}
	bf.entries[bf.start] = e
	bf.start = (bf.start + 1) % len(bf.entries)
}

func (bf *Buffer) Len() int { return bf.n }

func (bf *Buffer) Cap() int { return len(bf.entries) }

// At returns the i-th entry in insertion order, 0 = oldest.
func (bf *Buffer) At(i int) Entry {
	return bf.entries[(bf.start+i)%len(bf.entries)]
}

// Do calls fn on every entry in insertion order, oldest first.
func (bf *Buffer) Do(fn func(i int, e Entry)) {
	for i := 0; i < bf.n; i++ {
		fn(i, bf.At(i))
	}
}

// Weights returns the discount beta^age per retained entry, in the same
// oldest-first order as Do and At.  The newest entry has age 0, weight 1;
// beta = 1 weights all entries equally.
func (bf *Buffer) Weights(beta float64) []float64 {
	ws := make([]float64, bf.n)
	for i := range ws {
		ws[i] = math.Pow(beta, float64(bf.n-1-i))
	}
	return ws
}

// TotalTrials is the trial count of the concatenated effective batch.
func (bf *Buffer) TotalTrials() int {
	tot := 0
	bf.Do(func(i int, e Entry) {
		tot += e.Mask.Dim(1)
	})
	return tot
}

// ConcatRate concatenates the buffered rates along the trial axis,
// oldest first.
func (bf *Buffer) ConcatRate() *etensor.Float64 {
	return bf.concat(func(e Entry) *etensor.Float64 { return e.Rate })
}

// ConcatMask concatenates the buffered spike masks along the trial axis,
// oldest first.
func (bf *Buffer) ConcatMask() *etensor.Float64 {
	return bf.concat(func(e Entry) *etensor.Float64 { return e.Mask })
}

func (bf *Buffer) concat(get func(e Entry) *etensor.Float64) *etensor.Float64 {
	if bf.n == 0 {
		return nil
	}
	nt := get(bf.At(0)).Dim(0)
	tot := bf.TotalTrials()
	out := etensor.NewFloat64([]int{nt, tot}, nil, []string{"Time", "Trial"})
	off := 0
	bf.Do(func(i int, e Entry) {
		src := get(e)
		nk := src.Dim(1)
		for ti := 0; ti < nt; ti++ {
			copy(out.Values[ti*tot+off:ti*tot+off+nk], src.Values[ti*nk:(ti+1)*nk])
		}
		off += nk
	})
	return out
}
