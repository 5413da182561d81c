package l1quant

import (
	"errors"
	"math"
	"sort"
)

// Epsilon is the offset the simulator adds before taking the logarithm of a
// distance, and the threshold below which a distance is treated as zero.
const Epsilon = 1.0e-10

const (
	// outerStep is the linear quantization step applied after the log step.
	outerStep = 0.1

	// sweepStep and sweepCount cover true distances [0, 180).
	sweepStep  = 0.01
	sweepCount = 18000

	// lookupFudge lands queries on the correct bucket when the reading
	// carries representation noise around a multiple of outerStep.
	lookupFudge = 0.001

	// DefaultStaticStep is the log-domain step used for landmarks.
	DefaultStaticStep = 0.01
	// DefaultMovableStep is the log-domain step used for the ball and players.
	DefaultMovableStep = 0.1
)

// ErrOutOfRange is returned when a reading falls outside a table's built range.
var ErrOutOfRange = errors.New("quantized distance out of table range")

// Quantize rounds v to the nearest multiple of q using the simulator's
// round-half-to-even convention.
func Quantize(v, q float64) float64 {
	return math.RoundToEven(v/q) * q
}

// ServerDistance applies the simulator's forward distance quantization to a
// true distance d with log-domain step qstep.
func ServerDistance(d, qstep float64) float64 {
	return Quantize(math.Exp(Quantize(math.Log(d+Epsilon), qstep)), outerStep)
}

// Range is a symmetric interval [Mean-Err, Mean+Err].
type Range struct {
	Mean float64
	Err  float64
}

// Min returns the lower bound of the interval.
func (r Range) Min() float64 { return r.Mean - r.Err }

// Max returns the upper bound of the interval.
func (r Range) Max() float64 { return r.Mean + r.Err }

// Contains reports whether v lies inside the interval, widened by tol.
func (r Range) Contains(v, tol float64) bool {
	return v >= r.Min()-tol && v <= r.Max()+tol
}

// Entry is one row of an inversion table.
type Entry struct {
	Seen float64 // Quantized distance as reported by the simulator
	Mean float64 // Midpoint of the continuous distances producing Seen
	Err  float64 // Half-width of that interval
}

// Table maps quantized distances back to continuous distance ranges for one
// object class. Entries are strictly increasing in Seen.
type Table struct {
	qstep   float64
	entries []Entry
}

// NewTable sweeps true distances over [0, 180) and records one inverted
// entry each time the forward-quantized value changes.
func NewTable(qstep float64) *Table {
	t := &Table{qstep: qstep, entries: make([]Entry, 0, 512)}
	prev := -1.0
	for i := 0; i < sweepCount; i++ {
		seen := ServerDistance(float64(i)*sweepStep, qstep)
		if math.Abs(seen-prev) < lookupFudge {
			continue
		}
		prev = seen
		lo, hi := invert(seen, qstep)
		t.entries = append(t.entries, Entry{
			Seen: seen,
			Mean: (lo + hi) * 0.5,
			Err:  (hi - lo) * 0.5,
		})
	}
	return t
}

// invert returns the continuous distance interval that quantizes to seen.
// Each log bucket is widened by half a step either side of its rounded index.
func invert(seen, qstep float64) (lo, hi float64) {
	minOuter := seen - outerStep*0.5
	maxOuter := seen + outerStep*0.5

	if minOuter > Epsilon {
		lo = math.Exp((math.RoundToEven(math.Log(minOuter)/qstep)-0.5)*qstep) - Epsilon
		if lo < 0 {
			lo = 0
		}
	}
	hi = math.Exp((math.RoundToEven(math.Log(maxOuter)/qstep)+0.5)*qstep) - Epsilon
	return lo, hi
}

// Step returns the log-domain quantization step the table was built with.
func (t *Table) Step() float64 { return t.qstep }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the table rows.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// MaxSeen returns the largest quantized distance the table can resolve.
func (t *Table) MaxSeen() float64 {
	if len(t.entries) == 0 {
		return 0
	}
	return t.entries[len(t.entries)-1].Seen
}

// Lookup returns the continuous distance range for a quantized reading.
// It reports false for negative, non-finite, or out-of-range readings.
func (t *Table) Lookup(seen float64) (Range, bool) {
	if math.IsNaN(seen) || math.IsInf(seen, 0) || seen < 0 {
		return Range{}, false
	}
	key := seen - lookupFudge
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Seen >= key
	})
	if i == len(t.entries) {
		return Range{}, false
	}
	e := t.entries[i]
	return Range{Mean: e.Mean, Err: e.Err}, true
}

// Tables bundles the landmark and movable-object inversion tables.
type Tables struct {
	Static  *Table
	Movable *Table
}

// NewTables builds both tables. Building takes a few milliseconds, so
// callers hosting several agents should build once and share the result.
func NewTables(staticStep, movableStep float64) *Tables {
	return &Tables{
		Static:  NewTable(staticStep),
		Movable: NewTable(movableStep),
	}
}
