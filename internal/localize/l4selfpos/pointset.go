package l4selfpos

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"
)

// Tiling bounds for Generate.
const (
	minRadialSamples  = 2
	maxRadialSamples  = 16
	minAngularSamples = 2
	maxAngularSamples = 32
	minSampleStep     = 0.01
)

// PointSet is a working set of candidate observer positions.
type PointSet []r2.Vec

// Clone returns an independent copy of s.
func (s PointSet) Clone() PointSet {
	if s == nil {
		return nil
	}
	out := make(PointSet, len(s))
	copy(out, s)
	return out
}

// sampleCount picks how many evenly spaced samples cover extent, aiming for
// one every max(minSampleStep, extent/hi) and clamped to [lo, hi].
func sampleCount(extent float64, lo, hi int) int {
	inc := math.Max(minSampleStep, extent/float64(hi))
	n := int(math.Ceil(extent/inc)) + 1
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return n
}

// Generate tiles the sector with a grid of radial by angular samples,
// edges included. The grid has between 2x2 and 16x32 points.
func Generate(s Sector) PointSet {
	radial := s.MaxR - s.MinR
	if radial < 0 || math.IsNaN(radial) || math.IsNaN(s.Span) || s.Span < 0 {
		return nil
	}
	arc := 2 * math.Pi * s.MeanR() * (s.Span / 360)

	nr := sampleCount(radial, minRadialSamples, maxRadialSamples)
	na := sampleCount(arc, minAngularSamples, maxAngularSamples)
	rStep := radial / float64(nr-1)
	aStep := s.Span / float64(na-1)

	out := make(PointSet, 0, nr*na)
	for i := 0; i < nr; i++ {
		r := s.MinR + float64(i)*rStep
		if i == nr-1 {
			r = s.MaxR
		}
		for j := 0; j < na; j++ {
			a := s.Left + float64(j)*aStep
			if j == na-1 {
				a = s.Left + s.Span
			}
			out = append(out, s.Point(r, a))
		}
	}
	return out
}

// Filter returns the points of set that lie inside s, in order. The input
// is not modified.
func Filter(set PointSet, s Sector) PointSet {
	out := make(PointSet, 0, len(set))
	for _, p := range set {
		if s.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Resample grows a non-empty set to target points by appending copies of
// randomly chosen original points, each shifted by independent uniform
// jitter in [-jitter, jitter) on both axes. The original points stay at
// the front of the result. Sets that are empty or already at target are
// returned unchanged.
func Resample(set PointSet, target int, jitter float64, rng *rand.Rand) PointSet {
	n := len(set)
	if n == 0 || n >= target {
		return set
	}
	out := make(PointSet, n, target)
	copy(out, set)

	noise := distuv.Uniform{Min: -jitter, Max: jitter, Src: rng}
	for len(out) < target {
		src := set[rng.IntN(n)]
		out = append(out, r2.Vec{X: src.X + noise.Rand(), Y: src.Y + noise.Rand()})
	}
	return out
}

// Average returns the mean of set and half the extent of its bounding box
// on each axis. ok is false for an empty set.
func Average(set PointSet) (mean, halfExtent r2.Vec, ok bool) {
	if len(set) == 0 {
		return r2.Vec{}, r2.Vec{}, false
	}
	box := r2.Box{Min: set[0], Max: set[0]}
	var sum r2.Vec
	for _, p := range set {
		sum = r2.Add(sum, p)
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	mean = r2.Scale(1/float64(len(set)), sum)
	halfExtent = r2.Scale(0.5, box.Size())
	return mean, halfExtent, true
}
