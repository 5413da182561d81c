package l4selfpos

import (
	"math"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"gonum.org/v1/gonum/spatial/r2"
)

// containTol absorbs floating point error at sector edges, in metres for
// the radial test and degrees for the angular one.
const containTol = 1e-6

// Sector is an annular region anchored at Center. A point belongs to it
// when its distance from Center is in [MinR, MaxR] and its direction from
// Center lies on the counter-clockwise arc starting at Left and spanning
// Span degrees.
type Sector struct {
	Center r2.Vec
	MinR   float64
	MaxR   float64
	Left   float64
	Span   float64
}

// NewSector returns the region an observer must occupy to see a landmark at
// center within dist and at the global direction dir. The sighting points
// from observer to landmark, so the sector is built on the reversed
// direction.
func NewSector(center r2.Vec, dist l1quant.Range, dir l3bearing.DirRange) Sector {
	rev := dir.Reverse()
	return Sector{
		Center: center,
		MinR:   math.Max(0, dist.Min()),
		MaxR:   dist.Max(),
		Left:   l3bearing.Normalize(rev.Min()),
		Span:   2 * rev.Err,
	}
}

// MeanR returns the radius halfway between the inner and outer edge.
func (s Sector) MeanR() float64 { return (s.MinR + s.MaxR) / 2 }

// Point returns the location at radius r and direction deg from Center.
func (s Sector) Point(r, deg float64) r2.Vec {
	rad := l3bearing.Rad(deg)
	return r2.Add(s.Center, r2.Vec{X: r * math.Cos(rad), Y: r * math.Sin(rad)})
}

// Contains reports whether p lies within the sector.
func (s Sector) Contains(p r2.Vec) bool {
	d := r2.Sub(p, s.Center)
	r := r2.Norm(d)
	if r < s.MinR-containTol || r > s.MaxR+containTol {
		return false
	}
	if r <= containTol {
		// Direction is undefined at the anchor.
		return true
	}
	a := l3bearing.Deg(math.Atan2(d.Y, d.X))
	return l3bearing.Within(a, s.Left-containTol, s.Span+2*containTol)
}
