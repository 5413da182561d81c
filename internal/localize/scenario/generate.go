package scenario

import (
	"math"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"gonum.org/v1/gonum/spatial/r2"
)

// Default sensor model.
const (
	DefaultViewWidth   = 90.0
	DefaultBehindRange = 3.0

	// Rounding steps of the change-rate fields.
	distChgStep = 0.02
	dirChgStep  = 0.1
)

// Generator observes ground truth the way the simulator's visual sensor
// does: distances pass through the forward quantization, bearings round to
// whole degrees, and only objects inside the view cone are reported.
type Generator struct {
	field       *l2field.LandmarkMap
	staticStep  float64
	movableStep float64
	view        View
}

// NewGenerator builds a generator over field. Zero view fields take the
// defaults.
func NewGenerator(field *l2field.LandmarkMap, staticStep, movableStep float64, view View) *Generator {
	if view.Width <= 0 {
		view.Width = DefaultViewWidth
	}
	if view.BehindRange <= 0 {
		view.BehindRange = DefaultBehindRange
	}
	return &Generator{field: field, staticStep: staticStep, movableStep: movableStep, view: view}
}

// polarFrom returns the true distance and face-relative bearing of target.
func polarFrom(self r2.Vec, face float64, target r2.Vec) (dist, dir float64) {
	d := r2.Sub(target, self)
	return r2.Norm(d), l3bearing.Normalize(l3bearing.Deg(math.Atan2(d.Y, d.X)) - face)
}

func (g *Generator) inView(dir float64) bool {
	return math.Abs(dir) <= g.view.Width/2
}

// Observe produces the sightings an observer with truth t would receive.
func (g *Generator) Observe(cycle int, t Truth) sighting.Batch {
	self, face := t.Self.Pos(), t.Self.Face
	var in []sighting.Sighting

	for _, id := range g.field.IDs() {
		pos, _ := g.field.Position(id)
		d, dir := polarFrom(self, face, pos)
		seen := l1quant.ServerDistance(d, g.staticStep)
		switch {
		case g.inView(dir):
			if g.view.UnidentifiedRange > 0 && d > g.view.UnidentifiedRange {
				id = l2field.MarkerUnknown
			}
			in = append(in, sighting.Marker{ID: id, Dist: seen, Dir: math.RoundToEven(dir)})
		case d <= g.view.BehindRange:
			kind := sighting.BehindFlag
			if id.IsGoal() {
				kind = sighting.BehindGoal
			}
			in = append(in, sighting.BehindMarker{Kind: kind, Dist: seen, Dir: math.RoundToEven(dir)})
		}
	}

	var selfVel r2.Vec
	if t.SelfVel != nil {
		selfVel = t.SelfVel.R2()
	}
	if t.Ball != nil {
		if d, dir := polarFrom(self, face, t.Ball.Pos()); g.inView(dir) {
			seen := l1quant.ServerDistance(d, g.movableStep)
			in = append(in, sighting.Ball{
				Dist: seen,
				Dir:  math.RoundToEven(dir),
				Rate: g.rate(self, selfVel, t.Ball.Pos(), t.Ball.Vel(), d, seen),
			})
		}
	}
	for _, p := range t.Players {
		d, dir := polarFrom(self, face, p.Pos())
		if !g.inView(dir) {
			continue
		}
		side, _ := parseSide(p.Side)
		seen := l1quant.ServerDistance(d, g.movableStep)
		body := math.RoundToEven(l3bearing.Normalize(p.Body - face))
		in = append(in, sighting.Player{
			Side:   side,
			Unum:   p.Unum,
			Goalie: p.Goalie,
			Dist:   seen,
			Dir:    math.RoundToEven(dir),
			Rate:   g.rate(self, selfVel, p.Pos(), p.Vel(), d, seen),
			Body:   &body,
		})
	}

	if l, ok := g.line(self, face); ok {
		in = append(in, l)
	}

	// Only the five concrete sighting types are produced above.
	b, _ := sighting.NewBatch(cycle, in)
	return b
}

// rate reports the change fields of an object at pos moving at vel, or nil
// beyond RateRange.
func (g *Generator) rate(self, selfVel, pos, vel r2.Vec, d, seen float64) *sighting.Rate {
	if g.view.RateRange > 0 && d > g.view.RateRange {
		return nil
	}
	if d < l1quant.Epsilon {
		return &sighting.Rate{}
	}
	unit := r2.Scale(1/d, r2.Sub(pos, self))
	perp := r2.Vec{X: -unit.Y, Y: unit.X}
	rel := r2.Sub(vel, selfVel)
	return &sighting.Rate{
		DistChg: l1quant.Quantize(seen*r2.Dot(rel, unit)/d, distChgStep),
		DirChg:  l1quant.Quantize(l3bearing.Deg(r2.Dot(rel, perp)/d), dirChgStep),
	}
}

// line reports the first boundary line the face ray meets from inside the
// pitch. Observers outside the pitch get no line.
func (g *Generator) line(self r2.Vec, face float64) (sighting.Line, bool) {
	geom := g.field.Geometry()
	hl, hw := geom.PitchHalfLength, geom.PitchHalfWidth
	if math.Abs(self.X) > hl || math.Abs(self.Y) > hw {
		return sighting.Line{}, false
	}

	rad := l3bearing.Rad(face)
	cos, sin := math.Cos(rad), math.Sin(rad)
	candidates := []struct {
		id    l2field.LineID
		angle float64 // crossing angle before the reading offset
		t     float64 // distance along the face ray
	}{
		{l2field.LineRight, -face, (hl - self.X) / cos},
		{l2field.LineLeft, 180 - face, (-hl - self.X) / cos},
		{l2field.LineTop, -90 - face, (-hw - self.Y) / sin},
		{l2field.LineBottom, 90 - face, (hw - self.Y) / sin},
	}

	best := -1
	for i, c := range candidates {
		a := l3bearing.Normalize(c.angle)
		if math.Abs(a) >= 90 || math.IsInf(c.t, 0) || math.IsNaN(c.t) || c.t < 0 {
			continue
		}
		if best < 0 || c.t < candidates[best].t {
			best = i
		}
	}
	if best < 0 {
		return sighting.Line{}, false
	}

	c := candidates[best]
	a := l3bearing.Normalize(c.angle)
	if a <= 0 {
		a += 90
	} else {
		a -= 90
	}
	return sighting.Line{
		ID:   c.id,
		Dist: l1quant.ServerDistance(c.t, g.staticStep),
		Dir:  math.RoundToEven(a),
	}, true
}
