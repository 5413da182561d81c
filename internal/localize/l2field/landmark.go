package l2field

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrUnknownMarker is returned for landmark names or identifiers that have
// no fixed coordinate.
var ErrUnknownMarker = errors.New("unknown marker")

// FieldGeometry holds the scalar pitch dimensions landmarks are derived from.
type FieldGeometry struct {
	PitchHalfLength      float64
	PitchHalfWidth       float64
	PitchMargin          float64
	GoalHalfWidth        float64
	PenaltyAreaLength    float64
	PenaltyAreaHalfWidth float64
}

// DefaultFieldGeometry returns the standard simulator pitch.
func DefaultFieldGeometry() FieldGeometry {
	return FieldGeometry{
		PitchHalfLength:      52.5,
		PitchHalfWidth:       34.0,
		PitchMargin:          5.0,
		GoalHalfWidth:        7.01,
		PenaltyAreaLength:    16.5,
		PenaltyAreaHalfWidth: 20.16,
	}
}

// Validate rejects geometry that cannot describe a pitch.
func (g FieldGeometry) Validate() error {
	switch {
	case g.PitchHalfLength <= 0:
		return fmt.Errorf("pitch_half_length must be positive, got %v", g.PitchHalfLength)
	case g.PitchHalfWidth <= 0:
		return fmt.Errorf("pitch_half_width must be positive, got %v", g.PitchHalfWidth)
	case g.PitchMargin < 0:
		return fmt.Errorf("pitch_margin must be non-negative, got %v", g.PitchMargin)
	case g.GoalHalfWidth <= 0 || g.GoalHalfWidth >= g.PitchHalfWidth:
		return fmt.Errorf("goal_half_width must be in (0, pitch_half_width), got %v", g.GoalHalfWidth)
	case g.PenaltyAreaLength <= 0 || g.PenaltyAreaLength >= g.PitchHalfLength:
		return fmt.Errorf("penalty_area_length must be in (0, pitch_half_length), got %v", g.PenaltyAreaLength)
	case g.PenaltyAreaHalfWidth <= 0 || g.PenaltyAreaHalfWidth >= g.PitchHalfWidth:
		return fmt.Errorf("penalty_area_half_width must be in (0, pitch_half_width), got %v", g.PenaltyAreaHalfWidth)
	}
	return nil
}

// LandmarkMap is an immutable table of landmark coordinates.
type LandmarkMap struct {
	geom FieldGeometry
	pos  [markerCount]r2.Vec
}

// NewLandmarkMap derives every landmark coordinate from g.
func NewLandmarkMap(g FieldGeometry) *LandmarkMap {
	m := &LandmarkMap{geom: g}

	hl, hw := g.PitchHalfLength, g.PitchHalfWidth
	ox, oy := hl+g.PitchMargin, hw+g.PitchMargin
	px := hl - g.PenaltyAreaLength
	py := g.PenaltyAreaHalfWidth
	gy := g.GoalHalfWidth

	set := func(id MarkerID, x, y float64) { m.pos[id] = r2.Vec{X: x, Y: y} }

	set(GoalL, -hl, 0)
	set(GoalR, hl, 0)

	set(FlagC, 0, 0)
	set(FlagCT, 0, -hw)
	set(FlagCB, 0, hw)

	set(FlagLT, -hl, -hw)
	set(FlagLB, -hl, hw)
	set(FlagRT, hl, -hw)
	set(FlagRB, hl, hw)

	set(FlagPLT, -px, -py)
	set(FlagPLC, -px, 0)
	set(FlagPLB, -px, py)
	set(FlagPRT, px, -py)
	set(FlagPRC, px, 0)
	set(FlagPRB, px, py)

	set(FlagGLT, -hl, -gy)
	set(FlagGLB, -hl, gy)
	set(FlagGRT, hl, -gy)
	set(FlagGRB, hl, gy)

	// Touchline flags: FlagTL50..FlagTR50 and FlagBL50..FlagBR50 are
	// declared in x order, ten units apart.
	for i := 0; i <= 10; i++ {
		x := float64(i*10 - 50)
		set(FlagTL50+MarkerID(i), x, -oy)
		set(FlagBL50+MarkerID(i), x, oy)
	}
	// Goal-line flags: FlagLT30..FlagLB30 and FlagRT30..FlagRB30 are
	// declared in y order.
	for i := 0; i <= 6; i++ {
		y := float64(i*10 - 30)
		set(FlagLT30+MarkerID(i), -ox, y)
		set(FlagRT30+MarkerID(i), ox, y)
	}
	return m
}

// Geometry returns the geometry the map was built from.
func (m *LandmarkMap) Geometry() FieldGeometry { return m.geom }

// Position returns the global coordinate of id.
func (m *LandmarkMap) Position(id MarkerID) (r2.Vec, bool) {
	if !id.Valid() {
		return r2.Vec{}, false
	}
	return m.pos[id], true
}

// IDs returns every identified landmark in declaration order.
func (m *LandmarkMap) IDs() []MarkerID {
	ids := make([]MarkerID, 0, MarkerCount)
	for id := MarkerUnknown + 1; id < markerCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Nearest returns the landmark closest to p whose squared distance is
// below maxDist2. Goals are excluded; use NearestGoal for them.
func (m *LandmarkMap) Nearest(p r2.Vec, maxDist2 float64) (MarkerID, bool) {
	best := MarkerUnknown
	bestD2 := maxDist2
	for id := FlagC; id < markerCount; id++ {
		d2 := r2.Norm2(r2.Sub(m.pos[id], p))
		if d2 < bestD2 {
			best, bestD2 = id, d2
		}
	}
	return best, best != MarkerUnknown
}

// NearestGoal picks the goal on the same side of the half-way line as p.
func (m *LandmarkMap) NearestGoal(p r2.Vec) MarkerID {
	if math.Signbit(p.X) {
		return GoalL
	}
	return GoalR
}
