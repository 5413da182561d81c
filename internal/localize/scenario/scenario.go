// Package scenario loads replay scenarios: ground-truth trajectories and
// per-cycle sightings described in YAML. Cycles without explicit sightings
// are observed synthetically from their ground truth.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

// Scenario is a replayable sequence of cycles.
type Scenario struct {
	Name     string    `yaml:"name"`
	Seed     *uint64   `yaml:"seed,omitempty"`
	Geometry *Geometry `yaml:"geometry,omitempty"`
	View     View      `yaml:"view"`
	Cycles   []Cycle   `yaml:"cycles"`
}

// Geometry overrides the default field dimensions. Zero fields keep the
// default.
type Geometry struct {
	PitchHalfLength      float64 `yaml:"pitch_half_length"`
	PitchHalfWidth       float64 `yaml:"pitch_half_width"`
	PitchMargin          float64 `yaml:"pitch_margin"`
	GoalHalfWidth        float64 `yaml:"goal_half_width"`
	PenaltyAreaLength    float64 `yaml:"penalty_area_length"`
	PenaltyAreaHalfWidth float64 `yaml:"penalty_area_half_width"`
}

// View describes the synthetic observer's sensor.
type View struct {
	// Width is the view cone in degrees.
	Width float64 `yaml:"width"`
	// BehindRange is how close an object outside the cone must be to be
	// reported on the rear channel.
	BehindRange float64 `yaml:"behind_range"`
	// UnidentifiedRange is the distance beyond which landmarks lose their
	// identifier. Zero keeps every identifier.
	UnidentifiedRange float64 `yaml:"unidentified_range"`
	// RateRange is the distance within which movable objects carry change
	// rates. Zero attaches rates at any distance.
	RateRange float64 `yaml:"rate_range"`
}

// Cycle is one step of the scenario. At least one of Truth and Observed
// must be set; Observed wins when both are.
type Cycle struct {
	Cycle    int       `yaml:"cycle"`
	Truth    *Truth    `yaml:"truth,omitempty"`
	Observed *Observed `yaml:"observed,omitempty"`
}

// Truth is the ground-truth world state of a cycle.
type Truth struct {
	Self    Pose          `yaml:"self"`
	SelfVel *Vec          `yaml:"self_vel,omitempty"`
	Ball    *Object       `yaml:"ball,omitempty"`
	Players []PlayerTruth `yaml:"players,omitempty"`
}

// Pose is a ground-truth position and face direction in degrees.
type Pose struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Face float64 `yaml:"face"`
}

// Pos returns the pose position.
func (p Pose) Pos() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Vec is a plain YAML vector.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// R2 converts v.
func (v Vec) R2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

// Object is a movable object's ground-truth state.
type Object struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	VX float64 `yaml:"vx"`
	VY float64 `yaml:"vy"`
}

// Pos returns the object position.
func (o Object) Pos() r2.Vec { return r2.Vec{X: o.X, Y: o.Y} }

// Vel returns the object velocity.
func (o Object) Vel() r2.Vec { return r2.Vec{X: o.VX, Y: o.VY} }

// PlayerTruth is another player's ground-truth state.
type PlayerTruth struct {
	Object `yaml:",inline"`
	Side   string  `yaml:"side"`
	Unum   int     `yaml:"unum"`
	Goalie bool    `yaml:"goalie"`
	Body   float64 `yaml:"body"`
}

// Observed lists sightings verbatim, in simulator names.
type Observed struct {
	Markers []ObservedMarker `yaml:"markers,omitempty"`
	Behind  []ObservedBehind `yaml:"behind,omitempty"`
	Ball    *ObservedObject  `yaml:"ball,omitempty"`
	Players []ObservedPlayer `yaml:"players,omitempty"`
	Lines   []ObservedLine   `yaml:"lines,omitempty"`
}

// ObservedMarker is a landmark sighting; ID is a simulator flag name such
// as "f c" or "g r", or "f" for an unidentified flag.
type ObservedMarker struct {
	ID   string  `yaml:"id"`
	Dist float64 `yaml:"dist"`
	Dir  float64 `yaml:"dir"`
}

// ObservedBehind is a rear-channel sighting; Kind is "flag" or "goal".
type ObservedBehind struct {
	Kind string  `yaml:"kind"`
	Dist float64 `yaml:"dist"`
	Dir  float64 `yaml:"dir"`
}

// ObservedObject is a movable object sighting with optional change rates.
type ObservedObject struct {
	Dist    float64  `yaml:"dist"`
	Dir     float64  `yaml:"dir"`
	DistChg *float64 `yaml:"dist_chg,omitempty"`
	DirChg  *float64 `yaml:"dir_chg,omitempty"`
}

// ObservedPlayer is a player sighting.
type ObservedPlayer struct {
	ObservedObject `yaml:",inline"`
	Side           string   `yaml:"side"`
	Unum           int      `yaml:"unum"`
	Goalie         bool     `yaml:"goalie"`
	Body           *float64 `yaml:"body,omitempty"`
	Face           *float64 `yaml:"face,omitempty"`
}

// ObservedLine is a boundary line sighting; ID is "l l", "l r", "l t" or "l b".
type ObservedLine struct {
	ID   string  `yaml:"id"`
	Dist float64 `yaml:"dist"`
	Dir  float64 `yaml:"dir"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every cycle can be replayed.
func (s *Scenario) Validate() error {
	if len(s.Cycles) == 0 {
		return errors.New("scenario has no cycles")
	}
	if s.View.Width < 0 || s.View.Width > 360 {
		return fmt.Errorf("view width %v out of range", s.View.Width)
	}
	for i, c := range s.Cycles {
		if c.Truth == nil && c.Observed == nil {
			return fmt.Errorf("cycle %d (#%d): neither truth nor observed", c.Cycle, i)
		}
	}
	return nil
}

// FieldGeometry applies the scenario's overrides to def.
func (s *Scenario) FieldGeometry(def l2field.FieldGeometry) l2field.FieldGeometry {
	g := s.Geometry
	if g == nil {
		return def
	}
	pick := func(v, d float64) float64 {
		if v == 0 {
			return d
		}
		return v
	}
	return l2field.FieldGeometry{
		PitchHalfLength:      pick(g.PitchHalfLength, def.PitchHalfLength),
		PitchHalfWidth:       pick(g.PitchHalfWidth, def.PitchHalfWidth),
		PitchMargin:          pick(g.PitchMargin, def.PitchMargin),
		GoalHalfWidth:        pick(g.GoalHalfWidth, def.GoalHalfWidth),
		PenaltyAreaLength:    pick(g.PenaltyAreaLength, def.PenaltyAreaLength),
		PenaltyAreaHalfWidth: pick(g.PenaltyAreaHalfWidth, def.PenaltyAreaHalfWidth),
	}
}

// Frame is one replayable cycle: the sightings to feed the engine, the
// observer's own motion, and the ground truth when known.
type Frame struct {
	Batch  sighting.Batch
	Motion sighting.SelfMotion
	Truth  *Truth
}

// Frames resolves every cycle into sightings, observing truth through g
// where no explicit sightings were given.
func (s *Scenario) Frames(g *Generator) ([]Frame, error) {
	out := make([]Frame, 0, len(s.Cycles))
	for _, c := range s.Cycles {
		f := Frame{Truth: c.Truth}
		switch {
		case c.Observed != nil:
			b, err := c.Observed.Batch(c.Cycle)
			if err != nil {
				return nil, err
			}
			f.Batch = b
		default:
			f.Batch = g.Observe(c.Cycle, *c.Truth)
		}
		if c.Truth != nil && c.Truth.SelfVel != nil {
			f.Motion = sighting.SelfMotion{
				Vel:    c.Truth.SelfVel.R2(),
				VelErr: r2.Vec{X: selfVelErr, Y: selfVelErr},
				Valid:  true,
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// selfVelErr is the per-axis error attached to ground-truth self velocity,
// standing in for the body sensor's rounding.
const selfVelErr = 0.01

func parseSide(s string) (sighting.Side, error) {
	switch s {
	case "", "unknown":
		return sighting.SideUnknown, nil
	case "teammate", "our":
		return sighting.SideTeammate, nil
	case "opponent", "their":
		return sighting.SideOpponent, nil
	default:
		return sighting.SideUnknown, fmt.Errorf("unknown side %q", s)
	}
}

func (o ObservedObject) rate() *sighting.Rate {
	if o.DistChg == nil && o.DirChg == nil {
		return nil
	}
	var r sighting.Rate
	if o.DistChg != nil {
		r.DistChg = *o.DistChg
	}
	if o.DirChg != nil {
		r.DirChg = *o.DirChg
	}
	return &r
}

// Batch converts explicit sightings.
func (o *Observed) Batch(cycle int) (sighting.Batch, error) {
	var in []sighting.Sighting
	for _, m := range o.Markers {
		id, err := l2field.ParseMarkerID(m.ID)
		if err != nil {
			return sighting.Batch{}, fmt.Errorf("cycle %d: %w", cycle, err)
		}
		in = append(in, sighting.Marker{ID: id, Dist: m.Dist, Dir: m.Dir})
	}
	for _, b := range o.Behind {
		kind := sighting.BehindFlag
		switch b.Kind {
		case "goal":
			kind = sighting.BehindGoal
		case "flag", "":
		default:
			return sighting.Batch{}, fmt.Errorf("cycle %d: unknown behind kind %q", cycle, b.Kind)
		}
		in = append(in, sighting.BehindMarker{Kind: kind, Dist: b.Dist, Dir: b.Dir})
	}
	if o.Ball != nil {
		in = append(in, sighting.Ball{Dist: o.Ball.Dist, Dir: o.Ball.Dir, Rate: o.Ball.rate()})
	}
	for _, p := range o.Players {
		side, err := parseSide(p.Side)
		if err != nil {
			return sighting.Batch{}, fmt.Errorf("cycle %d: %w", cycle, err)
		}
		in = append(in, sighting.Player{
			Side:   side,
			Unum:   p.Unum,
			Goalie: p.Goalie,
			Dist:   p.Dist,
			Dir:    p.Dir,
			Rate:   p.rate(),
			Body:   p.Body,
			Face:   p.Face,
		})
	}
	for _, l := range o.Lines {
		id, err := l2field.ParseLineID(l.ID)
		if err != nil {
			return sighting.Batch{}, fmt.Errorf("cycle %d: %w", cycle, err)
		}
		in = append(in, sighting.Line{ID: id, Dist: l.Dist, Dir: l.Dir})
	}
	return sighting.NewBatch(cycle, in)
}
