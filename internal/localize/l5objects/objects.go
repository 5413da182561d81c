package l5objects

import (
	"errors"
	"fmt"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/l4selfpos"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrSelfInvalid is returned when a global estimate needs a self pose the
// cycle did not produce.
var ErrSelfInvalid = errors.New("self pose invalid")

// Rounding half-steps of the change-rate fields.
const (
	// DistChgHalfStep bounds the relative distance change, per cycle.
	DistChgHalfStep = 0.01
	// DirChgHalfStep bounds the direction change, degrees per cycle.
	DirChgHalfStep = 0.05
)

// Params tunes the object localizer.
type Params struct {
	DistChgHalfStep float64
	DirChgHalfStep  float64
}

// DefaultParams returns the simulator's rate rounding.
func DefaultParams() Params {
	return Params{DistChgHalfStep: DistChgHalfStep, DirChgHalfStep: DirChgHalfStep}
}

// BallEstimate places the ball. Rel and RelVel are in the observer's face
// frame (x forward); Pos and Vel are on the pitch.
type BallEstimate struct {
	Dist l1quant.Range

	Rel    r2.Vec
	RelErr r2.Vec

	RelVel      r2.Vec
	RelVelErr   r2.Vec
	RelVelValid bool

	Pos      r2.Vec
	PosErr   r2.Vec
	PosValid bool

	Vel      r2.Vec
	VelErr   r2.Vec
	VelValid bool
}

// PlayerEstimate places another player on the pitch.
type PlayerEstimate struct {
	Side   sighting.Side
	Unum   int
	Goalie bool

	Pos     r2.Vec
	PosErr  r2.Vec
	DistErr float64

	Vel      r2.Vec
	VelErr   r2.Vec
	VelValid bool

	// Absolute directions, present when the sighting carried them.
	Body *float64
	Face *float64
	Arm  *float64

	Kicking  bool
	Tackling bool
}

// Localizer estimates movable objects from one cycle's sightings.
type Localizer struct {
	table    *l1quant.Table
	resolver l3bearing.Resolver
	params   Params
}

// NewLocalizer builds a localizer reading distances through movable.
func NewLocalizer(movable *l1quant.Table, resolver l3bearing.Resolver, params Params) (*Localizer, error) {
	if movable == nil {
		return nil, errors.New("nil movable table")
	}
	if params.DistChgHalfStep < 0 || params.DirChgHalfStep < 0 {
		return nil, fmt.Errorf("negative rate half-step: %+v", params)
	}
	return &Localizer{table: movable, resolver: resolver, params: params}, nil
}

func (l *Localizer) lookup(seen float64) (l1quant.Range, error) {
	d, ok := l.table.Lookup(seen)
	if !ok {
		return l1quant.Range{}, fmt.Errorf("distance %.2f: %w", seen, l1quant.ErrOutOfRange)
	}
	return d, nil
}

// LocalizeBall places the ball. The face-relative estimate is always filled
// when the distance resolves; pitch coordinates need a valid self pose, and
// pitch velocity additionally needs valid self motion.
func (l *Localizer) LocalizeBall(self l4selfpos.Pose, motion sighting.SelfMotion, ball sighting.Ball) (BallEstimate, error) {
	dist, err := l.lookup(ball.Dist)
	if err != nil {
		return BallEstimate{}, fmt.Errorf("ball: %w", err)
	}
	est := BallEstimate{Dist: dist}

	relDir := l.resolver.Resolve(ball.Dir, 0, 0)
	est.Rel, est.RelErr = offset(dist, relDir)
	if ball.Rate != nil {
		est.RelVel, est.RelVelErr = rateVelocity(*ball.Rate, ball.Dist, dist, relDir, l.params.DistChgHalfStep, l.params.DirChgHalfStep)
		est.RelVelValid = true
	}

	if !self.Valid {
		return est, nil
	}

	dir := l.resolver.Resolve(ball.Dir, self.Heading, self.HeadingErr)
	off, offErr := offset(dist, dir)
	est.Pos = r2.Add(self.Pos, off)
	est.PosErr = r2.Add(self.PosErr, offErr)
	est.PosValid = true

	if ball.Rate != nil && motion.Valid {
		v, vErr := rateVelocity(*ball.Rate, ball.Dist, dist, dir, l.params.DistChgHalfStep, l.params.DirChgHalfStep)
		est.Vel = r2.Add(motion.Vel, v)
		est.VelErr = r2.Add(motion.VelErr, vErr)
		est.VelValid = true
	}
	return est, nil
}

// LocalizePlayer places another player on the pitch. It fails with
// ErrSelfInvalid when the self pose is unknown.
func (l *Localizer) LocalizePlayer(self l4selfpos.Pose, motion sighting.SelfMotion, p sighting.Player) (PlayerEstimate, error) {
	if !self.Valid {
		return PlayerEstimate{}, fmt.Errorf("player %s %d: %w", p.Side, p.Unum, ErrSelfInvalid)
	}
	dist, err := l.lookup(p.Dist)
	if err != nil {
		return PlayerEstimate{}, fmt.Errorf("player %s %d: %w", p.Side, p.Unum, err)
	}

	dir := l.resolver.Resolve(p.Dir, self.Heading, self.HeadingErr)
	off, offErr := offset(dist, dir)
	est := PlayerEstimate{
		Side:     p.Side,
		Unum:     p.Unum,
		Goalie:   p.Goalie,
		Pos:      r2.Add(self.Pos, off),
		PosErr:   r2.Add(self.PosErr, offErr),
		DistErr:  dist.Err,
		Body:     absolute(p.Body, self.Heading),
		Face:     absolute(p.Face, self.Heading),
		Arm:      absolute(p.Arm, self.Heading),
		Kicking:  p.Kicking,
		Tackling: p.Tackling,
	}

	if p.Rate != nil && motion.Valid {
		v, vErr := rateVelocity(*p.Rate, p.Dist, dist, dir, l.params.DistChgHalfStep, l.params.DirChgHalfStep)
		est.Vel = r2.Add(motion.Vel, v)
		est.VelErr = r2.Add(motion.VelErr, vErr)
		est.VelValid = true
	}
	return est, nil
}

func absolute(rel *float64, heading float64) *float64 {
	if rel == nil {
		return nil
	}
	v := l3bearing.Normalize(*rel + heading)
	return &v
}
