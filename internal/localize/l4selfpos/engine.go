package l4selfpos

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrNoMarkers is returned when the batch holds no identified landmark.
	ErrNoMarkers = errors.New("no identified markers")
	// ErrSeedFailed is returned when no landmark sighting could seed the
	// candidate set.
	ErrSeedFailed = errors.New("candidate seed produced no points")
)

// Params tunes the candidate engine.
type Params struct {
	// TargetCount is the size Resample restores a thinned set to.
	TargetCount int
	// MaxMarkers bounds the landmarks filtered after the seed.
	MaxMarkers int
	// Jitter is the per-axis half-width of resampling noise, metres.
	Jitter float64
	// BehindMatchDist2 is the squared radius within which a rear
	// sighting is matched to a known flag.
	BehindMatchDist2 float64
}

// DefaultParams returns the standard engine tuning.
func DefaultParams() Params {
	return Params{
		TargetCount:      50,
		MaxMarkers:       30,
		Jitter:           0.01,
		BehindMatchDist2: 3.0,
	}
}

// Validate reports parameter values the engine cannot run with.
func (p Params) Validate() error {
	if p.TargetCount <= 0 {
		return fmt.Errorf("target count must be positive, got %d", p.TargetCount)
	}
	if p.MaxMarkers < 0 {
		return fmt.Errorf("max markers must be non-negative, got %d", p.MaxMarkers)
	}
	if p.Jitter < 0 || math.IsNaN(p.Jitter) {
		return fmt.Errorf("jitter must be non-negative, got %v", p.Jitter)
	}
	if p.BehindMatchDist2 <= 0 {
		return fmt.Errorf("behind match distance must be positive, got %v", p.BehindMatchDist2)
	}
	return nil
}

// Pose is the observer's estimated position and heading. Valid is false
// when localization failed for the cycle.
type Pose struct {
	Pos        r2.Vec
	PosErr     r2.Vec
	Heading    float64
	HeadingErr float64
	Valid      bool

	// Candidates is the size of the set the estimate was averaged from.
	Candidates int
}

// Stage names a step of the candidate set state machine.
type Stage int

const (
	StageGenerate Stage = iota
	StageFilter
	StageResample
	StageRegenerate
	StageAverage
	StageBehindMatch
)

func (s Stage) String() string {
	switch s {
	case StageGenerate:
		return "generate"
	case StageFilter:
		return "filter"
	case StageResample:
		return "resample"
	case StageRegenerate:
		return "regenerate"
	case StageAverage:
		return "average"
	case StageBehindMatch:
		return "behind_match"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageEvent describes one transition of the candidate set.
type StageEvent struct {
	Cycle  int
	Stage  Stage
	Marker l2field.MarkerID
	Sector Sector
	Before int
	After  int
	// Points is a snapshot of the set after the stage.
	Points PointSet
}

// Tracer receives every stage event of a Localize call.
type Tracer interface {
	Trace(ev StageEvent)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ev StageEvent)

// Trace calls f(ev).
func (f TracerFunc) Trace(ev StageEvent) { f(ev) }

// Engine runs the candidate set algorithm for one agent.
type Engine struct {
	tables   *l1quant.Tables
	field    *l2field.LandmarkMap
	resolver l3bearing.Resolver
	params   Params
	rng      *rand.Rand
	tracer   Tracer
}

// NewEngine builds an engine whose resampling noise is drawn from a source
// seeded with seed.
func NewEngine(tables *l1quant.Tables, field *l2field.LandmarkMap, resolver l3bearing.Resolver, params Params, seed uint64) (*Engine, error) {
	if tables == nil || tables.Static == nil {
		return nil, errors.New("nil distance tables")
	}
	if field == nil {
		return nil, errors.New("nil landmark map")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return &Engine{
		tables:   tables,
		field:    field,
		resolver: resolver,
		params:   params,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// SetTracer installs t to receive stage events. Pass nil to disable.
func (e *Engine) SetTracer(t Tracer) { e.tracer = t }

// Params returns the engine's tuning.
func (e *Engine) Params() Params { return e.params }

// SectorFor returns the sector a landmark sighting constrains the observer
// to, given the observer's heading.
func (e *Engine) SectorFor(id l2field.MarkerID, dist, dir float64, h l3bearing.Heading) (Sector, bool) {
	center, ok := e.field.Position(id)
	if !ok {
		return Sector{}, false
	}
	d, ok := e.tables.Static.Lookup(dist)
	if !ok {
		return Sector{}, false
	}
	return NewSector(center, d, e.resolver.Resolve(dir, h.Dir, h.Err)), true
}

func (e *Engine) emit(cycle int, stage Stage, id l2field.MarkerID, s Sector, before int, set PointSet) {
	tracef("cycle %d %s %s: %d -> %d", cycle, stage, id, before, len(set))
	if e.tracer == nil {
		return
	}
	e.tracer.Trace(StageEvent{
		Cycle:  cycle,
		Stage:  stage,
		Marker: id,
		Sector: s,
		Before: before,
		After:  len(set),
		Points: set.Clone(),
	})
}

// refine intersects set with s, regenerating from s alone when nothing
// survives and resampling a thinned set.
func (e *Engine) refine(cycle int, set PointSet, id l2field.MarkerID, s Sector) PointSet {
	before := len(set)
	set = Filter(set, s)
	e.emit(cycle, StageFilter, id, s, before, set)

	if len(set) == 0 {
		set = Generate(s)
		e.emit(cycle, StageRegenerate, id, s, 0, set)
		diagf("cycle %d: candidates exhausted at %s, regenerated %d", cycle, id, len(set))
		return set
	}
	if len(set) < e.params.TargetCount {
		before = len(set)
		set = Resample(set, e.params.TargetCount, e.params.Jitter, e.rng)
		e.emit(cycle, StageResample, id, s, before, set)
	}
	return set
}

// Localize estimates the observer's position from the batch's landmark
// sightings and heading h. The nearest identified landmark seeds the
// candidate set; up to MaxMarkers further landmarks filter it; a rear
// sighting refines the result when it matches a known landmark.
func (e *Engine) Localize(b sighting.Batch, h l3bearing.Heading) (Pose, error) {
	markers := b.IdentifiedMarkers()
	if len(markers) == 0 {
		return Pose{}, fmt.Errorf("cycle %d: %w", b.Cycle, ErrNoMarkers)
	}

	var set PointSet
	next := len(markers)
	for i, m := range markers {
		s, ok := e.SectorFor(m.ID, m.Dist, m.Dir, h)
		if !ok {
			diagf("cycle %d: skipping seed %s at %.2f: out of table range", b.Cycle, m.ID, m.Dist)
			continue
		}
		set = Generate(s)
		e.emit(b.Cycle, StageGenerate, m.ID, s, 0, set)
		next = i + 1
		break
	}
	if len(set) == 0 {
		return Pose{}, fmt.Errorf("cycle %d: %w", b.Cycle, ErrSeedFailed)
	}

	used := 0
	for _, m := range markers[next:] {
		if used >= e.params.MaxMarkers {
			break
		}
		s, ok := e.SectorFor(m.ID, m.Dist, m.Dir, h)
		if !ok {
			continue
		}
		set = e.refine(b.Cycle, set, m.ID, s)
		used++
	}

	pos, _, _ := Average(set)
	if len(b.BehindMarkers) > 0 {
		set = e.refineBehind(b.Cycle, set, pos, b.BehindMarkers[0], h)
	}

	pos, posErr, ok := Average(set)
	if !ok {
		opsf("cycle %d: candidate set empty after refinement", b.Cycle)
		return Pose{}, fmt.Errorf("cycle %d: %w", b.Cycle, ErrSeedFailed)
	}
	e.emit(b.Cycle, StageAverage, l2field.MarkerUnknown, Sector{}, len(set), set)

	return Pose{
		Pos:        pos,
		PosErr:     posErr,
		Heading:    h.Dir,
		HeadingErr: h.Err,
		Valid:      true,
		Candidates: len(set),
	}, nil
}

// MatchBehind identifies a rear sighting from the current estimate at pos.
// Flags match the nearest known flag within BehindMatchDist2; goals are
// picked by which half of the pitch the estimated point lies in.
func (e *Engine) MatchBehind(pos r2.Vec, bm sighting.BehindMarker, h l3bearing.Heading) (l2field.MarkerID, bool) {
	d, ok := e.tables.Static.Lookup(bm.Dist)
	if !ok {
		return l2field.MarkerUnknown, false
	}
	rad := l3bearing.Rad(bm.Dir + h.Dir)
	est := r2.Add(pos, r2.Vec{X: d.Mean * math.Cos(rad), Y: d.Mean * math.Sin(rad)})

	if bm.Kind == sighting.BehindGoal {
		return e.field.NearestGoal(est), true
	}
	return e.field.Nearest(est, e.params.BehindMatchDist2)
}

func (e *Engine) refineBehind(cycle int, set PointSet, pos r2.Vec, bm sighting.BehindMarker, h l3bearing.Heading) PointSet {
	id, ok := e.MatchBehind(pos, bm, h)
	if !ok {
		diagf("cycle %d: unmatched %s behind at %.2f", cycle, bm.Kind, bm.Dist)
		return set
	}
	s, ok := e.SectorFor(id, bm.Dist, bm.Dir, h)
	if !ok {
		return set
	}
	e.emit(cycle, StageBehindMatch, id, s, len(set), set)
	return e.refine(cycle, set, id, s)
}
