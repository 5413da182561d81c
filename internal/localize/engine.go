package localize

import (
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/fieldpose/internal/config"
	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/l4selfpos"
	"github.com/banshee-data/fieldpose/internal/localize/l5objects"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"github.com/banshee-data/fieldpose/internal/timeutil"
)

// Step names a stage of the per-cycle sequence.
type Step string

const (
	StepHeading Step = "heading"
	StepSelf    Step = "self"
	StepBall    Step = "ball"
	StepPlayer  Step = "player"
)

// Failure records a step that produced no estimate.
type Failure struct {
	Step Step
	// Index is the player's position in the batch for StepPlayer, else -1.
	Index int
	Err   error
}

func (f Failure) String() string {
	if f.Step == StepPlayer {
		return fmt.Sprintf("%s[%d]: %v", f.Step, f.Index, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Step, f.Err)
}

// CycleResult is everything one cycle produced.
type CycleResult struct {
	Cycle   int
	Heading l3bearing.Heading
	Pose    l4selfpos.Pose
	Ball    *l5objects.BallEstimate
	Players []l5objects.PlayerEstimate
	// Failures lists the steps that produced nothing, in order.
	Failures []Failure
	Elapsed  time.Duration
}

// Failed reports whether step failed this cycle.
func (r CycleResult) Failed(step Step) bool {
	for _, f := range r.Failures {
		if f.Step == step {
			return true
		}
	}
	return false
}

type options struct {
	tracer l4selfpos.Tracer
	seed   *uint64
	tables *l1quant.Tables
	clock  timeutil.Clock
}

// Option customizes New.
type Option func(*options)

// WithTracer forwards candidate set stage events to t.
func WithTracer(t l4selfpos.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithSeed overrides the configured resampling seed.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = &seed }
}

// WithTables reuses prebuilt inversion tables, typically shared by every
// agent in a process.
func WithTables(t *l1quant.Tables) Option {
	return func(o *options) { o.tables = t }
}

// WithClock times cycles with c instead of the system clock.
func WithClock(c timeutil.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Engine runs the localization layers for one agent. It is not safe for
// concurrent use.
type Engine struct {
	tables   *l1quant.Tables
	field    *l2field.LandmarkMap
	resolver l3bearing.Resolver
	selfPos  *l4selfpos.Engine
	objects  *l5objects.Localizer
	clock    timeutil.Clock
}

// New builds an engine from cfg. A nil cfg uses the built-in defaults.
func New(cfg *config.TuningConfig, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	geom := FieldGeometryFromTuning(cfg)
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid field geometry: %w", err)
	}

	tables := o.tables
	if tables == nil {
		tables = l1quant.NewTables(cfg.GetStaticQStep(), cfg.GetMovableQStep())
	} else if tables.Static == nil || tables.Movable == nil {
		return nil, errors.New("shared tables incomplete")
	} else if tables.Static.Step() != cfg.GetStaticQStep() || tables.Movable.Step() != cfg.GetMovableQStep() {
		opsf("shared tables built with steps %v/%v, tuning asks for %v/%v",
			tables.Static.Step(), tables.Movable.Step(), cfg.GetStaticQStep(), cfg.GetMovableQStep())
	}

	seed := cfg.GetRNGSeed()
	if o.seed != nil {
		seed = *o.seed
	}

	field := l2field.NewLandmarkMap(geom)
	resolver := ResolverFromTuning(cfg)
	selfPos, err := l4selfpos.NewEngine(tables, field, resolver, SelfPosParamsFromTuning(cfg), seed)
	if err != nil {
		return nil, fmt.Errorf("self position engine: %w", err)
	}
	selfPos.SetTracer(o.tracer)
	objects, err := l5objects.NewLocalizer(tables.Movable, resolver, ObjectParamsFromTuning(cfg))
	if err != nil {
		return nil, fmt.Errorf("object localizer: %w", err)
	}

	clock := o.clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	return &Engine{
		tables:   tables,
		field:    field,
		resolver: resolver,
		selfPos:  selfPos,
		objects:  objects,
		clock:    clock,
	}, nil
}

// Tables returns the inversion tables the engine reads.
func (e *Engine) Tables() *l1quant.Tables { return e.tables }

// Field returns the landmark map the engine reads.
func (e *Engine) Field() *l2field.LandmarkMap { return e.field }

// EstimateSelfHeading resolves the observer's face direction from boundary
// lines, falling back to landmark pairs.
func (e *Engine) EstimateSelfHeading(b sighting.Batch) (l3bearing.Heading, error) {
	return e.resolver.EstimateFace(b, e.field, e.tables.Static)
}

// LocalizeSelf estimates the observer's position given heading h.
func (e *Engine) LocalizeSelf(b sighting.Batch, h l3bearing.Heading) (l4selfpos.Pose, error) {
	return e.selfPos.Localize(b, h)
}

// LocalizeBall places the ball relative to self, and on the pitch when
// self is valid.
func (e *Engine) LocalizeBall(self l4selfpos.Pose, motion sighting.SelfMotion, ball sighting.Ball) (l5objects.BallEstimate, error) {
	return e.objects.LocalizeBall(self, motion, ball)
}

// LocalizePlayer places a player on the pitch.
func (e *Engine) LocalizePlayer(self l4selfpos.Pose, motion sighting.SelfMotion, p sighting.Player) (l5objects.PlayerEstimate, error) {
	return e.objects.LocalizePlayer(self, motion, p)
}

// Cycle runs heading, self, ball, and player localization on one batch.
// Ball and players are skipped when self localization fails.
func (e *Engine) Cycle(b sighting.Batch, motion sighting.SelfMotion) CycleResult {
	start := e.clock.Now()
	res := CycleResult{Cycle: b.Cycle}

	fail := func(step Step, idx int, err error) {
		res.Failures = append(res.Failures, Failure{Step: step, Index: idx, Err: err})
		diagf("cycle %d: %s failed: %v", b.Cycle, step, err)
	}

	h, err := e.EstimateSelfHeading(b)
	if err != nil {
		fail(StepHeading, -1, err)
		res.Elapsed = e.clock.Since(start)
		return res
	}
	res.Heading = h

	pose, err := e.LocalizeSelf(b, h)
	if err != nil {
		fail(StepSelf, -1, err)
		res.Elapsed = e.clock.Since(start)
		return res
	}
	res.Pose = pose

	if b.Ball != nil {
		ball, err := e.LocalizeBall(pose, motion, *b.Ball)
		if err != nil {
			fail(StepBall, -1, err)
		} else {
			res.Ball = &ball
		}
	}

	res.Players = make([]l5objects.PlayerEstimate, 0, len(b.Players))
	for i, p := range b.Players {
		est, err := e.LocalizePlayer(pose, motion, p)
		if err != nil {
			fail(StepPlayer, i, err)
			continue
		}
		res.Players = append(res.Players, est)
	}

	res.Elapsed = e.clock.Since(start)
	tracef("cycle %d: pose (%.2f, %.2f) ±(%.2f, %.2f) heading %.1f from %s, %d players, %d failures in %v",
		b.Cycle, pose.Pos.X, pose.Pos.Y, pose.PosErr.X, pose.PosErr.Y, h.Dir, h.Source,
		len(res.Players), len(res.Failures), res.Elapsed)
	return res
}
