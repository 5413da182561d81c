package scenario

import (
	"testing"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(view View) *Generator {
	field := l2field.NewLandmarkMap(l2field.DefaultFieldGeometry())
	return NewGenerator(field, l1quant.DefaultStaticStep, l1quant.DefaultMovableStep, view)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	s, err := Load("testdata/two_cycles.yaml")
	require.NoError(t, err)
	assert.Equal(t, "two-cycles", s.Name)
	require.NotNil(t, s.Seed)
	assert.Equal(t, uint64(7), *s.Seed)
	require.Len(t, s.Cycles, 2)

	truth := s.Cycles[0].Truth
	require.NotNil(t, truth)
	assert.Equal(t, -10.0, truth.Self.X)
	require.Len(t, truth.Players, 1)
	assert.Equal(t, 9, truth.Players[0].Unum)
	assert.Equal(t, 5.0, truth.Players[0].X)

	frames, err := s.Frames(newTestGenerator(s.View))
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.True(t, frames[0].Motion.Valid)
	assert.Equal(t, 0.2, frames[0].Motion.Vel.X)
	assert.NotEmpty(t, frames[0].Batch.Markers)

	b := frames[1].Batch
	assert.Equal(t, 2, b.Cycle)
	require.Len(t, b.Markers, 3)
	assert.Equal(t, l2field.FlagC, b.Markers[0].ID)
	assert.Equal(t, l2field.MarkerUnknown, b.Markers[2].ID)
	require.Len(t, b.BehindMarkers, 1)
	require.NotNil(t, b.Ball)
	require.NotNil(t, b.Ball.Rate)
	assert.Equal(t, 0.1, b.Ball.Rate.DistChg)
	require.Len(t, b.Players, 1)
	assert.Equal(t, sighting.SideTeammate, b.Players[0].Side)
	require.NotNil(t, b.Players[0].Body)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, l2field.LineRight, b.Lines[0].ID)
	assert.False(t, frames[1].Motion.Valid)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no cycles":   "name: empty\n",
		"empty cycle": "cycles:\n  - cycle: 1\n",
		"bad yaml":    "cycles: [\n",
		"wide view":   "view: {width: 400}\ncycles:\n  - cycle: 1\n    truth: {self: {x: 0, y: 0, face: 0}}\n",
	}
	for name, doc := range cases {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestFrames_BadObservedNames(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte("cycles:\n  - cycle: 3\n    observed:\n      markers:\n        - {id: \"f nowhere\", dist: 3, dir: 0}\n"))
	require.NoError(t, err)
	_, err = s.Frames(newTestGenerator(View{}))
	assert.ErrorIs(t, err, l2field.ErrUnknownMarker)
}

func TestFieldGeometry_Overrides(t *testing.T) {
	t.Parallel()

	def := l2field.DefaultFieldGeometry()
	s := &Scenario{}
	assert.Equal(t, def, s.FieldGeometry(def))

	s.Geometry = &Geometry{PitchHalfLength: 60}
	g := s.FieldGeometry(def)
	assert.Equal(t, 60.0, g.PitchHalfLength)
	assert.Equal(t, def.PitchHalfWidth, g.PitchHalfWidth)
}

func TestObserve_ViewCone(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(View{Width: 90})
	b := g.Observe(5, Truth{Self: Pose{X: -10, Y: 5, Face: 0}})

	assert.Equal(t, 5, b.Cycle)
	require.NotEmpty(t, b.Markers)
	for _, m := range b.Markers {
		assert.LessOrEqual(t, m.Dir, 45.0)
		assert.GreaterOrEqual(t, m.Dir, -45.0)
		assert.True(t, m.Identified())
	}
	for i := 1; i < len(b.Markers); i++ {
		assert.LessOrEqual(t, b.Markers[i-1].Dist, b.Markers[i].Dist)
	}
	assert.Empty(t, b.BehindMarkers)
	assert.Nil(t, b.Ball)
}

func TestObserve_BehindAndUnidentified(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(View{Width: 90, UnidentifiedRange: 40})
	// Two metres in front of the centre flag, facing away from it.
	b := g.Observe(1, Truth{Self: Pose{X: 2, Y: 0, Face: 0}})

	require.Len(t, b.BehindMarkers, 1)
	assert.Equal(t, sighting.BehindFlag, b.BehindMarkers[0].Kind)
	assert.InDelta(t, 180, l3bearing.Diff(b.BehindMarkers[0].Dir, 0), 0.5)

	var unknown int
	for _, m := range b.Markers {
		if !m.Identified() {
			unknown++
			assert.Greater(t, m.Dist, 39.0)
		}
	}
	assert.Positive(t, unknown)
}

func TestObserve_BallRate(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(View{})
	b := g.Observe(1, Truth{
		Self: Pose{Face: 0},
		Ball: &Object{X: 10, VX: 1, VY: 0.5},
	})
	require.NotNil(t, b.Ball)
	assert.Equal(t, 0.0, b.Ball.Dir)
	require.NotNil(t, b.Ball.Rate)
	assert.InDelta(t, 0.1*b.Ball.Dist, b.Ball.Rate.DistChg, 0.011)
	assert.InDelta(t, l3bearing.Deg(0.05), b.Ball.Rate.DirChg, 0.051)

	far := newTestGenerator(View{RateRange: 5})
	b = far.Observe(1, Truth{Ball: &Object{X: 10}})
	require.NotNil(t, b.Ball)
	assert.Nil(t, b.Ball.Rate)
}

func TestObserve_LineDecodesToFace(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(View{})
	r := l3bearing.NewResolver()
	for face := -179.0; face <= 180; face += 7.3 {
		b := g.Observe(1, Truth{Self: Pose{X: 10, Y: -5, Face: face}})
		require.Len(t, b.Lines, 1, "face %v", face)
		h, ok := r.FaceByLines(b.Lines)
		require.True(t, ok)
		assert.LessOrEqual(t, l3bearing.Diff(h.Dir, face), h.Err+1e-9, "face %v decoded %v", face, h.Dir)
	}

	outside := g.Observe(1, Truth{Self: Pose{X: 55, Y: 0, Face: 180}})
	assert.Empty(t, outside.Lines)
}
