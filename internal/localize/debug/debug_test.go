package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/l4selfpos"
	"github.com/banshee-data/fieldpose/internal/localize/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCollector_InitiallyDisabled(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.IsEnabled())

	c.BeginCycle(1)
	c.Trace(l4selfpos.StageEvent{Stage: l4selfpos.StageGenerate})
	assert.Nil(t, c.Emit())
}

func TestCollector_DropsEventsOutsideCycle(t *testing.T) {
	c := NewCollector()
	c.SetEnabled(true)

	c.Trace(l4selfpos.StageEvent{Stage: l4selfpos.StageGenerate})
	assert.Nil(t, c.Emit())

	c.BeginCycle(2)
	c.Trace(l4selfpos.StageEvent{Stage: l4selfpos.StageGenerate, After: 10, Points: l4selfpos.PointSet{{X: 1}}})
	c.Reset()
	assert.Nil(t, c.Emit())
}

func TestCollector_RecordsStages(t *testing.T) {
	c := NewCollector()
	c.SetEnabled(true)
	c.BeginCycle(7)
	c.Trace(l4selfpos.StageEvent{Stage: l4selfpos.StageGenerate, Marker: l2field.FlagC, After: 512, Points: l4selfpos.PointSet{{X: 1}}})
	c.Trace(l4selfpos.StageEvent{Stage: l4selfpos.StageFilter, Marker: l2field.FlagR0, Before: 512, After: 0})
	c.Trace(l4selfpos.StageEvent{Stage: l4selfpos.StageRegenerate, Marker: l2field.FlagR0, After: 256})

	trace := c.Emit()
	require.NotNil(t, trace)
	assert.Equal(t, 7, trace.Cycle)
	require.Len(t, trace.Stages, 3)
	assert.Nil(t, trace.Stages[0].Points, "points dropped unless requested")
	assert.Equal(t, 1, trace.Count(l4selfpos.StageFilter))
	assert.True(t, trace.Regenerated())

	assert.Nil(t, c.Emit(), "emit clears the cycle")
}

func localizeTraced(t *testing.T, c *Collector) r2.Vec {
	t.Helper()
	tables := l1quant.NewTables(l1quant.DefaultStaticStep, l1quant.DefaultMovableStep)
	field := l2field.NewLandmarkMap(l2field.DefaultFieldGeometry())
	e, err := l4selfpos.NewEngine(tables, field, l3bearing.NewResolver(), l4selfpos.DefaultParams(), 3)
	require.NoError(t, err)
	e.SetTracer(c)

	truth := scenario.Truth{Self: scenario.Pose{X: 20, Y: -10, Face: -30}}
	gen := scenario.NewGenerator(field, l1quant.DefaultStaticStep, l1quant.DefaultMovableStep, scenario.View{})
	b := gen.Observe(5, truth)
	h, err := l3bearing.NewResolver().EstimateFace(b, field, tables.Static)
	require.NoError(t, err)

	c.BeginCycle(b.Cycle)
	_, err = e.Localize(b, h)
	require.NoError(t, err)
	return truth.Self.Pos()
}

func TestPlotCandidates(t *testing.T) {
	c := NewCollector()
	c.SetEnabled(true)
	c.SetKeepPoints(true)
	truth := localizeTraced(t, c)

	trace := c.Emit()
	require.NotNil(t, trace)
	assert.Equal(t, 1, trace.Count(l4selfpos.StageGenerate))
	assert.Equal(t, 1, trace.Count(l4selfpos.StageAverage))

	file := filepath.Join(t.TempDir(), "cycle5.png")
	require.NoError(t, PlotCandidates(trace, &truth, file))
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPlotCandidates_NeedsPoints(t *testing.T) {
	c := NewCollector()
	c.SetEnabled(true)
	localizeTraced(t, c)

	err := PlotCandidates(c.Emit(), nil, filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)

	assert.Error(t, PlotCandidates(nil, nil, "x.png"))
}

func TestSectorOutline_Closed(t *testing.T) {
	s := l4selfpos.Sector{Center: r2.Vec{X: 1}, MinR: 2, MaxR: 3, Left: 10, Span: 40}
	xy := sectorOutline(s)
	require.Len(t, xy, 2*(arcSegments+1)+1)
	assert.Equal(t, xy[0], xy[len(xy)-1])
}
