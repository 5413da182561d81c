package sighting

import (
	"testing"

	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unsupported struct{}

func (unsupported) sighting() {}

func TestNewBatch_GroupsAndSorts(t *testing.T) {
	t.Parallel()

	b, err := NewBatch(42, []Sighting{
		Marker{ID: l2field.FlagR0, Dist: 30, Dir: 0},
		Line{ID: l2field.LineRight, Dist: 40, Dir: 80},
		Marker{ID: l2field.MarkerUnknown, Dist: 70, Dir: 5},
		Ball{Dist: 5, Dir: 10},
		Marker{ID: l2field.FlagC, Dist: 12, Dir: -20},
		Player{Side: SideOpponent, Unum: 7, Dist: 8, Dir: 3},
		BehindMarker{Kind: BehindFlag, Dist: 2.5, Dir: 170},
		Line{ID: l2field.LineTop, Dist: 20, Dir: -60},
	})
	require.NoError(t, err)

	assert.Equal(t, 42, b.Cycle)
	require.Len(t, b.Markers, 3)
	assert.Equal(t, l2field.FlagC, b.Markers[0].ID)
	assert.Equal(t, l2field.FlagR0, b.Markers[1].ID)
	assert.Equal(t, l2field.MarkerUnknown, b.Markers[2].ID)

	require.Len(t, b.Lines, 2)
	assert.Equal(t, l2field.LineTop, b.Lines[0].ID)

	require.NotNil(t, b.Ball)
	assert.Equal(t, 5.0, b.Ball.Dist)
	require.Len(t, b.Players, 1)
	assert.Equal(t, SideOpponent, b.Players[0].Side)
	require.Len(t, b.BehindMarkers, 1)

	ids := b.IdentifiedMarkers()
	require.Len(t, ids, 2)
	assert.Equal(t, l2field.FlagC, ids[0].ID)
}

func TestNewBatch_RejectsUnsupportedSighting(t *testing.T) {
	t.Parallel()

	_, err := NewBatch(1, []Sighting{unsupported{}})
	assert.Error(t, err)
}

func TestNewBatch_Empty(t *testing.T) {
	t.Parallel()

	b, err := NewBatch(3, nil)
	require.NoError(t, err)
	assert.Nil(t, b.Ball)
	assert.Empty(t, b.Markers)
	assert.Empty(t, b.IdentifiedMarkers())
}
