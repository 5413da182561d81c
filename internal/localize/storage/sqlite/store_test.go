package sqlite

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/fieldpose/internal/localize"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/l4selfpos"
	"github.com/banshee-data/fieldpose/internal/localize/l5objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "replay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func validResult(cycle int, pos r2.Vec) localize.CycleResult {
	return localize.CycleResult{
		Cycle:   cycle,
		Heading: l3bearing.Heading{Dir: 20, Err: 0.5, Source: l3bearing.SourceLines},
		Pose: l4selfpos.Pose{
			Pos:        pos,
			PosErr:     r2.Vec{X: 0.3, Y: 0.4},
			Heading:    20,
			HeadingErr: 0.5,
			Valid:      true,
			Candidates: 17,
		},
		Ball:    &l5objects.BallEstimate{Pos: r2.Vec{X: 1, Y: 2}, PosValid: true},
		Players: make([]l5objects.PlayerEstimate, 2),
		Elapsed: 150 * time.Microsecond,
	}
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	version, dirty, err := MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Running again is a no-op.
	require.NoError(t, Migrate(db))
}

func TestCycleStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewCycleStore(setupTestDB(t))
	run, err := store.NewRun("two_cycles")
	require.NoError(t, err)
	assert.NotEmpty(t, run.RunID)

	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "two_cycles", got.Name)

	truth := r2.Vec{X: -10, Y: 5}
	require.NoError(t, store.Insert(run.RunID, validResult(2, r2.Vec{X: -9, Y: 5}), &truth))

	failed := localize.CycleResult{
		Cycle:    1,
		Failures: []localize.Failure{{Step: localize.StepHeading, Index: -1, Err: l3bearing.ErrNoHeading}},
	}
	require.NoError(t, store.Insert(run.RunID, failed, nil))

	recs, err := store.ListByRun(run.RunID)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, 1, first.Cycle)
	assert.False(t, first.PoseValid)
	assert.False(t, first.BallValid)
	assert.Nil(t, first.Truth)
	assert.Equal(t, "heading: no heading source", first.Failures)

	second := recs[1]
	assert.Equal(t, 2, second.Cycle)
	assert.True(t, second.PoseValid)
	assert.Equal(t, "lines", second.HeadingSource)
	assert.Equal(t, r2.Vec{X: -9, Y: 5}, second.Pos)
	assert.Equal(t, 17, second.Candidates)
	assert.True(t, second.BallValid)
	assert.Equal(t, r2.Vec{X: 1, Y: 2}, second.Ball)
	assert.Equal(t, 2, second.Players)
	assert.Equal(t, int64(150000), second.ElapsedNs)
	require.NotNil(t, second.Truth)
	assert.Equal(t, truth, *second.Truth)

	t.Run("replace same cycle", func(t *testing.T) {
		require.NoError(t, store.Insert(run.RunID, validResult(2, r2.Vec{X: -10, Y: 5}), &truth))
		recs, err := store.ListByRun(run.RunID)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, -10.0, recs[1].Pos.X)
	})
}

func TestCycleStore_Summary(t *testing.T) {
	t.Parallel()

	store := NewCycleStore(setupTestDB(t))
	run, err := store.NewRun("summary")
	require.NoError(t, err)

	truth := r2.Vec{X: 0, Y: 0}
	require.NoError(t, store.Insert(run.RunID, validResult(1, r2.Vec{X: 3, Y: 4}), &truth))
	require.NoError(t, store.Insert(run.RunID, validResult(2, r2.Vec{X: 1, Y: 0}), &truth))
	require.NoError(t, store.Insert(run.RunID, validResult(3, r2.Vec{X: 9, Y: 9}), nil))
	require.NoError(t, store.Insert(run.RunID, localize.CycleResult{Cycle: 4}, &truth))

	sum, err := store.Summary(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Cycles)
	assert.Equal(t, 3, sum.Valid)
	assert.Equal(t, 2, sum.Compared)
	assert.InDelta(t, 3.0, sum.MeanError, 1e-12)
	assert.InDelta(t, 5.0, sum.MaxError, 1e-12)

	_, err = store.Summary("missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestCycleStore_InsertUnknownRun(t *testing.T) {
	t.Parallel()

	store := NewCycleStore(setupTestDB(t))
	err := store.Insert("no-such-run", validResult(1, r2.Vec{}), nil)
	assert.Error(t, err, "foreign key should reject an unregistered run")
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Summary{}, Summarize(nil))
}
