package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/banshee-data/fieldpose/internal/localize"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one replay of a scenario.
type Run struct {
	RunID     string `json:"run_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// CycleRecord is the persisted form of one cycle result.
type CycleRecord struct {
	RunID         string  `json:"run_id"`
	Cycle         int     `json:"cycle"`
	Heading       float64 `json:"heading"`
	HeadingErr    float64 `json:"heading_err"`
	HeadingSource string  `json:"heading_source"`
	PoseValid     bool    `json:"pose_valid"`
	Pos           r2.Vec  `json:"pos"`
	PosErr        r2.Vec  `json:"pos_err"`
	Candidates    int     `json:"candidates"`
	BallValid     bool    `json:"ball_valid"`
	Ball          r2.Vec  `json:"ball"`
	Players       int     `json:"players"`
	Failures      string  `json:"failures,omitempty"`
	ElapsedNs     int64   `json:"elapsed_ns"`
	Truth         *r2.Vec `json:"truth,omitempty"`
}

// PosError returns the distance between the estimate and the truth, and
// false when either is missing.
func (r CycleRecord) PosError() (float64, bool) {
	if !r.PoseValid || r.Truth == nil {
		return 0, false
	}
	return r2.Norm(r2.Sub(r.Pos, *r.Truth)), true
}

// Summary aggregates a run's cycles.
type Summary struct {
	Cycles    int     `json:"cycles"`
	Valid     int     `json:"valid"`
	Compared  int     `json:"compared"`
	MeanError float64 `json:"mean_error"`
	MaxError  float64 `json:"max_error"`
}

// NewRecord flattens res. truth is the observer's true position, if known.
func NewRecord(runID string, res localize.CycleResult, truth *r2.Vec) CycleRecord {
	rec := CycleRecord{
		RunID:         runID,
		Cycle:         res.Cycle,
		Heading:       res.Heading.Dir,
		HeadingErr:    res.Heading.Err,
		HeadingSource: res.Heading.Source.String(),
		PoseValid:     res.Pose.Valid,
		Pos:           res.Pose.Pos,
		PosErr:        res.Pose.PosErr,
		Candidates:    res.Pose.Candidates,
		Players:       len(res.Players),
		ElapsedNs:     res.Elapsed.Nanoseconds(),
		Truth:         truth,
	}
	if res.Ball != nil && res.Ball.PosValid {
		rec.BallValid = true
		rec.Ball = res.Ball.Pos
	}
	if len(res.Failures) > 0 {
		parts := make([]string, len(res.Failures))
		for i, f := range res.Failures {
			parts[i] = f.String()
		}
		rec.Failures = strings.Join(parts, "; ")
	}
	return rec
}

// CycleStore provides persistence for cycle results.
type CycleStore struct {
	db *sql.DB
}

// NewCycleStore creates a new CycleStore over a migrated database.
func NewCycleStore(db *sql.DB) *CycleStore {
	return &CycleStore{db: db}
}

// NewRun registers a run and returns it with a fresh id.
func (s *CycleStore) NewRun(name string) (*Run, error) {
	run := &Run{
		RunID:     uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UnixNano(),
	}
	_, err := s.db.Exec(`INSERT INTO localize_runs (run_id, name, created_at) VALUES (?, ?, ?)`,
		run.RunID, run.Name, run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// GetRun returns a run by id.
func (s *CycleStore) GetRun(runID string) (*Run, error) {
	var run Run
	err := s.db.QueryRow(`SELECT run_id, name, created_at FROM localize_runs WHERE run_id = ?`, runID).
		Scan(&run.RunID, &run.Name, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &run, nil
}

// Insert persists one cycle result under runID.
func (s *CycleStore) Insert(runID string, res localize.CycleResult, truth *r2.Vec) error {
	return s.InsertRecord(NewRecord(runID, res, truth))
}

// InsertRecord persists rec, replacing any earlier record of the same cycle.
func (s *CycleStore) InsertRecord(rec CycleRecord) error {
	var ballX, ballY, truthX, truthY interface{}
	if rec.BallValid {
		ballX, ballY = rec.Ball.X, rec.Ball.Y
	}
	if rec.Truth != nil {
		truthX, truthY = rec.Truth.X, rec.Truth.Y
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO localize_cycles (
			run_id, cycle, heading, heading_err, heading_source,
			pose_valid, pos_x, pos_y, pos_err_x, pos_err_y, candidates,
			ball_valid, ball_x, ball_y, players, failures, elapsed_ns,
			truth_x, truth_y
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Cycle, rec.Heading, rec.HeadingErr, rec.HeadingSource,
		rec.PoseValid, rec.Pos.X, rec.Pos.Y, rec.PosErr.X, rec.PosErr.Y, rec.Candidates,
		rec.BallValid, ballX, ballY, rec.Players, rec.Failures, rec.ElapsedNs,
		truthX, truthY,
	)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", rec.Cycle, err)
	}
	return nil
}

// ListByRun returns a run's cycles in cycle order.
func (s *CycleStore) ListByRun(runID string) ([]CycleRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, cycle, heading, heading_err, heading_source,
		       pose_valid, pos_x, pos_y, pos_err_x, pos_err_y, candidates,
		       ball_valid, ball_x, ball_y, players, failures, elapsed_ns,
		       truth_x, truth_y
		FROM localize_cycles
		WHERE run_id = ?
		ORDER BY cycle`, runID)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		var ballX, ballY, truthX, truthY sql.NullFloat64
		err := rows.Scan(
			&rec.RunID, &rec.Cycle, &rec.Heading, &rec.HeadingErr, &rec.HeadingSource,
			&rec.PoseValid, &rec.Pos.X, &rec.Pos.Y, &rec.PosErr.X, &rec.PosErr.Y, &rec.Candidates,
			&rec.BallValid, &ballX, &ballY, &rec.Players, &rec.Failures, &rec.ElapsedNs,
			&truthX, &truthY,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		if ballX.Valid && ballY.Valid {
			rec.Ball = r2.Vec{X: ballX.Float64, Y: ballY.Float64}
		}
		if truthX.Valid && truthY.Valid {
			rec.Truth = &r2.Vec{X: truthX.Float64, Y: truthY.Float64}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary aggregates a run's cycles. Position error is averaged over the
// cycles that have both a valid estimate and a truth.
func (s *CycleStore) Summary(runID string) (Summary, error) {
	if _, err := s.GetRun(runID); err != nil {
		return Summary{}, err
	}
	recs, err := s.ListByRun(runID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(recs), nil
}

// Summarize aggregates recs.
func Summarize(recs []CycleRecord) Summary {
	var sum Summary
	var total float64
	for _, rec := range recs {
		sum.Cycles++
		if rec.PoseValid {
			sum.Valid++
		}
		if e, ok := rec.PosError(); ok {
			sum.Compared++
			total += e
			sum.MaxError = math.Max(sum.MaxError, e)
		}
	}
	if sum.Compared > 0 {
		sum.MeanError = total / float64(sum.Compared)
	}
	return sum
}
