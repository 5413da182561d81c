package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/fieldpose/internal/localize/storage/sqlite"
	"github.com/gocarina/gocsv"
)

// Row is one CSV line per cycle.
type Row struct {
	Cycle         int     `csv:"cycle"`
	Heading       float64 `csv:"heading"`
	HeadingErr    float64 `csv:"heading_err"`
	HeadingSource string  `csv:"heading_source"`
	PoseValid     bool    `csv:"pose_valid"`
	X             float64 `csv:"x"`
	Y             float64 `csv:"y"`
	ErrX          float64 `csv:"err_x"`
	ErrY          float64 `csv:"err_y"`
	Candidates    int     `csv:"candidates"`
	BallValid     bool    `csv:"ball_valid"`
	BallX         float64 `csv:"ball_x"`
	BallY         float64 `csv:"ball_y"`
	Players       int     `csv:"players"`
	TruthValid    bool    `csv:"truth_valid"`
	TruthX        float64 `csv:"truth_x"`
	TruthY        float64 `csv:"truth_y"`
	PosError      float64 `csv:"pos_error"`
	ElapsedUs     float64 `csv:"elapsed_us"`
	Failures      string  `csv:"failures"`
}

// NewRow flattens rec. PosError is zero unless both estimate and truth
// are present.
func NewRow(rec sqlite.CycleRecord) Row {
	row := Row{
		Cycle:         rec.Cycle,
		Heading:       rec.Heading,
		HeadingErr:    rec.HeadingErr,
		HeadingSource: rec.HeadingSource,
		PoseValid:     rec.PoseValid,
		X:             rec.Pos.X,
		Y:             rec.Pos.Y,
		ErrX:          rec.PosErr.X,
		ErrY:          rec.PosErr.Y,
		Candidates:    rec.Candidates,
		BallValid:     rec.BallValid,
		BallX:         rec.Ball.X,
		BallY:         rec.Ball.Y,
		Players:       rec.Players,
		ElapsedUs:     float64(rec.ElapsedNs) / 1e3,
		Failures:      rec.Failures,
	}
	if rec.Truth != nil {
		row.TruthValid = true
		row.TruthX, row.TruthY = rec.Truth.X, rec.Truth.Y
	}
	if e, ok := rec.PosError(); ok {
		row.PosError = e
	}
	return row
}

// WriteCSV writes recs with a header line.
func WriteCSV(w io.Writer, recs []sqlite.CycleRecord) error {
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		rows[i] = NewRow(rec)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing cycles csv: %w", err)
	}
	return nil
}

// CSVWriter appends rows to w, writing the header with the first batch.
type CSVWriter struct {
	w             io.Writer
	headerWritten bool
}

// NewCSVWriter returns a writer that streams rows to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// Write appends rec.
func (cw *CSVWriter) Write(rec sqlite.CycleRecord) error {
	rows := []Row{NewRow(rec)}
	if !cw.headerWritten {
		if err := gocsv.Marshal(rows, cw.w); err != nil {
			return fmt.Errorf("writing cycle %d: %w", rec.Cycle, err)
		}
		cw.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, cw.w); err != nil {
		return fmt.Errorf("writing cycle %d: %w", rec.Cycle, err)
	}
	return nil
}
