// Command fieldpose-replay runs a scenario file through the localization
// engine and reports how far the estimates landed from the truth.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/fieldpose/internal/config"
	"github.com/banshee-data/fieldpose/internal/localize"
	"github.com/banshee-data/fieldpose/internal/localize/debug"
	"github.com/banshee-data/fieldpose/internal/localize/report"
	"github.com/banshee-data/fieldpose/internal/localize/scenario"
	"github.com/banshee-data/fieldpose/internal/localize/storage/sqlite"
	"github.com/banshee-data/fieldpose/internal/version"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("fieldpose-replay: %v", err)
	}
}

type options struct {
	configPath   string
	scenarioPath string
	dbPath       string
	csvPath      string
	htmlPath     string
	plotDir      string
	diag         bool
	trace        bool
	version      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("fieldpose-replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Tuning JSON file (built-in defaults when empty)")
	fs.StringVar(&o.scenarioPath, "scenario", "", "Scenario YAML file (required)")
	fs.StringVar(&o.dbPath, "db", "", "SQLite file to record cycles into")
	fs.StringVar(&o.csvPath, "csv", "", "Write per-cycle CSV to this path")
	fs.StringVar(&o.htmlPath, "html", "", "Write trajectory chart HTML to this path")
	fs.StringVar(&o.plotDir, "plot-dir", "", "Write candidate set plots for each cycle into this directory")
	fs.BoolVar(&o.diag, "diag", false, "Log per-cycle failure reasons")
	fs.BoolVar(&o.trace, "trace", false, "Log per-stage candidate counts")
	fs.BoolVar(&o.version, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.version {
		return o, nil
	}
	if o.scenarioPath == "" {
		return o, errors.New("-scenario is required")
	}
	return o, nil
}

// loadTuning reads the tuning file and applies the scenario's geometry
// overrides on top.
func loadTuning(path string, sc *scenario.Scenario) (*config.TuningConfig, error) {
	cfg := config.EmptyTuningConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(path); err != nil {
			return nil, err
		}
	}
	geom := sc.FieldGeometry(localize.FieldGeometryFromTuning(cfg))
	cfg.PitchHalfLength = &geom.PitchHalfLength
	cfg.PitchHalfWidth = &geom.PitchHalfWidth
	cfg.PitchMargin = &geom.PitchMargin
	cfg.GoalHalfWidth = &geom.GoalHalfWidth
	cfg.PenaltyAreaLength = &geom.PenaltyAreaLength
	cfg.PenaltyAreaHalfWidth = &geom.PenaltyAreaHalfWidth
	if sc.Seed != nil {
		seed := *sc.Seed
		cfg.RNGSeed = &seed
	}
	return cfg, cfg.Validate()
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintf(stdout, "fieldpose-replay %s\n", version.String())
		return nil
	}

	var diagW, traceW io.Writer
	if o.diag {
		diagW = stderr
	}
	if o.trace {
		traceW = stderr
	}
	localize.SetLogWriters(stderr, diagW, traceW)

	sc, err := scenario.Load(o.scenarioPath)
	if err != nil {
		return err
	}
	cfg, err := loadTuning(o.configPath, sc)
	if err != nil {
		return fmt.Errorf("tuning: %w", err)
	}

	var engineOpts []localize.Option
	collector := debug.NewCollector()
	if o.plotDir != "" {
		if err := os.MkdirAll(o.plotDir, 0o755); err != nil {
			return fmt.Errorf("create plot dir: %w", err)
		}
		collector.SetEnabled(true)
		collector.SetKeepPoints(true)
		engineOpts = append(engineOpts, localize.WithTracer(collector))
	}
	eng, err := localize.New(cfg, engineOpts...)
	if err != nil {
		return err
	}

	gen := scenario.NewGenerator(eng.Field(), cfg.GetStaticQStep(), cfg.GetMovableQStep(), sc.View)
	frames, err := sc.Frames(gen)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	var store *sqlite.CycleStore
	if o.dbPath != "" {
		db, err := sqlite.Open(o.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		store = sqlite.NewCycleStore(db)
		r, err := store.NewRun(sc.Name)
		if err != nil {
			return err
		}
		runID = r.RunID
	}

	recs := make([]sqlite.CycleRecord, 0, len(frames))
	for _, f := range frames {
		collector.BeginCycle(f.Batch.Cycle)
		res := eng.Cycle(f.Batch, f.Motion)

		var truth *r2.Vec
		if f.Truth != nil {
			p := f.Truth.Self.Pos()
			truth = &p
		}
		rec := sqlite.NewRecord(runID, res, truth)
		recs = append(recs, rec)
		if store != nil {
			if err := store.InsertRecord(rec); err != nil {
				return err
			}
		}

		if trace := collector.Emit(); trace != nil && len(trace.Stages) > 0 {
			file := filepath.Join(o.plotDir, fmt.Sprintf("cycle_%04d.png", trace.Cycle))
			if err := debug.PlotCandidates(trace, truth, file); err != nil {
				log.Printf("cycle %d: plot skipped: %v", trace.Cycle, err)
			}
		}
	}

	if o.csvPath != "" {
		if err := writeFile(o.csvPath, func(w io.Writer) error { return report.WriteCSV(w, recs) }); err != nil {
			return err
		}
	}
	if o.htmlPath != "" {
		geom := localize.FieldGeometryFromTuning(cfg)
		bounds := report.Bounds{
			HalfLength: geom.PitchHalfLength + geom.PitchMargin,
			HalfWidth:  geom.PitchHalfWidth + geom.PitchMargin,
		}
		if err := writeFile(o.htmlPath, func(w io.Writer) error {
			return report.WriteTrajectoryHTML(w, sc.Name, recs, bounds)
		}); err != nil {
			return err
		}
	}

	sum := sqlite.Summarize(recs)
	fmt.Fprintf(stdout, "run %s (%s): %d cycles, %d valid, %d compared, mean error %.3f m, max error %.3f m\n",
		runID, sc.Name, sum.Cycles, sum.Valid, sum.Compared, sum.MeanError, sum.MaxError)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
