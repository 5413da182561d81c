package debug

import (
	"errors"
	"fmt"

	"github.com/banshee-data/fieldpose/internal/localize/l4selfpos"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// arcSegments is the number of straight segments drawn per sector arc.
const arcSegments = 24

// sectorOutline traces the boundary of s as a closed polyline.
func sectorOutline(s l4selfpos.Sector) plotter.XYs {
	pts := make(plotter.XYs, 0, 2*(arcSegments+1)+1)
	for i := 0; i <= arcSegments; i++ {
		p := s.Point(s.MaxR, s.Left+s.Span*float64(i)/arcSegments)
		pts = append(pts, plotter.XY{X: p.X, Y: p.Y})
	}
	for i := arcSegments; i >= 0; i-- {
		p := s.Point(s.MinR, s.Left+s.Span*float64(i)/arcSegments)
		pts = append(pts, plotter.XY{X: p.X, Y: p.Y})
	}
	return append(pts, pts[0])
}

func pointsXY(set l4selfpos.PointSet) plotter.XYs {
	xy := make(plotter.XYs, len(set))
	for i, p := range set {
		xy[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xy
}

// PlotCandidates renders every captured candidate set of trace, the sector
// that produced it, and the ground truth when known. The image format
// follows the file extension.
func PlotCandidates(trace *CycleTrace, truth *r2.Vec, file string) error {
	if trace == nil {
		return errors.New("nil trace")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Cycle %d - Candidate Sets", trace.Cycle)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Legend.Top = true

	plotted := 0
	for i, rec := range trace.Stages {
		if len(rec.Points) == 0 {
			continue
		}
		col := plotutil.Color(i)
		label := fmt.Sprintf("%d %s %s (%d)", i, rec.Stage, rec.Marker, rec.After)

		sc, err := plotter.NewScatter(pointsXY(rec.Points))
		if err != nil {
			return fmt.Errorf("stage %d points: %w", i, err)
		}
		sc.GlyphStyle.Color = col
		sc.GlyphStyle.Radius = vg.Points(1.5)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(label, sc)

		if rec.Sector.MaxR > 0 {
			outline, err := plotter.NewLine(sectorOutline(rec.Sector))
			if err != nil {
				return fmt.Errorf("stage %d sector: %w", i, err)
			}
			outline.Color = col
			outline.Width = vg.Points(0.5)
			outline.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			p.Add(outline)
		}
		plotted++
	}
	if plotted == 0 {
		return errors.New("trace holds no candidate points; enable SetKeepPoints")
	}

	if truth != nil {
		tp, err := plotter.NewScatter(plotter.XYs{{X: truth.X, Y: truth.Y}})
		if err != nil {
			return fmt.Errorf("truth: %w", err)
		}
		tp.GlyphStyle.Shape = draw.CrossGlyph{}
		tp.GlyphStyle.Radius = vg.Points(5)
		p.Add(tp)
		p.Legend.Add("truth", tp)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	return nil
}
