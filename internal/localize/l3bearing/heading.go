package l3bearing

import (
	"errors"
	"math"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoHeading is returned when neither a boundary line nor two identified
// landmarks were seen.
var ErrNoHeading = errors.New("no heading source")

// minBaseline is the smallest observed separation between two landmarks
// that still yields a usable direction.
const minBaseline = 1.0

// HeadingSource records which observation a heading was derived from.
type HeadingSource int

const (
	SourceNone HeadingSource = iota
	SourceLines
	SourceMarkers
)

func (s HeadingSource) String() string {
	switch s {
	case SourceLines:
		return "lines"
	case SourceMarkers:
		return "markers"
	default:
		return "none"
	}
}

// Heading is the observer's estimated face direction.
type Heading struct {
	Dir    float64
	Err    float64
	Source HeadingSource
}

// LandmarkLocator resolves landmark identifiers to global coordinates.
type LandmarkLocator interface {
	Position(id l2field.MarkerID) (r2.Vec, bool)
}

// DistanceTable inverts quantized distance readings.
type DistanceTable interface {
	Lookup(seen float64) (l1quant.Range, bool)
}

// FaceByLines derives the face direction from the nearest boundary line.
// Seeing two or more lines means the observer is outside the pitch and
// looking back in, which flips the result.
func (r Resolver) FaceByLines(lines []sighting.Line) (Heading, bool) {
	if len(lines) == 0 {
		return Heading{}, false
	}
	line := lines[0]

	angle := line.Dir
	if angle > 0 {
		angle -= 90
	} else {
		angle += 90
	}

	switch line.ID {
	case l2field.LineLeft:
		angle = 180 - angle
	case l2field.LineRight:
		angle = -angle
	case l2field.LineTop:
		angle = -90 - angle
	case l2field.LineBottom:
		angle = 90 - angle
	default:
		return Heading{}, false
	}

	if len(lines) >= 2 {
		angle += 180
	}
	return Heading{Dir: Normalize(angle), Err: r.BaseErr, Source: SourceLines}, true
}

// FaceByMarkers derives the face direction from the nearest and farthest
// identified landmarks: the rotation between the vector joining their
// known coordinates and the vector joining their observed relative
// positions is the face direction.
func (r Resolver) FaceByMarkers(markers []sighting.Marker, loc LandmarkLocator, table DistanceTable) (Heading, bool) {
	type resolved struct {
		rel, global r2.Vec
		dist        float64
		distErr     float64
	}
	var pts []resolved
	for _, m := range markers {
		if !m.Identified() {
			continue
		}
		g, ok := loc.Position(m.ID)
		if !ok {
			continue
		}
		d, ok := table.Lookup(m.Dist)
		if !ok {
			continue
		}
		rad := Rad(m.Dir)
		pts = append(pts, resolved{
			rel:     r2.Vec{X: d.Mean * math.Cos(rad), Y: d.Mean * math.Sin(rad)},
			global:  g,
			dist:    d.Mean,
			distErr: d.Err,
		})
	}
	if len(pts) < 2 {
		return Heading{}, false
	}

	first, last := pts[0], pts[len(pts)-1]
	relDelta := r2.Sub(last.rel, first.rel)
	baseline := r2.Norm(relDelta)
	if baseline < minBaseline {
		return Heading{}, false
	}
	globalDelta := r2.Sub(last.global, first.global)

	dir := Deg(math.Atan2(globalDelta.Y, globalDelta.X)) - Deg(math.Atan2(relDelta.Y, relDelta.X))
	// Worst-case lateral displacement of either end, from distance error
	// plus bearing rounding, over the baseline.
	lateral := first.distErr + last.distErr + (first.dist+last.dist)*math.Tan(Rad(r.BaseErr))
	err := Deg(math.Atan2(lateral, baseline))
	return Heading{Dir: Normalize(dir), Err: err, Source: SourceMarkers}, true
}

// EstimateFace tries boundary lines first and falls back to landmark pairs.
func (r Resolver) EstimateFace(b sighting.Batch, loc LandmarkLocator, table DistanceTable) (Heading, error) {
	if h, ok := r.FaceByLines(b.Lines); ok {
		return h, nil
	}
	if h, ok := r.FaceByMarkers(b.Markers, loc, table); ok {
		return h, nil
	}
	return Heading{}, ErrNoHeading
}
