// Package sighting defines the per-cycle observation records consumed by the
// localization layers. Records are produced by the protocol parser (or a
// scenario file) and are read-only to everything downstream.
package sighting

import (
	"fmt"
	"sort"

	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"gonum.org/v1/gonum/spatial/r2"
)

// Sighting is one observed object. The concrete types are Marker,
// BehindMarker, Ball, Player, and Line.
type Sighting interface {
	sighting()
}

// Rate carries the distance and direction change fields reported for
// movable objects close enough to the observer.
type Rate struct {
	DistChg float64 // Distance change, server units per cycle
	DirChg  float64 // Direction change, degrees per cycle
}

// Marker is a landmark in the view cone. ID is MarkerUnknown when the
// landmark was too far away to be identified.
type Marker struct {
	ID   l2field.MarkerID
	Dist float64
	Dir  float64
}

// Identified reports whether the marker carries a usable identifier.
func (m Marker) Identified() bool { return m.ID.Valid() }

// BehindKind distinguishes the two object classes the rear channel reports.
type BehindKind int

const (
	BehindFlag BehindKind = iota
	BehindGoal
)

func (k BehindKind) String() string {
	if k == BehindGoal {
		return "goal"
	}
	return "flag"
}

// BehindMarker is an unidentified landmark sensed outside the view cone.
type BehindMarker struct {
	Kind BehindKind
	Dist float64
	Dir  float64
}

// Ball is the ball sighting.
type Ball struct {
	Dist float64
	Dir  float64
	Rate *Rate
}

// Side is the team relation of an observed player.
type Side int

const (
	SideUnknown Side = iota
	SideTeammate
	SideOpponent
)

func (s Side) String() string {
	switch s {
	case SideTeammate:
		return "teammate"
	case SideOpponent:
		return "opponent"
	default:
		return "unknown"
	}
}

// Player is another agent's sighting. Angles are relative to the
// observer's face direction, in degrees.
type Player struct {
	Side   Side
	Unum   int // 0 when the uniform number was not visible
	Goalie bool

	Dist float64
	Dir  float64
	Rate *Rate

	Body *float64
	Face *float64
	Arm  *float64

	Kicking  bool
	Tackling bool
}

// Line is a boundary line sighting. Dir is the angle at which the line
// crosses the observer's view direction.
type Line struct {
	ID   l2field.LineID
	Dist float64
	Dir  float64
}

func (Marker) sighting()       {}
func (BehindMarker) sighting() {}
func (Ball) sighting()         {}
func (Player) sighting()       {}
func (Line) sighting()         {}

// Batch is everything observed in one cycle, grouped by kind. Markers,
// BehindMarkers, and Lines are sorted nearest first.
type Batch struct {
	Cycle     int
	Version   float64
	ViewWidth string

	Markers       []Marker
	BehindMarkers []BehindMarker
	Ball          *Ball
	Players       []Player
	Lines         []Line
}

// NewBatch groups a flat sighting stream. A second ball sighting replaces
// the first; the simulator never sends two.
func NewBatch(cycle int, in []Sighting) (Batch, error) {
	b := Batch{Cycle: cycle}
	for _, s := range in {
		switch v := s.(type) {
		case Marker:
			b.Markers = append(b.Markers, v)
		case BehindMarker:
			b.BehindMarkers = append(b.BehindMarkers, v)
		case Ball:
			ball := v
			b.Ball = &ball
		case Player:
			b.Players = append(b.Players, v)
		case Line:
			b.Lines = append(b.Lines, v)
		default:
			return Batch{}, fmt.Errorf("cycle %d: unsupported sighting %T", cycle, s)
		}
	}
	b.SortNearest()
	return b, nil
}

// SortNearest orders markers, behind markers, and lines by distance.
func (b *Batch) SortNearest() {
	sort.SliceStable(b.Markers, func(i, j int) bool { return b.Markers[i].Dist < b.Markers[j].Dist })
	sort.SliceStable(b.BehindMarkers, func(i, j int) bool { return b.BehindMarkers[i].Dist < b.BehindMarkers[j].Dist })
	sort.SliceStable(b.Lines, func(i, j int) bool { return b.Lines[i].Dist < b.Lines[j].Dist })
}

// IdentifiedMarkers returns the markers with usable identifiers, nearest first.
func (b Batch) IdentifiedMarkers() []Marker {
	out := make([]Marker, 0, len(b.Markers))
	for _, m := range b.Markers {
		if m.Identified() {
			out = append(out, m)
		}
	}
	return out
}

// SelfMotion is the observer's own velocity as estimated from the body
// sensor by the surrounding world model.
type SelfMotion struct {
	Vel    r2.Vec
	VelErr r2.Vec
	Valid  bool
}
