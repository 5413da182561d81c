// Package debug provides instrumentation for the self-localization
// candidate engine. The Collector captures every candidate set transition
// of a cycle for inspection and plotting.
package debug

import (
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/l4selfpos"
)

// defaultStageCapacity covers a seed, thirty filter/resample pairs, a rear
// refinement, and the final average.
const defaultStageCapacity = 64

// Collector accumulates stage events during a single cycle's
// self-localization. It implements l4selfpos.Tracer.
//
// The collector is stateful: call BeginCycle before Localize, then Emit
// when the cycle completes. Events arriving outside a cycle are dropped.
type Collector struct {
	enabled    bool
	keepPoints bool
	current    *CycleTrace
}

// CycleTrace holds every stage event of one cycle.
type CycleTrace struct {
	Cycle  int
	Stages []StageRecord
}

// StageRecord is one candidate set transition.
type StageRecord struct {
	Stage  l4selfpos.Stage
	Marker l2field.MarkerID
	Sector l4selfpos.Sector
	Before int
	After  int
	// Points is the set after the stage, kept only when point capture is on.
	Points l4selfpos.PointSet
}

// NewCollector creates a collector that's initially disabled.
// Call SetEnabled(true) to begin collecting.
func NewCollector() *Collector {
	return &Collector{}
}

// SetEnabled controls whether the collector records events.
func (c *Collector) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// IsEnabled returns true if the collector is actively recording.
func (c *Collector) IsEnabled() bool {
	return c.enabled
}

// SetKeepPoints controls whether candidate point snapshots are retained.
// Counts and sectors are always kept.
func (c *Collector) SetKeepPoints(keep bool) {
	c.keepPoints = keep
}

// BeginCycle starts collection for a new cycle.
func (c *Collector) BeginCycle(cycle int) {
	if !c.enabled {
		return
	}
	c.current = &CycleTrace{
		Cycle:  cycle,
		Stages: make([]StageRecord, 0, defaultStageCapacity),
	}
}

// Trace records ev into the current cycle.
func (c *Collector) Trace(ev l4selfpos.StageEvent) {
	if !c.enabled || c.current == nil {
		return
	}
	rec := StageRecord{
		Stage:  ev.Stage,
		Marker: ev.Marker,
		Sector: ev.Sector,
		Before: ev.Before,
		After:  ev.After,
	}
	if c.keepPoints {
		rec.Points = ev.Points
	}
	c.current.Stages = append(c.current.Stages, rec)
}

// Emit returns the accumulated trace and prepares for the next cycle.
// Returns nil if collection is disabled or no cycle was begun.
func (c *Collector) Emit() *CycleTrace {
	if !c.enabled || c.current == nil {
		return nil
	}
	trace := c.current
	c.current = nil
	return trace
}

// Reset discards any pending events without emitting them.
func (c *Collector) Reset() {
	c.current = nil
}

// Count returns how many stages of kind s the trace holds.
func (t *CycleTrace) Count(s l4selfpos.Stage) int {
	n := 0
	for _, r := range t.Stages {
		if r.Stage == s {
			n++
		}
	}
	return n
}

// Regenerated reports whether the candidate set ran dry during the cycle.
func (t *CycleTrace) Regenerated() bool {
	return t.Count(l4selfpos.StageRegenerate) > 0
}
