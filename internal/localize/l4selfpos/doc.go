// Package l4selfpos owns Layer 4 (Self position) of the localization model.
//
// Responsibilities: turning landmark sightings into annular sectors of
// plausible observer positions, intersecting them over a bounded candidate
// point set, and averaging the survivors into a pose estimate.
// Key types: Sector, PointSet, Engine, Pose.
//
// The candidate set lives for a single Localize call. Engine owns its
// random source and is not safe for concurrent use; build one per agent.
// Tables and the landmark map it reads are shared read-only.
//
// Dependency rule: L4 may depend on L1-L3, never on L5+.
package l4selfpos
