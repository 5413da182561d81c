// Package l2field owns Layer 2 (Field) of the localization model.
//
// Responsibilities: field geometry constants, landmark identifiers, and
// the fixed mapping from landmark to global Cartesian coordinate.
// Key types: FieldGeometry, MarkerID, LineID, LandmarkMap.
//
// Coordinates follow the simulator convention: x grows toward the right
// goal, y grows toward the bottom touchline, so "top" flags have negative y.
//
// Dependency rule: L2 may depend on L1, never on L3+.
package l2field
