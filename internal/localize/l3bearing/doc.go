// Package l3bearing owns Layer 3 (Bearing) of the localization model.
//
// Responsibilities: angle normalization, conversion of a face-relative
// bearing reading into a global direction range, and estimation of the
// observer's own heading from boundary lines or landmark pairs.
// Key types: DirRange, Resolver, Heading.
//
// All angles are degrees; global directions are normalized to (-180, 180].
//
// Dependency rule: L3 may depend on L1-L2, never on L4+.
package l3bearing
