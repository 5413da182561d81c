// Package l5objects owns Layer 5 (Objects) of the localization model.
//
// Responsibilities: placing the ball and other players relative to the
// observer and, given a valid self pose, on the pitch; estimating their
// velocity from reported change rates; and bounding both with worst-case
// intervals propagated through the polar transform.
// Key types: Localizer, BallEstimate, PlayerEstimate.
//
// Dependency rule: L5 may depend on L1-L4, never on L6.
package l5objects
