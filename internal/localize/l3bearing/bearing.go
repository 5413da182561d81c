package l3bearing

import "math"

// DefaultBaseErr is the half-width of the simulator's one-degree direction
// rounding.
const DefaultBaseErr = 0.5

// Normalize maps deg into (-180, 180].
func Normalize(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return deg
	}
	d := math.Mod(deg, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Within reports whether angle a lies on the counter-clockwise arc that
// starts at left and spans span degrees.
func Within(a, left, span float64) bool {
	if span >= 360 {
		return true
	}
	if span < 0 {
		return false
	}
	d := math.Mod(a-left, 360)
	if d < 0 {
		d += 360
	}
	return d <= span
}

// Diff returns the absolute angular distance between a and b in [0, 180].
func Diff(a, b float64) float64 {
	return math.Abs(Normalize(a - b))
}

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180.0 }

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * 180.0 / math.Pi }

// DirRange is a global direction interval [Mean-Err, Mean+Err].
type DirRange struct {
	Mean float64
	Err  float64
}

// Min returns the clockwise edge of the interval (not normalized).
func (r DirRange) Min() float64 { return r.Mean - r.Err }

// Max returns the counter-clockwise edge of the interval (not normalized).
func (r DirRange) Max() float64 { return r.Mean + r.Err }

// Reverse returns the opposite direction with the same error.
func (r DirRange) Reverse() DirRange {
	return DirRange{Mean: Normalize(r.Mean + 180), Err: r.Err}
}

// Resolver converts face-relative bearings into global direction ranges.
type Resolver struct {
	// BaseErr is the half-width of the reading's own rounding.
	BaseErr float64
	// Legacy selects the truncating rounding of old protocol versions.
	Legacy bool
}

// NewResolver returns a resolver with the standard rounding half-width.
func NewResolver() Resolver {
	return Resolver{BaseErr: DefaultBaseErr}
}

// Resolve returns the global direction of a reading seen at seenDir
// relative to a face direction estimated as face ± faceErr.
func (r Resolver) Resolve(seenDir, face, faceErr float64) DirRange {
	if !r.Legacy {
		return DirRange{
			Mean: Normalize(seenDir + face),
			Err:  r.BaseErr + faceErr,
		}
	}

	// Truncation toward zero: a positive reading d covers [d, d+1), a
	// negative one (d-1, d], and zero covers (-1, 1).
	switch {
	case seenDir > 0:
		seenDir += r.BaseErr
	case seenDir < 0:
		seenDir -= r.BaseErr
	default:
		return DirRange{
			Mean: Normalize(face),
			Err:  2*r.BaseErr + faceErr,
		}
	}
	return DirRange{
		Mean: Normalize(seenDir + face),
		Err:  r.BaseErr + faceErr,
	}
}
