package l5objects

import (
	"math"

	"github.com/banshee-data/fieldpose/internal/localize/l1quant"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/sighting"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// polar returns the offset at distance r in direction deg.
func polar(r, deg float64) r2.Vec {
	rad := l3bearing.Rad(deg)
	return r2.Vec{X: r * math.Cos(rad), Y: r * math.Sin(rad)}
}

// spread returns the mean of pts and half their range on each axis.
func spread(pts []r2.Vec) (mean, half r2.Vec) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	n := float64(len(pts))
	mean = r2.Vec{X: floats.Sum(xs) / n, Y: floats.Sum(ys) / n}
	half = r2.Vec{
		X: (floats.Max(xs) - floats.Min(xs)) / 2,
		Y: (floats.Max(ys) - floats.Min(ys)) / 2,
	}
	return mean, half
}

// offset places an object seen within dist and dir. The estimate is the
// polar point of the two means; the error is half the range covered by the
// four corners of the distance by direction box.
func offset(dist l1quant.Range, dir l3bearing.DirRange) (pos, err r2.Vec) {
	corners := []r2.Vec{
		polar(dist.Min(), dir.Min()),
		polar(dist.Min(), dir.Max()),
		polar(dist.Max(), dir.Min()),
		polar(dist.Max(), dir.Max()),
	}
	_, err = spread(corners)
	return polar(dist.Mean, dir.Mean), err
}

// rateVelocity bounds the velocity implied by a change-rate report. The
// reported distance change is scaled to the observer's reading seenDist to
// give a relative rate, and every combination of relative rate and
// direction change (each widened by its rounding half-step), radius, and
// direction is evaluated. The mean of the sixteen corners is the estimate
// and half their range is the error.
func rateVelocity(rate sighting.Rate, seenDist float64, dist l1quant.Range, dir l3bearing.DirRange, distHalf, dirHalf float64) (vel, err r2.Vec) {
	rel := 0.0
	if seenDist > l1quant.Epsilon {
		rel = rate.DistChg / seenDist
	}
	corners := make([]r2.Vec, 0, 16)
	for _, rr := range [2]float64{rel - distHalf, rel + distHalf} {
		for _, dc := range [2]float64{rate.DirChg - dirHalf, rate.DirChg + dirHalf} {
			for _, r := range [2]float64{dist.Min(), dist.Max()} {
				for _, th := range [2]float64{dir.Min(), dir.Max()} {
					radial := polar(rr*r, th)
					tangential := polar(l3bearing.Rad(dc)*r, th+90)
					corners = append(corners, r2.Add(radial, tangential))
				}
			}
		}
	}
	return spread(corners)
}
