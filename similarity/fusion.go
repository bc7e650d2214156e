package similarity

import (
	"github.com/shopspring/decimal"
)

// Weights fuse image and text similarity into a combined score. They need not
// sum to 1.
type Weights struct {
	Image float64
	Text  float64
}

var DefaultWeights = Weights{
	Image: 0.4,
	Text:  0.6,
}

// Combine returns Image*imageSim + Text*textSim rounded to 4 decimals. The
// result is not clamped.
func (w Weights) Combine(imageSim, textSim float64) float64 {
	return Round4(w.Image*imageSim + w.Text*textSim)
}

// Round4 rounds half away from zero to 4 decimal places.
func Round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
