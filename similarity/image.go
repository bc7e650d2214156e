package similarity

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	imageSide = 256
	histBins  = 8
)

// ImageSource opens a stored image by its reference (a relative path or an
// object key).
type ImageSource interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// ImageComparer compares stored images by their HSV colour histograms.
type ImageComparer struct {
	Source ImageSource
}

func NewImageComparer(source ImageSource) *ImageComparer {
	return &ImageComparer{Source: source}
}

// Similarity is Compare with failures mapped to 0.
func (c *ImageComparer) Similarity(ctx context.Context, refA, refB string) float64 {
	return c.Compare(ctx, refA, refB).Float()
}

// Compare loads both images, normalises them to 256x256, builds an 8x8x8 HSV
// histogram for each and returns the correlation of the two histograms.
func (c *ImageComparer) Compare(ctx context.Context, refA, refB string) Score {
	histA, s := c.histogram(ctx, refA)
	if s.Failed() {
		return s
	}
	histB, s := c.histogram(ctx, refB)
	if s.Failed() {
		return s
	}
	return scored(correlation(histA, histB))
}

func (c *ImageComparer) histogram(ctx context.Context, ref string) ([]float64, Score) {
	rc, err := c.Source.Open(ctx, ref)
	if err != nil {
		return nil, failed(FailureOpen, fmt.Errorf("open image %q: %w", ref, err))
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, failed(FailureDecode, fmt.Errorf("decode image %q: %w", ref, err))
	}
	return HSVHistogram(img), Score{}
}

// HSVHistogram resizes img to 256x256 and returns its L2-normalised joint
// hue/saturation/value histogram with 8 bins per channel.
func HSVHistogram(img image.Image) []float64 {
	dst := image.NewRGBA(image.Rect(0, 0, imageSide, imageSide))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	hist := make([]float64, histBins*histBins*histBins)
	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		h, s, v := toHSV(pix[i], pix[i+1], pix[i+2])
		hb := h * histBins / 180
		sb := s * histBins / 256
		vb := v * histBins / 256
		hist[(hb*histBins+sb)*histBins+vb]++
	}

	var norm float64
	for _, x := range hist {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range hist {
			hist[i] /= norm
		}
	}
	return hist
}

// toHSV converts an 8-bit RGB pixel to 8-bit HSV with hue in [0,180) and
// saturation and value in [0,256).
func toHSV(r, g, b uint8) (h, s, v int) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min

	v = int(max)
	if max > 0 {
		s = int(math.Round(delta * 255 / max))
	}
	if delta == 0 {
		return 0, s, v
	}

	var deg float64
	switch max {
	case rf:
		deg = 60 * (gf - bf) / delta
	case gf:
		deg = 120 + 60*(bf-rf)/delta
	default:
		deg = 240 + 60*(rf-gf)/delta
	}
	if deg < 0 {
		deg += 360
	}
	h = int(math.Round(deg / 2))
	if h >= 180 {
		h -= 180
	}
	if s > 255 {
		s = 255
	}
	return h, s, v
}

// correlation is the Pearson correlation of two equal-length vectors. Two
// constant vectors correlate perfectly.
func correlation(a, b []float64) float64 {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var num, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		num += da * db
		varA += da * da
		varB += db * db
	}
	denom := varA * varB
	if math.Abs(denom) <= math.SmallestNonzeroFloat64 {
		return 1
	}
	return num / math.Sqrt(denom)
}
