package imaging

import (
	"image"
	"image/draw"

	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

// maxYIQDelta is the largest possible squared YIQ distance between two
// opaque pixels, per the pixelmatch reference implementation.
const maxYIQDelta = 35215.0

// Diff image palette. Differing pixels are painted red, pixels excluded as
// anti-aliasing yellow, masked regions get a blue tint over the dimmed
// background so a reviewer can see what was excluded from scoring.
var (
	diffColor = [4]uint8{255, 0, 0, 255}
	aaColor   = [4]uint8{255, 220, 0, 255}
)

// Compare runs the pixel diff between a baseline and a current screenshot.
// Both images must have identical dimensions; a mismatch is reported as a
// DimensionMismatch error, never silently cropped or scaled. The comparison
// is a pure function of its inputs: identical inputs always yield identical
// output bytes.
func Compare(baseline, current image.Image, opts Options) (*Result, error) {
	bb, cb := baseline.Bounds(), current.Bounds()
	bw, bh := bb.Dx(), bb.Dy()
	cw, ch := cb.Dx(), cb.Dy()
	if bw != cw || bh != ch {
		return nil, errors.DimensionMismatch(bw, bh, cw, ch)
	}

	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, errors.BadRequest("threshold must be in [0,1]")
	}
	colorThreshold := opts.ColorThreshold
	if colorThreshold == 0 {
		colorThreshold = DefaultColorThreshold
	}
	maxDelta := maxYIQDelta * colorThreshold * colorThreshold

	base := toNRGBA(baseline)
	cur := toNRGBA(current)
	mask := buildMask(bw, bh, opts.IgnoreRegions)

	diff := image.NewRGBA(image.Rect(0, 0, bw, bh))

	var pixelsDifferent uint64
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			if mask != nil && mask.masked(x, y) {
				drawMasked(diff, cur, x, y)
				continue
			}

			delta := colorDelta(base, cur, x, y)
			if delta <= maxDelta {
				drawDimmed(diff, cur, x, y)
				continue
			}

			// Above the floor. Unless the caller wants anti-aliased pixels
			// counted, a difference explainable by sub-pixel anti-aliasing
			// is painted but excluded from the count.
			if !opts.IncludeAntialiasing &&
				(antialiased(base, cur, x, y) || antialiased(cur, base, x, y)) {
				setPixel(diff, x, y, aaColor)
				continue
			}

			pixelsDifferent++
			setPixel(diff, x, y, diffColor)
		}
	}

	total := float64(bw) * float64(bh)
	percentage := 0.0
	if total > 0 {
		percentage = float64(pixelsDifferent) / total * 100
	}

	return &Result{
		PixelsDifferent:     pixelsDifferent,
		PercentageDifferent: percentage,
		Width:               bw,
		Height:              bh,
		DiffImage:           diff,
		Threshold:           opts.Threshold,
		IsSignificant:       percentage > opts.Threshold*100,
	}, nil
}

// toNRGBA normalizes any image to non-premultiplied RGBA so pixel reads are
// deterministic regardless of the decoded representation.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// rgba returns the non-premultiplied channel values at (x, y).
func rgba(img *image.NRGBA, x, y int) (r, g, b, a float64) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])
}

// blend composites a channel value over a white background by its alpha,
// matching the pixelmatch reference.
func blend(c, a float64) float64 {
	return 255 + (c-255)*a
}

func rgb2y(r, g, b float64) float64 {
	return r*0.29889531 + g*0.58662247 + b*0.11448223
}

func rgb2i(r, g, b float64) float64 {
	return r*0.59597799 - g*0.27417610 - b*0.32180189
}

func rgb2q(r, g, b float64) float64 {
	return r*0.21147017 - g*0.52261711 + b*0.31114694
}

// colorDelta computes the squared perceptual distance between the pixels at
// (x, y) in both images, weighted per the YIQ color space.
func colorDelta(img1, img2 *image.NRGBA, x, y int) float64 {
	r1, g1, b1, a1 := rgba(img1, x, y)
	r2, g2, b2, a2 := rgba(img2, x, y)

	if a1 == a2 && r1 == r2 && g1 == g2 && b1 == b2 {
		return 0
	}

	if a1 < 255 {
		a1 /= 255
		r1, g1, b1 = blend(r1, a1), blend(g1, a1), blend(b1, a1)
	}
	if a2 < 255 {
		a2 /= 255
		r2, g2, b2 = blend(r2, a2), blend(g2, a2), blend(b2, a2)
	}

	yd := rgb2y(r1, g1, b1) - rgb2y(r2, g2, b2)
	id := rgb2i(r1, g1, b1) - rgb2i(r2, g2, b2)
	qd := rgb2q(r1, g1, b1) - rgb2q(r2, g2, b2)

	return 0.5053*yd*yd + 0.299*id*id + 0.1957*qd*qd
}

// brightnessDelta is the luma-only distance, used by anti-alias detection.
func brightnessDelta(img1, img2 *image.NRGBA, x1, y1, x2, y2 int) float64 {
	r1, g1, b1, a1 := rgba(img1, x1, y1)
	r2, g2, b2, a2 := rgba(img2, x2, y2)
	if a1 < 255 {
		a1 /= 255
		r1, g1, b1 = blend(r1, a1), blend(g1, a1), blend(b1, a1)
	}
	if a2 < 255 {
		a2 /= 255
		r2, g2, b2 = blend(r2, a2), blend(g2, a2), blend(b2, a2)
	}
	return rgb2y(r1, g1, b1) - rgb2y(r2, g2, b2)
}

func setPixel(img *image.RGBA, x, y int, c [4]uint8) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c[0], c[1], c[2], c[3]
}

// drawDimmed renders a faint grayscale copy of the current pixel, the
// background over which differences stand out.
func drawDimmed(dst *image.RGBA, src *image.NRGBA, x, y int) {
	r, g, b, a := rgba(src, x, y)
	gray := blend(rgb2y(r, g, b), 0.1*a/255)
	v := uint8(gray)
	setPixel(dst, x, y, [4]uint8{v, v, v, 255})
}

// drawMasked renders an ignored pixel as the dimmed background shifted
// toward blue, visually marking the excluded region.
func drawMasked(dst *image.RGBA, src *image.NRGBA, x, y int) {
	r, g, b, a := rgba(src, x, y)
	gray := blend(rgb2y(r, g, b), 0.1*a/255)
	v := uint8(gray)
	blue := uint8((gray + 255) / 2)
	setPixel(dst, x, y, [4]uint8{v, v, blue, 255})
}
