package imaging

import "image"

// antialiased reports whether the pixel at (x, y) in img1 is plausibly the
// product of sub-pixel anti-aliasing rather than a real change. It examines
// the 8-neighborhood for the darkest and brightest neighbors and checks
// whether those extremes sit on many equal-colored siblings in both images,
// per the pixelmatch reference heuristic.
func antialiased(img1, img2 *image.NRGBA, x, y int) bool {
	w, h := img1.Bounds().Dx(), img1.Bounds().Dy()
	x0, y0 := max(x-1, 0), max(y-1, 0)
	x1, y1 := min(x+1, w-1), min(y+1, h-1)

	zeroes := 0
	if x == x0 || x == x1 || y == y0 || y == y1 {
		zeroes = 1
	}

	var minDelta, maxDelta float64
	var minX, minY, maxX, maxY int

	for ny := y0; ny <= y1; ny++ {
		for nx := x0; nx <= x1; nx++ {
			if nx == x && ny == y {
				continue
			}

			delta := brightnessDelta(img1, img1, x, y, nx, ny)
			switch {
			case delta == 0:
				zeroes++
				// Surrounded by too many equal pixels to be anti-aliasing.
				if zeroes > 2 {
					return false
				}
			case delta < minDelta:
				minDelta, minX, minY = delta, nx, ny
			case delta > maxDelta:
				maxDelta, maxX, maxY = delta, nx, ny
			}
		}
	}

	// No darker or no brighter neighbor means no anti-aliased edge here.
	if minDelta == 0 || maxDelta == 0 {
		return false
	}

	// The extreme neighbors must belong to larger flat areas in both
	// images for the center pixel to count as edge smoothing.
	return (hasManySiblings(img1, minX, minY) && hasManySiblings(img2, minX, minY)) ||
		(hasManySiblings(img1, maxX, maxY) && hasManySiblings(img2, maxX, maxY))
}

// hasManySiblings reports whether more than two of the pixel's neighbors
// share its exact color.
func hasManySiblings(img *image.NRGBA, x, y int) bool {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	x0, y0 := max(x-1, 0), max(y-1, 0)
	x1, y1 := min(x+1, w-1), min(y+1, h-1)

	zeroes := 0
	if x == x0 || x == x1 || y == y0 || y == y1 {
		zeroes = 1
	}

	r, g, b, a := rgba(img, x, y)
	for ny := y0; ny <= y1; ny++ {
		for nx := x0; nx <= x1; nx++ {
			if nx == x && ny == y {
				continue
			}
			nr, ng, nb, na := rgba(img, nx, ny)
			if r == nr && g == ng && b == nb && a == na {
				zeroes++
			}
			if zeroes > 2 {
				return true
			}
		}
	}
	return false
}
