package imaging

// regionMask is a per-pixel bitmap of the ignore regions, precomputed so the
// comparison loop does a single lookup instead of scanning every rectangle.
type regionMask struct {
	width int
	bits  []bool
}

// buildMask flattens the ignore regions into a bitmap clipped to the image
// bounds. Returns nil when there is nothing to mask.
func buildMask(width, height int, regions []Region) *regionMask {
	if len(regions) == 0 {
		return nil
	}

	m := &regionMask{
		width: width,
		bits:  make([]bool, width*height),
	}

	for _, r := range regions {
		x0, y0 := max(r.X, 0), max(r.Y, 0)
		x1, y1 := min(r.X+r.Width, width), min(r.Y+r.Height, height)
		for y := y0; y < y1; y++ {
			row := y * width
			for x := x0; x < x1; x++ {
				m.bits[row+x] = true
			}
		}
	}

	return m
}

func (m *regionMask) masked(x, y int) bool {
	return m.bits[y*m.width+x]
}
