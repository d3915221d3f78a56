// Package imaging implements the pixel-level screenshot comparison used by
// regression analysis. The diff algorithm follows the published pixelmatch
// heuristic: per-pixel color distance in YIQ space with a perceptual floor,
// and 8-neighborhood anti-aliasing detection so font and edge rendering
// noise can be excluded from the differing count.
package imaging

import (
	"bytes"
	"image"
	"image/png"

	// Registered so Decode accepts the formats the capture harness produces.
	_ "image/gif"
	_ "image/jpeg"

	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

// DefaultColorThreshold is the per-pixel perceptual distance floor, as a
// fraction of the maximum YIQ delta. Tunable via Options.ColorThreshold.
const DefaultColorThreshold = 0.1

// Region is a rectangle in image-pixel coordinates excluded from diff
// scoring. Partial overlap with the image is fine; the out-of-bounds part
// is simply unused.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether the pixel at (x, y) falls inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Options control a single comparison. Threshold is the fraction of
// differing pixels that marks the result significant; it is a policy input
// resolved by the caller, not an algorithm constant.
type Options struct {
	Threshold           float64  `json:"threshold"`
	IncludeAntialiasing bool     `json:"include_antialiasing"`
	IgnoreRegions       []Region `json:"ignore_regions,omitempty"`
	// ColorThreshold overrides the per-pixel perceptual floor.
	// Zero means DefaultColorThreshold.
	ColorThreshold float64 `json:"color_threshold,omitempty"`
}

// Result is the outcome of comparing two equally sized images.
type Result struct {
	PixelsDifferent     uint64      `json:"pixels_different"`
	PercentageDifferent float64     `json:"percentage_different"`
	Width               int         `json:"width"`
	Height              int         `json:"height"`
	DiffImage           *image.RGBA `json:"-"`
	Threshold           float64     `json:"threshold"`
	IsSignificant       bool        `json:"is_significant"`
}

// Codec decodes screenshot bytes and encodes diff artifacts. It exists so
// the diff algorithm can be tested against raw pixel buffers independent of
// file-format concerns.
type Codec interface {
	Decode(data []byte) (image.Image, error)
	Encode(img image.Image) ([]byte, error)
}

// PNGCodec decodes any registered image format and encodes diffs as PNG.
type PNGCodec struct{}

// Decode decodes screenshot bytes into an image.
func (PNGCodec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.DecodeFailure("bytes", err)
	}
	return img, nil
}

// Encode encodes a diff image as PNG.
func (PNGCodec) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Internal("failed to encode diff image", err)
	}
	return buf.Bytes(), nil
}
