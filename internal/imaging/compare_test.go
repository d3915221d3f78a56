package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func withRect(img *image.NRGBA, r Region, c color.NRGBA) *image.NRGBA {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
)

func TestCompareIdenticalImages(t *testing.T) {
	a := solidImage(50, 50, white)
	b := solidImage(50, 50, white)

	result, err := Compare(a, b, Options{Threshold: 0.10})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if result.PixelsDifferent != 0 {
		t.Errorf("PixelsDifferent = %d, want 0", result.PixelsDifferent)
	}
	if result.PercentageDifferent != 0 {
		t.Errorf("PercentageDifferent = %f, want 0", result.PercentageDifferent)
	}
	if result.IsSignificant {
		t.Error("IsSignificant = true for identical images")
	}
	if result.DiffImage == nil {
		t.Fatal("DiffImage is nil; a diff artifact is produced even for identical images")
	}
	if got := result.DiffImage.Bounds(); got.Dx() != 50 || got.Dy() != 50 {
		t.Errorf("DiffImage bounds = %v, want 50x50", got)
	}
}

func TestCompareDimensionMismatch(t *testing.T) {
	a := solidImage(100, 100, white)
	b := solidImage(100, 101, white)

	_, err := Compare(a, b, Options{Threshold: 0.10})
	if err == nil {
		t.Fatal("Compare() error = nil, want dimension mismatch")
	}
}

func TestCompareInvalidThreshold(t *testing.T) {
	a := solidImage(10, 10, white)
	b := solidImage(10, 10, white)

	for _, threshold := range []float64{-0.1, 1.5} {
		if _, err := Compare(a, b, Options{Threshold: threshold}); err == nil {
			t.Errorf("Compare(threshold=%f) error = nil, want validation error", threshold)
		}
	}
}

func TestCompareRedSquare(t *testing.T) {
	baseline := solidImage(100, 100, white)
	square := Region{X: 5, Y: 5, Width: 10, Height: 10}
	current := withRect(solidImage(100, 100, white), square, red)

	result, err := Compare(baseline, current, Options{Threshold: 0.05})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if result.PixelsDifferent != 100 {
		t.Errorf("PixelsDifferent = %d, want 100", result.PixelsDifferent)
	}
	if result.PercentageDifferent != 1.0 {
		t.Errorf("PercentageDifferent = %f, want 1.0", result.PercentageDifferent)
	}
	if result.IsSignificant {
		t.Error("IsSignificant = true, want false at threshold 0.05")
	}

	// Lowering the threshold flips significance; the pixel counts are
	// independent of it.
	result, err = Compare(baseline, current, Options{Threshold: 0.005})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !result.IsSignificant {
		t.Error("IsSignificant = false, want true at threshold 0.005")
	}
	if result.PixelsDifferent != 100 {
		t.Errorf("PixelsDifferent = %d, want 100 regardless of threshold", result.PixelsDifferent)
	}
}

func TestCompareThresholdBoundary(t *testing.T) {
	// 100 differing pixels out of 10000 is exactly 1%. Significance requires
	// strictly exceeding the threshold, so 1% at threshold 0.01 is not
	// significant but one extra pixel is.
	baseline := solidImage(100, 100, white)
	exact := withRect(solidImage(100, 100, white), Region{X: 5, Y: 5, Width: 10, Height: 10}, red)

	result, err := Compare(baseline, exact, Options{Threshold: 0.01})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if result.IsSignificant {
		t.Error("IsSignificant = true at exactly the threshold, want false")
	}

	over := withRect(solidImage(100, 100, white), Region{X: 5, Y: 5, Width: 10, Height: 10}, red)
	over.SetNRGBA(50, 50, red)

	result, err = Compare(baseline, over, Options{Threshold: 0.01})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if result.PixelsDifferent != 101 {
		t.Errorf("PixelsDifferent = %d, want 101", result.PixelsDifferent)
	}
	if !result.IsSignificant {
		t.Error("IsSignificant = false one pixel past the threshold, want true")
	}
}

func TestCompareSymmetricPixelCount(t *testing.T) {
	a := solidImage(60, 40, white)
	b := withRect(solidImage(60, 40, white), Region{X: 10, Y: 10, Width: 7, Height: 3}, red)

	forward, err := Compare(a, b, Options{Threshold: 0.10})
	if err != nil {
		t.Fatalf("Compare(a, b) error = %v", err)
	}
	reverse, err := Compare(b, a, Options{Threshold: 0.10})
	if err != nil {
		t.Fatalf("Compare(b, a) error = %v", err)
	}

	if forward.PixelsDifferent != reverse.PixelsDifferent {
		t.Errorf("pixel counts differ by direction: %d vs %d",
			forward.PixelsDifferent, reverse.PixelsDifferent)
	}
}

func TestCompareIgnoreRegions(t *testing.T) {
	baseline := solidImage(100, 100, white)
	current := withRect(solidImage(100, 100, white), Region{X: 5, Y: 5, Width: 10, Height: 10}, red)

	tests := []struct {
		name    string
		regions []Region
		want    uint64
	}{
		{
			name:    "full cover",
			regions: []Region{{X: 5, Y: 5, Width: 10, Height: 10}},
			want:    0,
		},
		{
			name:    "partial cover",
			regions: []Region{{X: 5, Y: 5, Width: 10, Height: 5}},
			want:    50,
		},
		{
			name:    "region outside the change",
			regions: []Region{{X: 50, Y: 50, Width: 10, Height: 10}},
			want:    100,
		},
		{
			name:    "region extends past image bounds",
			regions: []Region{{X: -10, Y: -10, Width: 200, Height: 200}},
			want:    0,
		},
		{
			name:    "overlapping regions count pixels once",
			regions: []Region{{X: 5, Y: 5, Width: 10, Height: 10}, {X: 5, Y: 5, Width: 5, Height: 5}},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compare(baseline, current, Options{
				Threshold:     0.10,
				IgnoreRegions: tt.regions,
			})
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if result.PixelsDifferent != tt.want {
				t.Errorf("PixelsDifferent = %d, want %d", result.PixelsDifferent, tt.want)
			}
		})
	}
}

func TestCompareDeterministic(t *testing.T) {
	baseline := solidImage(80, 80, color.NRGBA{200, 200, 200, 255})
	current := withRect(solidImage(80, 80, color.NRGBA{200, 200, 200, 255}),
		Region{X: 20, Y: 20, Width: 15, Height: 15}, color.NRGBA{30, 60, 90, 255})
	opts := Options{Threshold: 0.02, IgnoreRegions: []Region{{X: 0, Y: 0, Width: 10, Height: 80}}}

	var codec PNGCodec

	first, err := Compare(baseline, current, opts)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	firstBytes, err := codec.Encode(first.DiffImage)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		again, err := Compare(baseline, current, opts)
		if err != nil {
			t.Fatalf("Compare() run %d error = %v", i, err)
		}
		if again.PixelsDifferent != first.PixelsDifferent {
			t.Fatalf("run %d: PixelsDifferent = %d, want %d", i, again.PixelsDifferent, first.PixelsDifferent)
		}
		againBytes, err := codec.Encode(again.DiffImage)
		if err != nil {
			t.Fatalf("Encode() run %d error = %v", i, err)
		}
		if !bytes.Equal(againBytes, firstBytes) {
			t.Fatalf("run %d: diff artifact bytes differ between identical runs", i)
		}
	}
}

func TestCompareAntialiasingExcluded(t *testing.T) {
	// A black line on white against the same line with gray smoothing along
	// one edge. The smoothing pixels sit between flat areas and should be
	// detected as anti-aliasing, not content change.
	baseline := solidImage(30, 30, white)
	withRect(baseline, Region{X: 5, Y: 14, Width: 20, Height: 2}, color.NRGBA{0, 0, 0, 255})

	current := solidImage(30, 30, white)
	withRect(current, Region{X: 5, Y: 14, Width: 20, Height: 2}, color.NRGBA{0, 0, 0, 255})
	withRect(current, Region{X: 5, Y: 13, Width: 20, Height: 1}, color.NRGBA{180, 180, 180, 255})

	excluded, err := Compare(baseline, current, Options{Threshold: 0.10})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	included, err := Compare(baseline, current, Options{Threshold: 0.10, IncludeAntialiasing: true})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if excluded.PixelsDifferent >= included.PixelsDifferent {
		t.Errorf("anti-aliasing exclusion had no effect: excluded=%d included=%d",
			excluded.PixelsDifferent, included.PixelsDifferent)
	}
	if included.PixelsDifferent != 20 {
		t.Errorf("included count = %d, want 20", included.PixelsDifferent)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	var codec PNGCodec

	src := withRect(solidImage(16, 16, white), Region{X: 2, Y: 2, Width: 4, Height: 4}, red)
	data, err := codec.Encode(src)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("decoded bounds = %v, want 16x16", b)
	}
}

func TestCodecDecodeGarbage(t *testing.T) {
	var codec PNGCodec
	if _, err := codec.Decode([]byte("not an image")); err == nil {
		t.Fatal("Decode() error = nil for garbage input")
	}
}
