package compositor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/NisargGB/Flipbook-Compiler/internal/timeline"
)

func blankFrame(h, w int) *image.RGBA {
	tl := timeline.New(timeline.Size{Height: h, Width: w})
	tl.EnsureLength(1)
	return tl.FrameAt(0)
}

func solid(h, w int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradient gives every pixel a distinct opaque colour.
func gradient(h, w int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(10 * x), G: uint8(10 * y), B: uint8(x + y), A: 0xff})
		}
	}
	return img
}

// painted returns the rectangle of pixels that differ from a blank frame.
func painted(f *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := f.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if f.RGBAAt(x, y) != timeline.Blank {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestBlendOpaqueReproducesImage(t *testing.T) {
	dst := blankFrame(8, 8)
	src := gradient(4, 5)

	if !Blend(dst, src, 0, 0) {
		t.Fatal("expected overlap")
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			s := src.NRGBAAt(x, y)
			d := dst.RGBAAt(x, y)
			if d.R != s.R || d.G != s.G || d.B != s.B || d.A != 0xff {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, d, s)
			}
		}
	}
	if got := painted(dst); !got.In(image.Rect(0, 0, 5, 4)) {
		t.Errorf("pixels outside the image were changed: %v", got)
	}
}

func TestBlendTransparentIsNoop(t *testing.T) {
	dst := blankFrame(6, 6)
	for i := range dst.Pix {
		if i%4 != 3 {
			dst.Pix[i] = uint8(i)
		}
	}
	before := append([]uint8(nil), dst.Pix...)

	Blend(dst, solid(6, 6, color.NRGBA{R: 255, G: 255, B: 255, A: 0}), 0, 0)

	for i := range before {
		if dst.Pix[i] != before[i] {
			t.Fatalf("byte %d changed from %d to %d", i, before[i], dst.Pix[i])
		}
	}
}

func TestBlendStraightAlpha(t *testing.T) {
	dst := blankFrame(1, 1)
	dst.SetRGBA(0, 0, color.RGBA{R: 100, G: 200, B: 50, A: 255})

	Blend(dst, solid(1, 1, color.NRGBA{R: 201, G: 1, B: 251, A: 51}), 0, 0)

	// a = 0.2
	want := color.RGBA{R: 120, G: 160, B: 90, A: 255}
	if got := dst.RGBAAt(0, 0); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBlendClipping(t *testing.T) {
	const H, W = 10, 12
	img := solid(4, 6, color.NRGBA{R: 255, A: 255})

	tests := []struct {
		name        string
		top, right  int
		wantVisible bool
		want        image.Rectangle
	}{
		{"contained", 3, 2, true, image.Rect(2, 3, 8, 7)},
		{"negative top", -2, 3, true, image.Rect(3, 0, 9, 2)},
		{"negative right", 4, -4, true, image.Rect(0, 4, 2, 8)},
		{"trailing bottom", 8, 1, true, image.Rect(1, 8, 7, 10)},
		{"trailing right", 0, 9, true, image.Rect(9, 0, 12, 4)},
		{"top-left corner", -1, -1, true, image.Rect(0, 0, 5, 3)},
		{"top at height", H, 0, false, image.Rectangle{}},
		{"right at width", 0, W, false, image.Rectangle{}},
		{"above frame", -5, 0, false, image.Rectangle{}},
		{"left of frame", 0, -7, false, image.Rectangle{}},
		{"touching top edge", -4, 0, false, image.Rectangle{}},
		{"far away", 1000, -1000, false, image.Rectangle{}},
		{"max top", math.MaxInt, 0, false, image.Rectangle{}},
		{"max right", 0, math.MaxInt - 1, false, image.Rectangle{}},
		{"min top", math.MinInt, 0, false, image.Rectangle{}},
		{"min right", 0, math.MinInt, false, image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := blankFrame(H, W)
			visible := Blend(dst, img, tt.top, tt.right)
			if visible != tt.wantVisible {
				t.Errorf("expected visible=%v, got %v", tt.wantVisible, visible)
			}
			if got := painted(dst); got != tt.want {
				t.Errorf("expected painted region %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBlendCropsSourceCorrectly(t *testing.T) {
	dst := blankFrame(5, 5)
	src := gradient(4, 4)

	Blend(dst, src, -1, -2)

	// frame (0,0) shows source column 2, row 1
	s := src.NRGBAAt(2, 1)
	d := dst.RGBAAt(0, 0)
	if d.R != s.R || d.G != s.G || d.B != s.B {
		t.Errorf("expected %v at origin, got %v", s, d)
	}
	s = src.NRGBAAt(3, 3)
	d = dst.RGBAAt(1, 2)
	if d.R != s.R || d.G != s.G || d.B != s.B {
		t.Errorf("expected %v at (1,2), got %v", s, d)
	}
}

func TestBlendSubImageSource(t *testing.T) {
	dst := blankFrame(3, 3)
	full := gradient(6, 6)
	sub := full.SubImage(image.Rect(2, 2, 4, 4)).(*image.NRGBA)

	Blend(dst, sub, 1, 1)

	s := full.NRGBAAt(2, 2)
	d := dst.RGBAAt(1, 1)
	if d.R != s.R || d.G != s.G || d.B != s.B {
		t.Errorf("expected %v, got %v", s, d)
	}
}

func TestPlaceGrowsTimeline(t *testing.T) {
	tl := timeline.New(timeline.Size{Height: 4, Width: 4})
	img := solid(2, 2, color.NRGBA{G: 255, A: 255})

	n, err := Place(tl, img, 2, 5, 0, 0)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 placements, got %d", n)
	}
	if tl.Len() != 5 {
		t.Fatalf("expected 5 frames, got %d", tl.Len())
	}
	for i := 0; i < 5; i++ {
		drawn := !painted(tl.FrameAt(i)).Empty()
		if drawn != (i >= 2) {
			t.Errorf("frame %d drawn=%v", i, drawn)
		}
	}
}

func TestPlaceOffscreenStillGrows(t *testing.T) {
	tl := timeline.New(timeline.Size{Height: 4, Width: 4})

	n, err := Place(tl, solid(2, 2, color.NRGBA{A: 255}), 0, 3, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || tl.Len() != 3 {
		t.Errorf("expected 0 placements and 3 frames, got %d and %d", n, tl.Len())
	}
}

func TestScale(t *testing.T) {
	src := gradient(10, 20)

	tests := []struct {
		factor float64
		want   image.Point
	}{
		{1.0, image.Pt(20, 10)},
		{0.5, image.Pt(10, 5)},
		{0.33, image.Pt(6, 3)},
		{2.5, image.Pt(50, 25)},
		{0.01, image.Pt(0, 0)},
	}

	for _, tt := range tests {
		scaled, err := Scale(src, tt.factor)
		if err != nil {
			t.Fatalf("Scale(%v) failed: %v", tt.factor, err)
		}
		if scaled.Bounds().Size() != tt.want {
			t.Errorf("Scale(%v) size %v, want %v", tt.factor, scaled.Bounds().Size(), tt.want)
		}
		Release(scaled)
	}
}

func TestScaleIdentityIsExactCopy(t *testing.T) {
	src := gradient(3, 7)
	src.SetNRGBA(1, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 3})

	scaled, err := Scale(src, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer Release(scaled)

	if scaled == src {
		t.Fatal("Scale returned its input")
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 7; x++ {
			if scaled.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) differs", x, y)
			}
		}
	}
}

func TestScaleEmptyNeverDraws(t *testing.T) {
	dst := blankFrame(4, 4)
	tiny, err := Scale(solid(2, 2, color.NRGBA{R: 255, A: 255}), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if Blend(dst, tiny, 0, 0) {
		t.Error("empty image reported as drawn")
	}
	Release(tiny)
}

func TestScaleTooLarge(t *testing.T) {
	src := solid(4, 4, color.NRGBA{R: 255, A: 255})
	for _, factor := range []float64{1e9, 1e300, math.MaxFloat64} {
		if img, err := Scale(src, factor); err == nil {
			t.Errorf("Scale(%v) = %v, expected error", factor, img.Bounds())
		}
	}
}
