package compositor

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/NisargGB/Flipbook-Compiler/internal/system"
)

// Kernel is the resampling filter used by Scale.
var Kernel draw.Interpolator = draw.BiLinear

// ScaledSize truncates w*factor and h*factor to whole pixels. It fails when
// the result is too large to allocate as an NRGBA image.
func ScaledSize(b image.Rectangle, factor float64) (image.Rectangle, error) {
	w, h := float64(b.Dx())*factor, float64(b.Dy())*factor
	if math.IsNaN(w) || math.IsNaN(h) || w < 0 || h < 0 {
		return image.Rectangle{}, fmt.Errorf("invalid scale %v", factor)
	}
	if w >= maxSide || h >= maxSide || math.Trunc(w)*math.Trunc(h)*4 > math.MaxInt {
		return image.Rectangle{}, fmt.Errorf("scale %v gives a %.0fx%.0f image, too large", factor, w, h)
	}
	return image.Rect(0, 0, int(w), int(h)), nil
}

// maxSide keeps int conversion of a scaled side well inside int range.
const maxSide = 1 << 31

// Scale returns a copy of img resized by factor. The result comes from the
// shared image pool and should be handed back with Release once the
// instruction using it is done. A factor that truncates either side to zero
// gives an empty image, which Blend never draws.
func Scale(img *image.NRGBA, factor float64) (*image.NRGBA, error) {
	sb := img.Bounds()
	r, err := ScaledSize(sb, factor)
	if err != nil {
		return nil, err
	}
	if r.Empty() {
		return image.NewNRGBA(image.Rectangle{}), nil
	}

	dst := system.GetImage(r)
	if r.Size() == sb.Size() {
		copyPixels(dst, img)
		return dst, nil
	}
	Kernel.Scale(dst, r, img, sb, draw.Src, nil)
	return dst, nil
}

// Release hands a Scale result back to the pool.
func Release(img *image.NRGBA) {
	if img == nil || img.Rect.Empty() {
		return
	}
	system.PutImage(img)
}

func copyPixels(dst, src *image.NRGBA) {
	sb := src.Bounds()
	w := 4 * sb.Dx()
	for y := 0; y < sb.Dy(); y++ {
		si := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		di := dst.PixOffset(0, y)
		copy(dst.Pix[di:di+w], src.Pix[si:si+w])
	}
}
