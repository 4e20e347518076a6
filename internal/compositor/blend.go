// Package compositor draws straight-alpha images onto timeline frames.
package compositor

import (
	"image"

	"github.com/NisargGB/Flipbook-Compiler/internal/timeline"
)

// Blend composites src onto dst with its top-left corner at row top and
// column right, relative to dst's origin. Colour channels are mixed as
// a*src + (1-a)*dst with a = srcAlpha/255; dst alpha is left untouched.
// Only the overlap of the two rectangles is visited. It reports whether the
// overlap was non-empty.
func Blend(dst *image.RGBA, src *image.NRGBA, top, right int) bool {
	db, sb := dst.Bounds(), src.Bounds()
	if top >= db.Dy() || right >= db.Dx() || top <= -sb.Dy() || right <= -sb.Dx() {
		return false
	}

	placed := image.Rect(right, top, right+sb.Dx(), top+sb.Dy())
	region := placed.Intersect(image.Rect(0, 0, db.Dx(), db.Dy()))
	if region.Empty() {
		return false
	}

	// region in source coordinates starts here
	sx0 := sb.Min.X + region.Min.X - right
	sy0 := sb.Min.Y + region.Min.Y - top
	w := region.Dx()

	for y := 0; y < region.Dy(); y++ {
		di := dst.PixOffset(db.Min.X+region.Min.X, db.Min.Y+region.Min.Y+y)
		si := src.PixOffset(sx0, sy0+y)
		drow := dst.Pix[di : di+4*w : di+4*w]
		srow := src.Pix[si : si+4*w : si+4*w]

		for x := 0; x < len(srow); x += 4 {
			sa := srow[x+3]
			if sa == 0 {
				continue
			}
			if sa == 0xff {
				drow[x+0] = srow[x+0]
				drow[x+1] = srow[x+1]
				drow[x+2] = srow[x+2]
				continue
			}
			a := float64(sa) / 255
			drow[x+0] = mix(drow[x+0], srow[x+0], a)
			drow[x+1] = mix(drow[x+1], srow[x+1], a)
			drow[x+2] = mix(drow[x+2], srow[x+2], a)
		}
	}
	return true
}

func mix(dst, src uint8, a float64) uint8 {
	v := (1-a)*float64(dst) + a*float64(src)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Place grows t to hold end frames and then blends img into every frame in
// [start, end). Growth happens even when img lands entirely off-frame.
func Place(t *timeline.Timeline, img *image.NRGBA, start, end, top, right int) (int, error) {
	if err := t.EnsureLength(end); err != nil {
		return 0, err
	}
	var n int
	for i := start; i < end; i++ {
		if Blend(t.FrameAt(i), img, top, right) {
			n++
		}
	}
	return n, nil
}
