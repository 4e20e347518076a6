// Package timeline holds the ordered, growable sequence of frames a script
// renders into.
package timeline

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/bits"
)

// DefaultHeight and DefaultWidth apply when a script has no frame_size.
const (
	DefaultHeight = 512
	DefaultWidth  = 512
)

// Blank is the colour of newly allocated frames.
var Blank = color.RGBA{A: 0xff}

// Size is a frame size in rows (Height) and columns (Width).
type Size struct {
	Height int
	Width  int
}

func DefaultSize() Size {
	return Size{Height: DefaultHeight, Width: DefaultWidth}
}

func (s Size) Rect() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// FrameBytes is the memory one frame of this size occupies. It saturates at
// math.MaxUint64 when the size cannot be represented.
func (s Size) FrameBytes() uint64 {
	if s.Width < 0 || s.Height < 0 {
		return math.MaxUint64
	}
	hi, px := bits.Mul64(uint64(s.Width), uint64(s.Height))
	if hi != 0 || px > math.MaxUint64/4 {
		return math.MaxUint64
	}
	return px * 4
}

// GrowthGuard is consulted before the timeline allocates more frames.
type GrowthGuard func(size Size, current, target int) error

// Timeline is an index-addressable frame sequence that only grows.
type Timeline struct {
	size   Size
	frames []*image.RGBA
	guard  GrowthGuard
}

func New(size Size) *Timeline {
	return &Timeline{size: size}
}

// SetGuard installs a check run before every growth.
func (t *Timeline) SetGuard(g GrowthGuard) {
	t.guard = g
}

func (t *Timeline) Size() Size {
	return t.size
}

func (t *Timeline) Len() int {
	return len(t.frames)
}

// EnsureLength appends opaque blank frames until the timeline holds at least
// n frames. It never truncates.
func (t *Timeline) EnsureLength(n int) error {
	if n <= len(t.frames) {
		return nil
	}
	if t.size.FrameBytes() > math.MaxInt {
		return fmt.Errorf("frame size %s is too large to allocate", t.size)
	}
	if t.guard != nil {
		if err := t.guard(t.size, len(t.frames), n); err != nil {
			return err
		}
	}
	for len(t.frames) < n {
		t.frames = append(t.frames, newBlank(t.size))
	}
	return nil
}

// FrameAt returns frame i for in-place mutation. Callers must EnsureLength first.
func (t *Timeline) FrameAt(i int) *image.RGBA {
	if i < 0 || i >= len(t.frames) {
		panic(fmt.Sprintf("timeline: frame %d out of range [0, %d)", i, len(t.frames)))
	}
	return t.frames[i]
}

// Frames hands the frame sequence to an encoder. The slice aliases the
// timeline's storage.
func (t *Timeline) Frames() []*image.RGBA {
	return t.frames
}

func newBlank(size Size) *image.RGBA {
	img := image.NewRGBA(size.Rect())
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = Blank.A
	}
	return img
}
