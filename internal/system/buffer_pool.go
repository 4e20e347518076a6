package system

import (
	"image"
	"math/bits"
	"sync"
)

// maxPooledBucket caps pooled buffers at 1<<maxPooledBucket bytes. Larger
// scaled images are allocated directly and dropped by Put.
const maxPooledBucket = 28

// ImagePool recycles the pixel buffers behind per-instruction scaled images.
// Buffers are bucketed by power-of-two capacity, so an image of any size
// can reuse a buffer released by a slightly smaller or larger one.
type ImagePool struct {
	buckets [maxPooledBucket + 1]sync.Pool
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{}
}

// GetImage returns an *image.NRGBA with the given bounds from the shared
// pool. Its pixels are not cleared; callers overwrite every pixel.
func GetImage(rect image.Rectangle) *image.NRGBA {
	return globalPool.Get(rect)
}

// PutImage returns img to the shared pool.
func PutImage(img *image.NRGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.NRGBA {
	n := 4 * rect.Dx() * rect.Dy()
	b := bucketOf(n)
	if n == 0 || b > maxPooledBucket {
		return image.NewNRGBA(rect)
	}

	var pix []byte
	if v := p.buckets[b].Get(); v != nil {
		pix = (*v.(*[]byte))[:n]
	} else {
		pix = make([]byte, n, 1<<b)
	}
	return &image.NRGBA{Pix: pix, Stride: 4 * rect.Dx(), Rect: rect}
}

// Put keeps img's buffer for reuse. Buffers that did not come from Get are
// ignored.
func (p *ImagePool) Put(img *image.NRGBA) {
	if img == nil {
		return
	}
	c := cap(img.Pix)
	b := bucketOf(c)
	if c == 0 || c != 1<<b || b > maxPooledBucket {
		return
	}
	pix := img.Pix[:c]
	p.buckets[b].Put(&pix)
}

// bucketOf is the smallest b with 1<<b >= n.
func bucketOf(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
