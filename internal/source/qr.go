package source

import (
	"image"

	"github.com/skip2/go-qrcode"
)

// QRSource renders its path text as a square QR code of Size pixels.
type QRSource struct {
	Size  int
	Level qrcode.RecoveryLevel
}

func (s *QRSource) Load(text string) (*image.NRGBA, error) {
	q, err := qrcode.New(text, s.Level)
	if err != nil {
		return nil, err
	}
	size := s.Size
	if size <= 0 {
		size = 256
	}
	return ToNRGBA(q.Image(size)), nil
}
