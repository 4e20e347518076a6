package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"github.com/NisargGB/Flipbook-Compiler/internal/config"
)

// MJPEGEncoder writes an AVI file with one JPEG per frame, without ffmpeg.
type MJPEGEncoder struct {
	FPS      int
	Quality  int
	Progress ProgressFunc
}

func (e *MJPEGEncoder) Encode(ctx context.Context, frames []*image.RGBA, videoPath string) error {
	if len(frames) == 0 {
		return nil
	}
	b := frames[0].Bounds()

	fps := e.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	quality := e.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	writer, err := mjpeg.New(videoPath, int32(b.Dx()), int32(b.Dy()), int32(fps))
	if err != nil {
		return fmt.Errorf("failed to create video writer: %w", err)
	}

	var buf bytes.Buffer
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			writer.Close()
			return err
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, f, &jpeg.Options{Quality: quality}); err != nil {
			writer.Close()
			return fmt.Errorf("failed to encode frame %d as JPEG: %w", i, err)
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			writer.Close()
			return fmt.Errorf("failed to add frame %d: %w", i, err)
		}
		if e.Progress != nil {
			e.Progress(i+1, len(frames))
		}
	}

	return writer.Close()
}
