package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NisargGB/Flipbook-Compiler/internal/config"
	"github.com/NisargGB/Flipbook-Compiler/internal/system"
)

// VideoEncoder writes a frame sequence to a video file. Encoding an empty
// sequence is a no-op that writes nothing.
type VideoEncoder interface {
	Encode(ctx context.Context, frames []*image.RGBA, path string) error
}

// ProgressFunc is called after each frame is handed to the encoder.
type ProgressFunc func(done, total int)

// NewEncoder picks an encoder for cfg and returns it with the output path it
// will write to. AVI output, an explicit "mjpeg" encoder, or a missing ffmpeg
// binary select the built-in MJPEG writer, which always writes .avi.
func NewEncoder(ctx context.Context, cfg *config.Config) (VideoEncoder, string) {
	out := cfg.OutputVideo
	useMJPEG := cfg.Encoder == config.EncoderMJPEG ||
		strings.EqualFold(filepath.Ext(out), ".avi") ||
		(cfg.Encoder == config.EncoderAuto && !system.HasFFmpeg())

	if useMJPEG {
		if !strings.EqualFold(filepath.Ext(out), ".avi") {
			out = strings.TrimSuffix(out, filepath.Ext(out)) + ".avi"
		}
		return &MJPEGEncoder{FPS: cfg.FPS, Quality: cfg.JPEGQuality}, out
	}

	codec := cfg.VideoCodec
	if codec == "" {
		codec = system.GetBestH264Encoder(ctx)
	}
	return &FFmpegEncoder{FPS: cfg.FPS, Codec: codec, Quality: cfg.Quality}, out
}

// FFmpegEncoder streams raw RGBA frames into an ffmpeg subprocess.
type FFmpegEncoder struct {
	Path     string // defaults to system.FFmpegPath
	FPS      int
	Codec    string
	Quality  int
	Progress ProgressFunc
}

func (e *FFmpegEncoder) Encode(ctx context.Context, frames []*image.RGBA, videoPath string) error {
	if len(frames) == 0 {
		return nil
	}
	b := frames[0].Bounds()

	bin := e.Path
	if bin == "" {
		bin = system.FFmpegPath
	}
	cmd := exec.CommandContext(ctx, bin, e.buildFFmpegArgs(b.Dx(), b.Dy(), videoPath)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		defer stdin.Close()
		for i, f := range frames {
			if err := writeRawRGBA(stdin, f); err != nil {
				return fmt.Errorf("write frame %d: %w", i, err)
			}
			if e.Progress != nil {
				e.Progress(i+1, len(frames))
			}
		}
		return nil
	})
	g.Go(func() error {
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("ffmpeg error: %w, output: %s", err, tail(out.String(), 2048))
		}
		return nil
	})
	return g.Wait()
}

func (e *FFmpegEncoder) buildFFmpegArgs(width, height int, videoPath string) []string {
	fps := e.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	codec := e.Codec
	if codec == "" {
		codec = "libx264"
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-vf", evenPadFilter(width, height),
		"-pix_fmt", "yuv420p",
		"-c:v", codec,
	}

	switch codec {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", e.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", e.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", e.Quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

// evenPadFilter pads odd frame sizes by one pixel; yuv420p needs even sides.
func evenPadFilter(width, height int) string {
	if width%2 == 0 && height%2 == 0 {
		return "null"
	}
	return fmt.Sprintf("pad=%d:%d:0:0:black", width+width%2, height+height%2)
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	if img.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		_, err := w.Write(img.Pix[:b.Dy()*img.Stride])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		if _, err := w.Write(img.Pix[i : i+b.Dx()*4]); err != nil {
			return err
		}
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
