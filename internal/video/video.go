package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
)

// FFmpegSink streams raw RGBA frames into an ffmpeg process over stdin.
type FFmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    bytes.Buffer
	width  int
	height int
	frames int
}

// EncodeParams configures the output video.
type EncodeParams struct {
	Width, Height int
	FPS           float64
	Encoder       string
	Quality       int
}

// NewFFmpegSink starts ffmpeg writing to path. The process is killed when
// ctx is cancelled.
func NewFFmpegSink(ctx context.Context, path string, p EncodeParams) (*FFmpegSink, error) {
	s := &FFmpegSink{width: p.Width, height: p.Height}
	s.cmd = exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(path, p)...)
	s.cmd.Stdout = &s.out
	s.cmd.Stderr = &s.out

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	slog.Debug("ffmpeg started", "output", path, "encoder", p.Encoder, "quality", p.Quality)
	return s, nil
}

func buildFFmpegArgs(path string, p EncodeParams) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", strconv.FormatFloat(p.FPS, 'f', -1, 64),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	}

	switch p.Encoder {
	case "h264_videotoolbox":
		// VideoToolbox does not take -q:v everywhere; use bitrate.
		args = append(args, "-b:v", fmt.Sprintf("%dk", p.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(p.Quality))
	default: // libx264
		args = append(args, "-crf", strconv.Itoa(p.Quality), "-preset", "medium")
	}

	return append(args, path)
}

// WriteFrame writes one frame. Frames must arrive in order.
func (s *FFmpegSink) WriteFrame(index int, img *image.RGBA) error {
	if index != s.frames {
		return fmt.Errorf("frame %d out of order, expected %d", index, s.frames)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write frame %d: %w", index, err)
	}
	s.frames++
	return nil
}

// Close flushes stdin and waits for ffmpeg to finish.
func (s *FFmpegSink) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\n%s", err, s.out.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
