package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink writes frames as a numbered PNG sequence.
type PNGSink struct {
	dir     string
	encoder png.Encoder
}

func NewPNGSink(dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSink{dir: dir, encoder: png.Encoder{CompressionLevel: png.BestSpeed}}, nil
}

// FramePath returns the file a frame is written to.
func (s *PNGSink) FramePath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("frame_%05d.png", index))
}

func (s *PNGSink) WriteFrame(index int, img *image.RGBA) error {
	f, err := os.Create(s.FramePath(index))
	if err != nil {
		return err
	}
	if err := s.encoder.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *PNGSink) Close() error { return nil }
