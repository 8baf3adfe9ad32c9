package config

import "fmt"

type Config struct {
	InputPath    string
	OutputVideo  string
	PNGDir       string
	Width        int
	Height       int
	FPS          float64
	Workers      int
	Preset       string
	DPI          int
	VideoEncoder string
	Quality      int
	Debug        bool
	ShowStats    bool
	BuildVersion string
}

// ApplyPreset replaces width and height with a named aspect preset.
// An empty preset keeps them.
func ApplyPreset(preset string, width, height int) (int, int, error) {
	switch preset {
	case "":
		return width, height, nil
	case "16:9":
		return 1280, 720, nil
	case "9:16":
		return 720, 1280, nil
	case "4:5":
		return 1080, 1350, nil
	}
	return 0, 0, fmt.Errorf("unknown preset %q (16:9, 9:16, 4:5)", preset)
}

// DefaultQuality is the quality used when none is given for an encoder.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = Q*100 kbit/s
	case "h264_nvenc":
		return 28
	default:
		return 23 // x264 CRF
	}
}
