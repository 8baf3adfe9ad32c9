package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/framegen/internal/analyzer"
	"github.com/ivlev/framegen/internal/composition"
	"github.com/ivlev/framegen/internal/config"
	"github.com/ivlev/framegen/internal/director"
	"github.com/ivlev/framegen/internal/source"
	"github.com/ivlev/framegen/internal/system"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	Output           string
	Width, Height    int
	Preset           string
	FPS              float64
	DPI              int
	Detector         string
	PageDuration     float64
	MaxBlocks        int
	Transition       string
	Direction        string
	TransitionFrames int
	Highlight        string
}

// GenerateResult is the JSON payload of the generate command.
type GenerateResult struct {
	Path       string `json:"path"`
	ID         string `json:"id"`
	Scenes     int    `json:"scenes"`
	Highlights int    `json:"highlights"`
	Frames     int    `json:"frames"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [pdf|image|dir]",
		Short: "Generate a composition from a PDF or images",
		Long: `Create a composition with one scene per page. Content blocks found on
each page are highlighted one after another in reading order. Without an
argument the most recent PDF or image in ./input is used.

The composition is written to ./input by default so that a following
"framegen render" picks it up.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runGenerate(rootOpts, opts, cmd, input)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Output, "output", "o", "", "composition path (default input/<name>_<time>.yaml)")
	f.IntVar(&opts.Width, "width", composition.DefaultWidth, "frame width")
	f.IntVar(&opts.Height, "height", composition.DefaultHeight, "frame height")
	f.StringVar(&opts.Preset, "preset", "", "aspect preset (16:9, 9:16, 4:5)")
	f.Float64Var(&opts.FPS, "fps", composition.DefaultFPS, "frame rate")
	f.IntVar(&opts.DPI, "dpi", 100, "PDF rasterization DPI used for detection")
	f.StringVar(&opts.Detector, "detector", "contrast", fmt.Sprintf("block detector %v", analyzer.Variants))
	f.Float64Var(&opts.PageDuration, "page-duration", 4, "seconds per page")
	f.IntVar(&opts.MaxBlocks, "max-blocks", 6, "highlights per page")
	f.StringVar(&opts.Transition, "transition", "fade", "transition between pages (fade, slide, wipe, none)")
	f.StringVar(&opts.Direction, "direction", "from-right", "slide or wipe direction")
	f.IntVar(&opts.TransitionFrames, "transition-frames", 15, "transition length in frames")
	f.StringVar(&opts.Highlight, "highlight", "#facc1599", "highlight colour")
	return cmd
}

func runGenerate(rootOpts *RootOptions, opts *GenerateOptions, cmd *cobra.Command, input string) error {
	out := newFormatter(rootOpts, cmd)

	w, h, err := config.ApplyPreset(opts.Preset, opts.Width, opts.Height)
	if err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	detector, err := analyzer.NewDetector(opts.Detector)
	if err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	if _, err := composition.ParseColor(opts.Highlight); err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	if input == "" {
		latest, err := system.FindLatestSource(defaultInputDir)
		if err != nil {
			out.Error(ErrCodeNotFound, err.Error())
			return WrapExitError(ExitCommandError, "no input given", err)
		}
		input = latest
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "invalid input", err)
	}
	src, err := source.Open(abs)
	if err != nil {
		out.Error(ErrCodeNotFound, err.Error())
		return WrapExitError(ExitCommandError, "cannot open input", err)
	}
	defer src.Close()

	d := director.NewDirector(w, h, opts.FPS)
	d.Detector = detector
	d.DPI = opts.DPI
	d.PageDuration = opts.PageDuration
	d.MaxBlocks = opts.MaxBlocks
	d.Highlight = opts.Highlight
	d.Transition = nil
	if opts.Transition != "none" {
		d.Transition = &composition.Transition{Type: opts.Transition, Duration: opts.TransitionFrames}
		if opts.Transition != "fade" {
			d.Transition.Direction = opts.Direction
		}
	}

	c, err := d.Generate(src, abs)
	if err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "generate failed", err)
	}
	// Catch bad transition flags before anything is written.
	p, err := composition.Compile(c)
	if err != nil {
		out.Error(errorCode(err), err.Error())
		return WrapExitError(ExitFailure, "invalid composition", err)
	}

	path := opts.Output
	if path == "" {
		path = director.CompositionPath(defaultInputDir, abs, time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "cannot write composition", err)
	}
	if err := composition.Write(c, path); err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "cannot write composition", err)
	}

	res := GenerateResult{Path: path, ID: c.ID, Scenes: len(c.Scenes), Highlights: len(p.Elements()), Frames: p.Duration()}
	if out.JSON() {
		return out.Success(res)
	}
	fmt.Fprintf(out.Writer, "✓ wrote %s: %d scenes, %d highlights, %d frames\n", res.Path, res.Scenes, res.Highlights, res.Frames)
	return nil
}
