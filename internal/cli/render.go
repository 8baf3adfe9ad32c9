package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/framegen/internal/composition"
	"github.com/ivlev/framegen/internal/config"
	"github.com/ivlev/framegen/internal/render"
	"github.com/ivlev/framegen/internal/system"
	"github.com/ivlev/framegen/internal/video"
)

const (
	defaultInputDir  = "input"
	defaultOutputDir = "output"
)

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	ID          string  `json:"id"`
	Composition string  `json:"composition"`
	Output      string  `json:"output"`
	Frames      int     `json:"frames"`
	Workers     int     `json:"workers"`
	Seconds     float64 `json:"seconds"`
	FPS         float64 `json:"renderFps"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	cfg := &config.Config{BuildVersion: rootOpts.Version}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a composition to video or PNG frames",
		Long: `Render every frame of a composition.

Without a file the most recent composition in ./input is used. Frames are
encoded with ffmpeg unless --png-dir is given, in which case they are
written as numbered PNG files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.InputPath = args[0]
			}
			return runRender(rootOpts, cfg, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.OutputVideo, "output", "o", "", "output video path (default output/<id>_<time>.mp4)")
	f.StringVar(&cfg.PNGDir, "png-dir", "", "write PNG frames to this directory instead of encoding video")
	f.IntVar(&cfg.Width, "width", 0, "override composition width")
	f.IntVar(&cfg.Height, "height", 0, "override composition height")
	f.StringVar(&cfg.Preset, "preset", "", "aspect preset (16:9, 9:16, 4:5)")
	f.Float64Var(&cfg.FPS, "fps", 0, "override composition frame rate")
	f.IntVar(&cfg.Workers, "workers", 0, "render workers (default: physical cores)")
	f.IntVar(&cfg.DPI, "dpi", 150, "PDF rasterization DPI")
	f.StringVar(&cfg.VideoEncoder, "encoder", "", "video encoder (default: best available H.264)")
	f.IntVar(&cfg.Quality, "quality", 0, "encoder quality (CRF, CQ or bitrate/100k)")
	f.BoolVar(&cfg.Debug, "debug", false, "stamp a QR code with the frame index on every frame")
	f.BoolVar(&cfg.ShowStats, "stats", false, "print render statistics")

	return cmd
}

func runRender(rootOpts *RootOptions, cfg *config.Config, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	system.InitResourceLimits()

	if cfg.InputPath == "" {
		latest, err := system.FindLatestComposition(defaultInputDir)
		if err != nil {
			out.Error(ErrCodeNotFound, err.Error())
			return WrapExitError(ExitCommandError, "no composition given", err)
		}
		cfg.InputPath = latest
		slog.Info("using latest composition", "path", latest)
	}

	c, err := composition.Read(cfg.InputPath)
	if err != nil {
		out.Error(errorCode(err), err.Error())
		return WrapExitError(ExitCommandError, "cannot read composition", err)
	}
	if err := applyOverrides(c, cfg); err != nil {
		out.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	p, err := composition.Compile(c)
	if err != nil {
		out.Error(errorCode(err), err.Error())
		return WrapExitError(ExitFailure, "invalid composition", err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = system.DefaultWorkers()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sink, target, err := openSink(ctx, p, cfg)
	if err != nil {
		out.Error(ErrCodeRender, err.Error())
		return WrapExitError(ExitCommandError, "cannot open output", err)
	}

	r := render.New(p, cfg, sink)
	stats, runErr := r.Run(ctx)
	closeErr := sink.Close()
	if runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		out.Error(ErrCodeRender, runErr.Error())
		return WrapExitError(ExitCommandError, "render failed", runErr)
	}

	res := RenderResult{
		ID:          stats.ID,
		Composition: p.ID(),
		Output:      target,
		Frames:      stats.Frames,
		Workers:     stats.Workers,
		Seconds:     stats.Elapsed.Seconds(),
		FPS:         stats.FPS(),
	}
	if out.JSON() {
		return out.Success(res)
	}
	fmt.Fprintf(out.Writer, "✓ %s: %d frames → %s\n", res.Composition, res.Frames, res.Output)
	if cfg.ShowStats {
		fmt.Fprintf(out.Writer, "  render %s: %d workers, %.2fs, %.1f fps\n", res.ID, res.Workers, res.Seconds, res.FPS)
	}
	return nil
}

// applyOverrides copies size and frame rate flags onto the composition
// before it is compiled.
func applyOverrides(c *composition.Composition, cfg *config.Config) error {
	if cfg.Preset != "" {
		w, h, err := config.ApplyPreset(cfg.Preset, c.Width, c.Height)
		if err != nil {
			return err
		}
		c.Width, c.Height = w, h
	}
	if cfg.Width > 0 {
		c.Width = cfg.Width
	}
	if cfg.Height > 0 {
		c.Height = cfg.Height
	}
	if cfg.FPS > 0 {
		c.FPS = cfg.FPS
	}
	return nil
}

func openSink(ctx context.Context, p *composition.Program, cfg *config.Config) (render.Sink, string, error) {
	if cfg.PNGDir != "" {
		sink, err := render.NewPNGSink(cfg.PNGDir)
		return sink, cfg.PNGDir, err
	}

	target := cfg.OutputVideo
	if target == "" {
		name := fmt.Sprintf("%s_%s.mp4", p.ID(), time.Now().Format("20060102_150405"))
		target = filepath.Join(defaultOutputDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, "", err
	}

	encoder := cfg.VideoEncoder
	if encoder == "" {
		encoder = system.GetBestH264Encoder()
	}
	quality := cfg.Quality
	if quality <= 0 {
		quality = config.DefaultQuality(encoder)
	}
	w, h := p.Size()
	sink, err := video.NewFFmpegSink(ctx, target, video.EncodeParams{
		Width:   w,
		Height:  h,
		FPS:     p.FPS(),
		Encoder: encoder,
		Quality: quality,
	})
	if err != nil {
		return nil, "", err
	}
	return sink, target, nil
}
