package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/framegen/internal/composition"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	Frame int
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the evaluated layers of one frame",
		Long: `Evaluate a single frame of a composition and print every rendered layer
with its local frame, transition delta and animated properties.

Examples:
  framegen inspect intro.yaml --frame 37
  framegen inspect intro.yaml --frame 0 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Frame, "frame", 0, "frame index to evaluate")
	return cmd
}

func runInspect(rootOpts *RootOptions, opts *InspectOptions, cmd *cobra.Command, path string) error {
	out := newFormatter(rootOpts, cmd)

	p, err := loadProgram(out, path)
	if err != nil {
		return err
	}
	if opts.Frame < 0 {
		out.Error(ErrCodeGeneric, fmt.Sprintf("frame must be >= 0, got %d", opts.Frame))
		return NewExitError(ExitCommandError, "invalid frame")
	}

	frame := p.Evaluate(opts.Frame)
	if out.JSON() {
		return out.Success(frame)
	}
	writeFrame(out.Writer, p, frame)
	return nil
}

func writeFrame(w io.Writer, p *composition.Program, f composition.Frame) {
	fmt.Fprintf(w, "frame %d/%d %s\n", f.Index, p.Duration(), p.ID())
	for _, l := range f.Layers {
		d := l.Delta
		fmt.Fprintf(w, "%s %s local=%d opacity=%.4f offset=%.4f,%.4f clip=%.4f,%.4f,%.4f,%.4f",
			l.Kind, l.ID, l.LocalFrame, d.Opacity, d.OffsetX, d.OffsetY,
			d.Clip.Left, d.Clip.Top, d.Clip.Right, d.Clip.Bottom)
		if len(l.Props) > 0 {
			fmt.Fprintf(w, " props[%s]", formatProps(l.Props))
		}
		fmt.Fprintln(w)
	}
}

func formatProps(props map[string]float64) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.4f", name, props[name])
	}
	return strings.Join(parts, " ")
}
