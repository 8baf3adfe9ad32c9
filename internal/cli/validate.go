package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/ivlev/framegen/internal/composition"
)

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid       bool    `json:"valid"`
	ID          string  `json:"id"`
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Scenes      int     `json:"scenes"`
	Elements    int     `json:"elements"`
	Transitions int     `json:"transitions"`
	Frames      int     `json:"frames"`
	Seconds     float64 `json:"seconds"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a composition",
		Long: `Decode and compile a composition without rendering it.

Reports the number of scenes, elements and transitions along with the
total duration. Exits with code 1 when the composition is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args[0])
		},
	}
}

func runValidate(rootOpts *RootOptions, cmd *cobra.Command, path string) error {
	out := newFormatter(rootOpts, cmd)

	p, err := loadProgram(out, path)
	if err != nil {
		return err
	}

	w, h := p.Size()
	res := ValidationResult{
		Valid:       true,
		ID:          p.ID(),
		FPS:         p.FPS(),
		Width:       w,
		Height:      h,
		Scenes:      len(p.Scenes()),
		Elements:    len(p.Elements()),
		Transitions: p.Transitions(),
		Frames:      p.Duration(),
		Seconds:     float64(p.Duration()) / p.FPS(),
	}
	if out.JSON() {
		return out.Success(res)
	}

	fmt.Fprintf(out.Writer, "✓ %s is valid\n", res.ID)
	fmt.Fprintf(out.Writer, "  scenes: %d  elements: %d  transitions: %d\n", res.Scenes, res.Elements, res.Transitions)
	fmt.Fprintf(out.Writer, "  frames: %d (%.2fs at %g fps)  size: %dx%d\n", res.Frames, res.Seconds, res.FPS, res.Width, res.Height)
	return nil
}

// loadProgram reads and compiles path, reporting failures through out.
// Unreadable files exit with ExitCommandError, invalid compositions with
// ExitFailure.
func loadProgram(out *OutputFormatter, path string) (*composition.Program, error) {
	c, err := composition.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			out.Error(ErrCodeNotFound, err.Error())
			return nil, WrapExitError(ExitCommandError, "composition not found", err)
		}
		if !errors.Is(err, composition.ErrInvalidComposition) {
			out.Error(ErrCodeGeneric, err.Error())
			return nil, WrapExitError(ExitCommandError, "cannot read composition", err)
		}
		out.Error(ErrCodeComposition, err.Error())
		return nil, WrapExitError(ExitFailure, "invalid composition", err)
	}

	p, err := composition.Compile(c)
	if err != nil {
		out.Error(errorCode(err), err.Error())
		return nil, WrapExitError(ExitFailure, "invalid composition", err)
	}
	out.VerboseLog("compiled %s: %d frames", path, p.Duration())
	return p, nil
}
