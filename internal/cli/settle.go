package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/ivlev/framegen/internal/animation"
)

// SettleResult is the JSON payload of the settle command. SettleSeconds and
// SettleFrames are omitted for springs that never come to rest.
type SettleResult struct {
	Mass             float64  `json:"mass"`
	Stiffness        float64  `json:"stiffness"`
	Damping          float64  `json:"damping"`
	DampingRatio     float64  `json:"dampingRatio"`
	NaturalFrequency float64  `json:"naturalFrequency"`
	Regime           string   `json:"regime"`
	SettleSeconds    *float64 `json:"settleSeconds,omitempty"`
	SettleFrames     *int     `json:"settleFrames,omitempty"`
}

// NewSettleCommand creates the settle command.
func NewSettleCommand(rootOpts *RootOptions) *cobra.Command {
	cfg := animation.DefaultSpringConfig
	fps := 30.0

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Report how long a spring takes to come to rest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettle(rootOpts, cmd, cfg, fps)
		},
	}

	cmd.Flags().Float64Var(&cfg.Mass, "mass", cfg.Mass, "spring mass")
	cmd.Flags().Float64Var(&cfg.Stiffness, "stiffness", cfg.Stiffness, "spring stiffness")
	cmd.Flags().Float64Var(&cfg.Damping, "damping", cfg.Damping, "spring damping")
	cmd.Flags().Float64Var(&fps, "fps", fps, "frame rate used to express the settle time in frames")
	return cmd
}

func regime(zeta float64) string {
	switch {
	case zeta == 0:
		return "undamped"
	case math.Abs(zeta-1) < 1e-9:
		return "critical"
	case zeta < 1:
		return "underdamped"
	}
	return "overdamped"
}

func runSettle(rootOpts *RootOptions, cmd *cobra.Command, cfg animation.SpringConfig, fps float64) error {
	out := newFormatter(rootOpts, cmd)

	if err := cfg.Validate(); err != nil {
		out.Error(errorCode(err), err.Error())
		return WrapExitError(ExitFailure, "invalid spring", err)
	}
	if fps <= 0 {
		out.Error(ErrCodeSpring, fmt.Sprintf("fps must be > 0, got %v", fps))
		return NewExitError(ExitCommandError, "invalid fps")
	}

	zeta := cfg.DampingRatio()
	res := SettleResult{
		Mass:             cfg.Mass,
		Stiffness:        cfg.Stiffness,
		Damping:          cfg.Damping,
		DampingRatio:     zeta,
		NaturalFrequency: cfg.NaturalFrequency(),
		Regime:           regime(zeta),
	}
	if t := animation.SettleTime(cfg); !math.IsInf(t, 1) {
		frames := int(math.Ceil(t * fps))
		res.SettleSeconds = &t
		res.SettleFrames = &frames
	}

	if out.JSON() {
		return out.Success(res)
	}
	fmt.Fprintf(out.Writer, "mass=%g stiffness=%g damping=%g\n", res.Mass, res.Stiffness, res.Damping)
	fmt.Fprintf(out.Writer, "damping ratio %.4f (%s), natural frequency %.4f rad/s\n", res.DampingRatio, res.Regime, res.NaturalFrequency)
	if res.SettleSeconds == nil {
		fmt.Fprintln(out.Writer, "never settles")
		return nil
	}
	fmt.Fprintf(out.Writer, "settles after %.4fs (%d frames at %g fps)\n", *res.SettleSeconds, *res.SettleFrames, fps)
	return nil
}
