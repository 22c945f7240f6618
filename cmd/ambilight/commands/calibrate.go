package commands

import (
	"github.com/spf13/cobra"

	"github.com/coreman2200/ambilight/internal/app"
	"github.com/coreman2200/ambilight/internal/calib"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/logger"
	"github.com/coreman2200/ambilight/internal/render"
)

var (
	patternName string
	holdFrames  int
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Show a test pattern on the strip",
	Long: `Push a calibration pattern to the strip at the configured frame rate, then
switch it off. No camera is opened.

Patterns:
  index_sweep   one white LED walks the strip from index 0
  rgb_channels  whole strip red, then green, then blue
  halves        first half red, second half blue (dual-edge split)`,
	Example: `  # Check the color order
  ambilight calibrate --pattern rgb_channels --hold 60

  # Find LED 0 and the strip direction
  ambilight calibrate --pattern index_sweep`,
	RunE: runCalibrate,
}

func init() {
	calibrateCmd.Flags().StringVar(&patternName, "pattern", string(calib.IndexSweep), "index_sweep | rgb_channels | halves")
	calibrateCmd.Flags().IntVar(&holdFrames, "hold", 30, "frames each step stays lit")
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	kind, err := calib.ParseKind(patternName)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	order, err := render.ParseWireOrder(cfg.Strip.ColorOrder)
	if err != nil {
		return err
	}
	log := logger.WithComponent("calib")

	sink, err := led.Open(cfg.Strip)
	if err != nil {
		return err
	}

	token := app.NewStopToken()
	release := app.NotifySignals(token, log)
	defer release()

	runner := calib.NewRunner(calib.Plan{Kind: kind, Hold: holdFrames})
	log.Info().
		Str("pattern", string(runner.Kind())).
		Int("steps", runner.Steps(cfg.Strip.Count)).
		Int("hold", holdFrames).
		Msg("calibration running")
	return app.RunPattern(token, sink, runner, order, cfg.Strip.Count, cfg.Period(), app.SystemClock)
}
