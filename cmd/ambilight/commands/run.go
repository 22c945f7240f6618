package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreman2200/ambilight/internal/app"
	"github.com/coreman2200/ambilight/internal/logger"
	"github.com/coreman2200/ambilight/internal/monitor"
	"github.com/coreman2200/ambilight/internal/render"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the capture to LED pipeline",
	Long: `Open the LED sink and the capture device, then mirror the frame border
onto the strip until SIGINT or SIGTERM. The strip is always switched off
before exit.`,
	Example: `  # Run with ./ambilight.yaml (or built-in defaults)
  ambilight run

  # Bench test without a camera or strip
  ambilight run --config bench.yaml --log-level debug`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.WithComponent("app")

	opts := app.Options{}
	if cfg.Monitor.Addr != "" {
		order, err := render.ParseWireOrder(cfg.Strip.ColorOrder)
		if err != nil {
			return err
		}
		hub := monitor.New(cfg.Strip.Count, order, logger.WithComponent("monitor"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hub.Run(ctx)

		srv := &http.Server{Addr: cfg.Monitor.Addr, Handler: hub.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn().Err(err).Str("addr", cfg.Monitor.Addr).Msg("monitor stopped")
			}
		}()
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			_ = srv.Shutdown(sctx)
		}()
		log.Info().Str("addr", cfg.Monitor.Addr).Msg("monitor listening")

		opts.Diag = hub
		opts.Observer = hub
	}

	core, err := app.Startup(cfg, log, opts)
	if err != nil {
		return err
	}

	token := app.NewStopToken()
	release := app.NotifySignals(token, log)
	defer release()

	return core.Run(token)
}
