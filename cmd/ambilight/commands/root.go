package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreman2200/ambilight/internal/config"
	"github.com/coreman2200/ambilight/internal/logger"
)

var (
	cfgFile  string
	logLevel string
	pretty   bool

	rootCmd = &cobra.Command{
		Use:   "ambilight",
		Short: "ambilight - camera driven LED backlight",
		Long: `ambilight samples the border of a camera image and drives a WS281x LED
strip with the result, frame by frame, at a fixed rate.

Without a subcommand it runs the full pipeline (same as "ambilight run").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRun,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human readable console logs")
}

// Execute runs the root command and returns its error after printing it.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// loadConfig reads the config file and applies the global flags, then sets
// up logging from the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("pretty") {
		cfg.Log.Pretty = pretty
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath
}
