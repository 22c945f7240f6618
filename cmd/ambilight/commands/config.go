package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ambilight/internal/config"
)

var writeConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration ambilight would run with: built-in defaults
overlaid with the config file. With --write it is saved to the config path.`,
	Example: `  # Show effective configuration
  ambilight config

  # Create ./ambilight.yaml from the defaults
  ambilight config --write`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&writeConfig, "write", false, "write the effective config to the config path")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if writeConfig {
		// seed a missing file so the load below succeeds for any path
		if _, err := os.Stat(configPath()); errors.Is(err, os.ErrNotExist) {
			if err := config.Save(configPath(), config.Default()); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		}
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	if writeConfig {
		path := configPath()
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}
