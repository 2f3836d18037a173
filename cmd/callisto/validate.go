package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file without starting the server.

Reports every invalid field rather than stopping at the first, so a config
can be fixed in one pass.

Examples:
  # Validate the default config
  callisto validate

  # Validate a specific file
  callisto validate --config /etc/callisto/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			var verr config.ValidationError
			if errors.As(err, &verr) {
				for _, fe := range verr.Errors {
					fmt.Printf("  ✗ %s\n", fe.Error())
				}
				return fmt.Errorf("configuration invalid")
			}
			return fmt.Errorf("configuration invalid: %w", err)
		}

		fmt.Println("✓ Configuration valid")
		fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  direct tier up to %d files\n", cfg.Batch.DirectMaxFiles)
		fmt.Printf("  audit backend: %s (enabled=%v)\n", cfg.Audit.Backend, cfg.Audit.Enabled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
