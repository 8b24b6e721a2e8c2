// Fieldclient drives the water-quality data-entry workflow from the command
// line against a running backend.
//
// Usage:
//
//	fieldclient run --profile site.yaml [--server URL] [--image photo.jpg]
//	fieldclient sensor
//	fieldclient version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"p9e.in/aquaentry/pkg/logging"
)

var (
	Version   = "dev"
	BuildTime = ""
)

var logLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fieldclient",
	Short: "Water-quality field data entry client",
	Long: `Walks the data-entry workflow for one sampling site: location, water
type, pin, sensor pairing, sensor readings, photo and submission.

Platform capabilities (position and Bluetooth pairing) are scripted in a
YAML profile.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	defaultLevel := os.Getenv(logging.LogLevelEnvVar)
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sensorCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fieldclient %s (built: %s)\n", Version, BuildTime)
	},
}
