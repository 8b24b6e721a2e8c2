package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"p9e.in/aquaentry/pkg/workflow"
)

var sensorCmd = &cobra.Command{
	Use:   "sensor",
	Short: "Print one simulated sensor reading as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := workflow.NewSimulatedSensor(nil).Read(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	},
}
