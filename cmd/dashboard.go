package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var dashboardOutput string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print versions, stack count and running containers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := connectCLI()
		defer backend.Close()

		ctx, cancel := signalContext()
		defer cancel()

		dashboard, err := backend.Client.Dashboard(ctx)
		if err != nil {
			log.Fatalf("Failed to load dashboard: %v", err)
		}
		if err := writeOutput(os.Stdout, dashboardOutput, dashboard); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
	},
}

func init() {
	dashboardCmd.Flags().StringVarP(&dashboardOutput, "output", "o", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(dashboardCmd)
}
