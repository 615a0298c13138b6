package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rorical/GhostDeck/internal/app"
)

var metricsAddr string

var rootCmd = &cobra.Command{
	Use:   "ghostdeck",
	Short: "Terminal console for a GraphQL stack manager",
	Long:  `GhostDeck is a terminal console for a Docker stack manager that speaks GraphQL over HTTP and WebSocket.`,
	Run: func(cmd *cobra.Command, args []string) {
		runConsole()
	},
}

func runConsole() {
	application, err := app.NewApplication(app.Options{MetricsAddr: metricsAddr})
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (console only)")

	rootCmd.AddCommand(profileCmd)
}
