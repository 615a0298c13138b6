package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream container events until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		backend, logger := connectCLI()
		defer backend.Close()

		ctx, cancel := signalContext()
		defer cancel()

		stream, err := backend.Client.SubscribeEvents(ctx)
		if err != nil {
			log.Fatalf("Failed to subscribe: %v", err)
		}
		defer stream.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-stream.C():
				if !ok {
					if err := stream.Err(); err != nil {
						log.Fatalf("Event feed ended: %v", err)
					}
					logger.Info("Event feed completed by server")
					return
				}
				fmt.Printf("%-10s %-20s %-28s %s\n", ev.Action, ev.StackName, ev.ContainerName, ev.ImageFrom)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
