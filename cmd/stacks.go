package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/GhostDeck/internal/actions"
	"github.com/Rorical/GhostDeck/internal/api"
)

var (
	assumeYes    bool
	stacksOutput string
)

var stacksCmd = &cobra.Command{
	Use:   "stacks",
	Short: "List stacks and their state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := connectCLI()
		defer backend.Close()

		ctx, cancel := signalContext()
		defer cancel()

		stacks, err := backend.Client.Stacks(ctx)
		if err != nil {
			log.Fatalf("Failed to load stacks: %v", err)
		}
		if stacksOutput != "text" {
			if err := writeOutput(os.Stdout, stacksOutput, stacks); err != nil {
				log.Fatalf("Failed to write output: %v", err)
			}
			return
		}
		for _, s := range stacks {
			fmt.Printf("%-32s %s\n", s.Name, s.State.Label())
		}
	},
}

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Run a lifecycle action on a stack",
}

func stackActionCmd(action api.StackAction) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " [stack-name]",
		Short: fmt.Sprintf("%s a stack", action),
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			backend, _ := connectCLI()
			defer backend.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := runStackAction(ctx, actions.NewBuiltin(backend.Client), string(action), args[0]); err != nil {
				log.Fatalf("%v", err)
			}
			fmt.Printf("%s %s: done\n", action, args[0])
		},
	}
}

func runStackAction(ctx context.Context, registry *actions.Registry, name, stack string) error {
	action, ok := registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown action %q", name)
	}
	if action.Confirm() && !assumeYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s stack '%s'? (y/N)", name, stack),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			return fmt.Errorf("%s cancelled", name)
		}
	}

	resultChan := make(chan actions.Result, 1)
	registry.ExecuteAsync(ctx, actions.Call{ID: uuid.NewString(), Name: name, Stack: stack}, resultChan)
	return (<-resultChan).Err
}

func init() {
	stacksCmd.Flags().StringVarP(&stacksOutput, "output", "o", "text", "output format: text, yaml or json")
	stackCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	for _, action := range []api.StackAction{api.ActionStart, api.ActionStop, api.ActionRestart} {
		stackCmd.AddCommand(stackActionCmd(action))
	}
	rootCmd.AddCommand(stacksCmd)
	rootCmd.AddCommand(stackCmd)
}
