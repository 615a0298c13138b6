package cmd

import (
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/GhostDeck/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage backend profiles, each pairing a GraphQL HTTP endpoint with its WebSocket endpoint.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    HTTP: %s\n", profile.HTTPURL)
			fmt.Printf("    WS:   %s\n", profile.WSURL)
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		profileName := config.NormalizeProfileName(args[0])
		profile, err := cfg.Profile(profileName)
		if err != nil {
			log.Fatalf("Cannot show profile: %v", err)
		}

		fmt.Printf("Profile: %s\n", profileName)
		fmt.Printf("HTTP URL: %s\n", profile.HTTPURL)
		fmt.Printf("WS URL: %s\n", profile.WSURL)
		fmt.Printf("Active: %t\n", profileName == cfg.ActiveProfile)
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Profile name",
			}
			var err error
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}
		profileName = config.NormalizeProfileName(profileName)

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		cfg.Profiles[profileName] = promptEndpoints(config.DefaultProfileValue())
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		profileName := profileArgOrSelect(cfg, args, "Select profile to edit")
		profile, err := cfg.Profile(profileName)
		if err != nil {
			log.Fatalf("Cannot edit profile: %v", err)
		}

		cfg.Profiles[profileName] = promptEndpoints(profile)
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		profileName := profileArgOrSelect(cfg, args, "Select profile to delete")
		if _, err := cfg.Profile(profileName); err != nil {
			log.Fatalf("Cannot delete profile: %v", err)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'? (y/N)", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		if err := cfg.RemoveProfile(profileName); err != nil {
			log.Fatalf("Cannot delete profile: %v", err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' deleted successfully! Active profile: %s\n", profileName, cfg.ActiveProfile)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		var profileName string
		if len(args) > 0 {
			profileName = config.NormalizeProfileName(args[0])
		} else {
			others := make([]string, 0, len(cfg.Profiles))
			for _, name := range cfg.ProfileNames() {
				if name != cfg.ActiveProfile {
					others = append(others, name)
				}
			}
			if len(others) == 0 {
				fmt.Println("No other profiles available to switch to")
				return
			}
			profileName = selectProfile(others, "Select profile to switch to")
		}

		if err := cfg.Use(profileName); err != nil {
			log.Fatalf("Cannot switch profile: %v", err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
	},
}

func mustLoadConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func profileArgOrSelect(cfg *config.Config, args []string, label string) string {
	if len(args) > 0 {
		return config.NormalizeProfileName(args[0])
	}
	names := cfg.ProfileNames()
	if len(names) == 0 {
		log.Fatalf("No profiles available")
	}
	return selectProfile(names, label)
}

func selectProfile(names []string, label string) string {
	prompt := promptui.Select{
		Label: label,
		Items: names,
	}
	_, name, err := prompt.Run()
	if err != nil {
		log.Fatalf("Selection failed: %v", err)
	}
	return name
}

// promptEndpoints asks for both endpoints, offering current values as
// defaults. The WebSocket default follows the HTTP answer.
func promptEndpoints(current config.Profile) config.Profile {
	httpPrompt := promptui.Prompt{
		Label:   "HTTP URL",
		Default: current.HTTPURL,
		Validate: func(s string) error {
			return config.ValidateEndpoint(s, "http", "https")
		},
	}
	httpURL, err := httpPrompt.Run()
	if err != nil {
		log.Fatalf("Prompt failed: %v", err)
	}

	wsDefault := current.WSURL
	if httpURL != current.HTTPURL {
		wsDefault = config.StreamURLFor(httpURL)
	}
	wsPrompt := promptui.Prompt{
		Label:   "WebSocket URL",
		Default: wsDefault,
		Validate: func(s string) error {
			return config.ValidateEndpoint(s, "ws", "wss")
		},
	}
	wsURL, err := wsPrompt.Run()
	if err != nil {
		log.Fatalf("Prompt failed: %v", err)
	}

	return config.Profile{HTTPURL: httpURL, WSURL: wsURL}
}

func init() {
	// Add subcommands to profile
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
