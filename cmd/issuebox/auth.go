package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/issuebox/internal/credential"
)

var authForget bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store a tracker API token in the system keyring",
	Long: `auth prompts for a user name and API token and stores the token in the
system keyring. Later archive runs for that user may omit --password.`,
	SilenceUsage: true,
	RunE:         runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&authForget, "forget", false, "delete the stored token instead of storing one")
}

func runAuth(cmd *cobra.Command, _ []string) error {
	var user, token string

	inputs := []huh.Field{
		huh.NewInput().
			Title("User").
			Description("Tracker API user the token belongs to").
			Value(&user).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("user is required")
				}
				return nil
			}),
	}
	if !authForget {
		inputs = append(inputs, huh.NewInput().
			Title("Token").
			Description("Stored in the system keyring, never on disk in the clear").
			EchoMode(huh.EchoModePassword).
			Value(&token).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("token is required")
				}
				return nil
			}))
	}

	form := huh.NewForm(huh.NewGroup(inputs...))
	if err := form.Run(); err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}

	if authForget {
		if err := credential.DeleteToken(user); err != nil {
			return err
		}
		fmt.Printf("Deleted stored token for %s.\n", user)
		return nil
	}

	if err := credential.SetToken(user, token); err != nil {
		return err
	}
	fmt.Printf("Stored token for %s.\n", user)
	return nil
}
