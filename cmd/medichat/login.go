package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdullaE100/medico-chat/internal/session"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login <access-token>",
	Short: "Store the backend access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := args[0]

		// Reject tokens we could never resolve a user from.
		provider := session.NewJWTProvider(func() string { return token })
		userID, err := provider.UserID()
		if err != nil {
			return fmt.Errorf("token is invalid or expired: %w", err)
		}

		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		cfg.Auth.AccessToken = token
		if err := saveCLIConfig(cfg); err != nil {
			return err
		}

		fmt.Printf("Logged in as %s\n", userID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		cfg.Auth.AccessToken = ""
		if err := saveCLIConfig(cfg); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}
