// Command admintoken prints a signed ADMIN token for the reviewer endpoints.
//
//	go run ./cmd/admintoken --name "Ops" --email ops@example.com --ttl 12h
package main

import (
	"fmt"
	"os"
	"time"

	"institute/config"
	"institute/middleware"

	"github.com/spf13/cobra"
)

var (
	tokenUserID uint
	tokenName   string
	tokenEmail  string
	tokenTTL    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "admintoken",
	Short: "Print a signed ADMIN token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config.LoadConfig()

		token, err := middleware.GenerateJWT(tokenUserID, tokenName, middleware.RoleAdmin, tokenEmail, tokenTTL)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.Flags().UintVar(&tokenUserID, "id", 1, "operator user id")
	rootCmd.Flags().StringVar(&tokenName, "name", "operator", "operator name")
	rootCmd.Flags().StringVar(&tokenEmail, "email", "", "operator email")
	rootCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
