package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "spotctl",
		Short: "CLI client for the tidy-spot REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8099", "Tidy-spot service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "API bearer token")

	spotsCmd := &cobra.Command{
		Use:   "spots",
		Short: "List all spots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListSpots(apiFlag, tokenFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(spotsCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run a check on a spot",
		RunE: func(cmd *cobra.Command, args []string) error {
			spotID, _ := cmd.Flags().GetInt64("spot")
			if spotID == 0 {
				return fmt.Errorf("--spot required")
			}
			return runCheck(apiFlag, tokenFlag, spotID, os.Stdout)
		},
	}
	checkCmd.Flags().Int64P("spot", "s", 0, "Spot ID (required)")
	_ = checkCmd.MarkFlagRequired("spot")
	rootCmd.AddCommand(checkCmd)

	resetAllCmd := &cobra.Command{
		Use:   "reset-all",
		Short: "Reset every spot currently needing attention",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetAll(apiFlag, tokenFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(resetAllCmd)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Create an API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return fmt.Errorf("--name required")
			}
			return runCreateToken(apiFlag, tokenFlag, name, os.Stdout)
		},
	}
	tokenCmd.Flags().StringP("name", "n", "", "Token name (required)")
	_ = tokenCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
