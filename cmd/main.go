package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "call-service",
	Short:   "Signaling coordinator for two-party calls and device-to-device relay",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	// .env необязателен, переменные окружения приоритетнее
	_ = godotenv.Load()

	rootCmd.AddCommand(serveCmd, migrateCmd)
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
