package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "bot",
	Short:         "AI mentor Telegram bot",
	Long:          `Runs the Telegram bot that answers questions with an LLM and remembers each user's recent conversation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging (same as LOG_DEBUG=true)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
