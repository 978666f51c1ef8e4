package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath  string
	provider    string
	model       string
	apiBaseURL  string
	temperature float32
	verbose     bool
	noColor     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "heritage",
		Short:         "Heritage record agent",
		Long:          "Searches historical records of artists and heritage sites and turns them into timelines.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; values may come from the environment or config.
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: search ./heritage.yaml, ./configs, ~/.config/heritage, /etc/heritage)")
	flags.StringVar(&provider, "provider", "", "Model provider: openai, gemini or mock")
	flags.StringVar(&model, "model", "", "Model to use")
	flags.StringVar(&apiBaseURL, "api-base-url", os.Getenv("OPENAI_API_BASE_URL"), "OpenAI-compatible API base URL")
	flags.Float32Var(&temperature, "temperature", 0, "Sampling temperature (0 keeps the provider default)")
	flags.BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newServeCmd(), newRunCmd(), newMCPCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
