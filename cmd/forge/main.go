// Command forge is the entry point for the Forge terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var logLevel, modelOverride, resumeSessionID string

	root := &cobra.Command{
		Use:     "forge",
		Short:   "A modal terminal client for LLM conversations",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), interactiveOptions{
				logLevel:      logLevel,
				modelOverride: modelOverride,
				resumeSession: resumeSessionID,
			})
		},
	}

	defaultLevel := "info"
	if env := os.Getenv("FORGE_LOG"); env != "" {
		defaultLevel = env
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "log level: debug, info, warn, error (default from FORGE_LOG)")
	root.Flags().StringVar(&modelOverride, "model", "", "model to use on startup (provider-qualified id), overrides config.toml")
	root.Flags().StringVar(&resumeSessionID, "resume", "", "resume a specific session by id instead of the most recent one")

	root.AddCommand(
		buildLoginCmd(),
		buildLogoutCmd(),
		buildStatusCmd(),
		buildMCPCmd(),
	)

	return root
}
