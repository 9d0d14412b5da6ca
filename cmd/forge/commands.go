package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/danielchristiancazares/forge/internal/auth"
	"github.com/danielchristiancazares/forge/internal/mcpclient"
)

// buildLoginCmd mirrors the teacher's `claude login`: run the OAuth
// PKCE flow and persist whatever credentials it returns.
func buildLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with an Anthropic account via OAuth",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			store, err := auth.NewCredentialStore()
			if err != nil {
				return err
			}
			return doLogin(ctx, store)
		},
	}
}

func doLogin(ctx context.Context, store *auth.CredentialStore) error {
	flow, err := auth.NewOAuthFlow()
	if err != nil {
		return fmt.Errorf("initializing OAuth flow: %w", err)
	}
	result, err := flow.Login(ctx)
	if err != nil {
		return err
	}
	if err := store.Save(result.Tokens); err != nil {
		return fmt.Errorf("saving tokens: %w", err)
	}
	if result.Account != nil {
		if err := store.SaveAccount(result.Account); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save account info: %v\n", err)
		}
	}
	if result.APIKey != "" {
		if err := store.SaveAPIKey(result.APIKey); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save api key: %v\n", err)
		}
	}
	fmt.Println("Logged in.")
	return nil
}

// buildLogoutCmd mirrors the teacher's `claude logout`.
func buildLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget stored OAuth credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewCredentialStore()
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// buildStatusCmd mirrors the teacher's `claude status` / `claude auth
// status`, defaulting to JSON like the original and accepting --text
// for a human-readable summary.
func buildStatusCmd() *cobra.Command {
	var textOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in account, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewCredentialStore()
			if err != nil {
				return err
			}
			status := auth.GetAuthStatus(store)

			if textOutput {
				fmt.Println(auth.FormatStatusText(status))
			} else {
				out, err := auth.FormatStatusJSON(status)
				if err != nil {
					return err
				}
				fmt.Println(out)
			}
			if !status.LoggedIn {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&textOutput, "text", false, "print a human-readable summary instead of JSON")
	return cmd
}

// buildMCPCmd mirrors the teacher's `claude mcp` subcommand group for
// inspecting and editing .mcp.json.
func buildMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage configured MCP servers",
	}
	cmd.AddCommand(buildMCPListCmd(), buildMCPAddCmd(), buildMCPRemoveCmd())
	return cmd
}

func buildMCPListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured MCP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := mcpclient.LoadConfig(cwd)
			if err != nil {
				return err
			}
			if cfg == nil || len(cfg.Servers) == 0 {
				fmt.Println("No MCP servers configured.")
				return nil
			}
			for name, server := range cfg.Servers {
				if server.URL != "" {
					fmt.Printf("  %s: %s\n", name, server.URL)
					continue
				}
				fmt.Printf("  %s: %s %v\n", name, server.Command, server.Args)
			}
			return nil
		},
	}
}

func buildMCPAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <command> [args...]",
		Short: "Add a stdio MCP server to .mcp.json",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			name, command, rest := args[0], args[1], args[2:]
			return mcpclient.AddServer(cwd, name, mcpclient.ServerConfig{Command: command, Args: rest})
		},
	}
}

func buildMCPRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an MCP server from .mcp.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			return mcpclient.RemoveServer(cwd, args[0])
		},
	}
}

// signalContext cancels ctx when an interrupt arrives, for the OAuth
// flow's local callback server to unwind cleanly.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
