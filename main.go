package main

import (
	"fmt"
	"os"

	"github.com/jghoshh/streakly/backend"
	"github.com/jghoshh/streakly/backend/config"
	"github.com/jghoshh/streakly/frontend"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "streakly",
		Short:         "Habits, goals and streaks backed by flat JSON files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file to seed the environment from")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			return backend.RunBackend(cfg, logger)
		},
	}

	var serverURL string
	shell := &cobra.Command{
		Use:   "shell",
		Short: "Open the interactive shell against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = cfg.ServerURL
			}
			frontend.RunFrontend(serverURL)
			return nil
		},
	}
	shell.Flags().StringVar(&serverURL, "server", "", "API base URL (defaults to SERVER_URL)")

	root.AddCommand(serve, shell)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
