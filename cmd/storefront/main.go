// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command storefront serves the customer account pages of the shop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/storefront/internal/config"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/version"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
}

func (g *globalFlags) loader() *config.Loader {
	l := config.NewLoader(g.configPath, version.Version)
	if g.envFile != "" {
		l = l.WithEnvFile(g.envFile)
	}
	return l
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Localized customer account storefront",
		Long:          "storefront serves login, registration and account settings pages backed by the commerce platform GraphQL API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "dotenv file read before the environment (default .env)")

	root.AddCommand(
		newServeCmd(flags),
		newExportCmd(flags),
		newConfigCmd(flags),
		newHealthcheckCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func main() {
	xglog.Configure(xglog.Config{Level: "info", Service: "storefront", Version: version.Version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
