// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ManuGH/storefront/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "***"

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the storefront configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(flags), newConfigDumpCmd(flags))
	return cmd
}

func newConfigValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration (defaults + file + env)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := flags.loader()
			if _, err := loader.Load(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			source := loader.Path()
			if source == "" {
				source = "environment"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", source)
			return nil
		},
	}
}

func newConfigDumpCmd(flags *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loader().Load()
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			redactSecrets(&cfg)

			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "yaml", "yml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(cfg); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			default:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}

func redactSecrets(cfg *config.AppConfig) {
	if cfg.API.StorefrontToken != "" {
		cfg.API.StorefrontToken = redacted
	}
	if cfg.Session.RedisPassword != "" {
		cfg.Session.RedisPassword = redacted
	}
}
