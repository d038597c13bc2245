// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"

	"github.com/ManuGH/storefront/internal/i18n"
	"github.com/ManuGH/storefront/internal/storefront"
	"github.com/spf13/cobra"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var (
		outDir        string
		locales       []string
		defaultLocale string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the pre-rendered static pages to a directory",
		Long: `Renders every static page once per locale and writes it to
<out>/<locale>/<path>/index.html. Locales come from --locales or, when
omitted, from the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outDir == "" {
				return errors.New("--out is required")
			}
			if len(locales) == 0 {
				cfg, err := flags.loader().Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				locales, defaultLocale = cfg.I18n.Locales, cfg.I18n.DefaultLocale
			}
			if defaultLocale == "" {
				defaultLocale = locales[0]
			}

			routing, err := i18n.NewRouting(locales, defaultLocale)
			if err != nil {
				return err
			}
			catalog, err := i18n.LoadCatalog(routing)
			if err != nil {
				return err
			}
			pre, err := storefront.LoadPrerenderer(routing, catalog)
			if err != nil {
				return err
			}
			written, err := pre.Export(cmd.Context(), outDir)
			if err != nil {
				return err
			}
			for _, path := range written {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().StringSliceVar(&locales, "locales", nil, "locales to export (default from config)")
	cmd.Flags().StringVar(&defaultLocale, "default-locale", "", "default locale (default first of --locales)")
	return cmd
}
