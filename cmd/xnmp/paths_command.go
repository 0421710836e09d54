package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xnmp/internal/manifest"
)

func newPathsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show the manifest search paths in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			paths := manifest.BuildSearchPaths(cfg.Hosts.ChromiumSearchPaths, cfg.Hosts.MozillaSearchPaths)

			rows := make([][]string, 0, len(paths.Chromium)+len(paths.Mozilla))
			for i, dir := range paths.Chromium {
				rows = append(rows, []string{"chromium", fmt.Sprintf("%d", i+1), dir})
			}
			for i, dir := range paths.Mozilla {
				rows = append(rows, []string{"mozilla", fmt.Sprintf("%d", i+1), dir})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Mode", "Order", "Directory"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
