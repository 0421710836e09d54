package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"xnmp/internal/busadapter"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build and interface versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			build := "unknown"
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				build = info.Main.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "xnmp %s (interface version %d)\n", build, busadapter.Version)
			return nil
		},
	}
}
