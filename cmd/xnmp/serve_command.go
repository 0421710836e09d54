package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xnmp/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var replace bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the proxy daemon on the session bus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: logLevel,
				Replace:  replace,
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace an existing bus name owner")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}
