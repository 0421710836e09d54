package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"xnmp/internal/busadapter"
)

func newGetManifestCommand(ctx *commandContext) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "get-manifest <host-name>",
		Short: "Fetch and print a native messaging host manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := busadapter.NewClient(ctx.busName())
			if err != nil {
				return err
			}
			defer client.Disconnect()

			raw, err := client.GetManifest(args[0], mode)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Manifest flavor: mozilla or chromium")
	return cmd
}

func newStartCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var extraArg string

	cmd := &cobra.Command{
		Use:   "start <host-name>",
		Short: "Start a host and relay its stdio to this terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := busadapter.NewClient(ctx.busName())
			if err != nil {
				return err
			}
			defer client.Disconnect()

			signals, err := client.SubscribeClosed()
			if err != nil {
				return err
			}

			host, err := client.Start(args[0], extraArg, mode)
			if err != nil {
				return err
			}
			defer host.Stdin.Close()
			defer host.Stdout.Close()
			defer host.Stderr.Close()
			fmt.Fprintf(cmd.ErrOrStderr(), "started %s (handle %s)\n", args[0], host.Handle)

			go func() {
				_, _ = io.Copy(host.Stdin, os.Stdin)
				_ = host.Stdin.Close()
			}()
			go func() { _, _ = io.Copy(os.Stderr, host.Stderr) }()
			go func() { _, _ = io.Copy(os.Stdout, host.Stdout) }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			for {
				select {
				case <-runCtx.Done():
					return client.Close(host.Handle)
				case sig, ok := <-signals:
					if !ok {
						return nil
					}
					if len(sig.Body) > 0 {
						if handle, _ := sig.Body[0].(string); handle == host.Handle {
							fmt.Fprintf(cmd.ErrOrStderr(), "host exited (handle %s)\n", host.Handle)
							return nil
						}
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Manifest flavor: mozilla or chromium")
	cmd.Flags().StringVar(&extraArg, "caller", "", "Extension ID or origin passed to the host")
	return cmd
}

func newCloseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "close <handle>",
		Short: "Terminate a running host by handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := busadapter.NewClient(ctx.busName())
			if err != nil {
				return err
			}
			defer client.Disconnect()
			return client.Close(args[0])
		},
	}
}
