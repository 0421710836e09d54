package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xnmp/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return fmt.Errorf("query status: %w", err)
				}
				rows := [][]string{
					{"Running", yesNo(status.Running)},
					{"PID", fmt.Sprintf("%d", status.PID)},
					{"Session", status.SessionID},
					{"Bus name", status.BusName},
					{"Unique name", status.UniqueName},
					{"Interface version", fmt.Sprintf("%d", status.Version)},
					{"Running hosts", fmt.Sprintf("%d", status.RunningHosts)},
					{"Tracked clients", fmt.Sprintf("%d", status.TrackedClients)},
					{"Started at", status.StartedAt},
					{"Log file", status.LogPath},
					{"Lock file", status.LockPath},
				}
				fmt.Fprintln(stdout, renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the proxy daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Shutdown()
				if err != nil {
					return fmt.Errorf("request shutdown: %w", err)
				}
				if resp.Stopping {
					fmt.Fprintln(stdout, "Daemon stopping")
				} else {
					fmt.Fprintln(stdout, "Stop request sent")
				}
				return nil
			})
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
