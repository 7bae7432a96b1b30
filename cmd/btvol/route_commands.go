package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"btvol/internal/ipc"
)

func newRouteCommand(ctx *commandContext) *cobra.Command {
	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Manage the active audio route",
	}

	activeCmd := &cobra.Command{
		Use:   "active [address]",
		Short: "Set routing intent to a device, or clear it with no argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := ""
			if len(args) == 1 {
				address = args[0]
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.SetActiveDevice(address); err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if address == "" {
					fmt.Fprintln(stdout, "Routing intent cleared")
				} else {
					fmt.Fprintf(stdout, "Routing intent set to %s (awaiting confirmation)\n", address)
				}
				return nil
			})
		},
	}

	confirmCmd := &cobra.Command{
		Use:   "confirm <address>...",
		Short: "Report the live audio outputs, confirming a pending route",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.RouteConfirmed(args); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Route confirmation sent for %d output(s)\n", len(args))
				return nil
			})
		},
	}

	routeCmd.AddCommand(activeCmd, confirmCmd)
	return routeCmd
}
