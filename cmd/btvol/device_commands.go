package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"btvol/internal/ipc"
)

func newDeviceCommand(ctx *commandContext) *cobra.Command {
	deviceCmd := &cobra.Command{
		Use:   "device",
		Short: "Report device lifecycle events to the daemon",
	}

	var name string
	var absolute bool
	connectedCmd := &cobra.Command{
		Use:   "connected <address>",
		Short: "Report a device whose capability negotiation completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.DeviceConnected(args[0], name, absolute); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Device %s connected (absolute volume: %s)\n", args[0], yesNo(absolute))
				return nil
			})
		},
	}
	connectedCmd.Flags().StringVar(&name, "name", "", "Human-readable device name")
	connectedCmd.Flags().BoolVar(&absolute, "absolute", false, "Device supports absolute volume")

	disconnectedCmd := &cobra.Command{
		Use:   "disconnected <address>",
		Short: "Report a device disconnect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.DeviceDisconnected(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Device %s disconnected\n", args[0])
				return nil
			})
		},
	}

	forgetCmd := &cobra.Command{
		Use:   "forget <address>",
		Short: "Drop a device's stored volume (use on unbond)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.Forget(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Device %s forgotten\n", args[0])
				return nil
			})
		},
	}

	deviceCmd.AddCommand(connectedCmd, disconnectedCmd, forgetCmd)
	return deviceCmd
}
