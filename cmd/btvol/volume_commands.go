package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"btvol/internal/ipc"
)

func newVolumeCommand(ctx *commandContext) *cobra.Command {
	volumeCmd := &cobra.Command{
		Use:   "volume",
		Short: "Inspect and change per-device volume",
	}

	getCmd := &cobra.Command{
		Use:   "get <address>",
		Short: "Show the stored volume for a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.GetVolume(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Volume: %d (absolute volume: %s)\n", resp.Volume, yesNo(resp.AbsoluteVolume))
				return nil
			})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <address> <0-127>",
		Short: "Apply a remote-initiated volume change in protocol units",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseVolume(args[1], 127)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.SetVolume(args[0], level); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Volume %d applied for %s\n", level, args[0])
				return nil
			})
		},
	}

	notifyCmd := &cobra.Command{
		Use:   "notify <address> <level>",
		Short: "Report a system-side volume observation for a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid volume %q: %w", args[1], err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.NotifyVolume(args[0], level); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Volume %d reported for %s\n", level, args[0])
				return nil
			})
		},
	}

	volumeCmd.AddCommand(getCmd, setCmd, notifyCmd)
	return volumeCmd
}

func parseVolume(raw string, max int) (int, error) {
	level, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q: %w", raw, err)
	}
	if level < 0 || level > max {
		return 0, fmt.Errorf("volume %d out of range 0-%d", level, max)
	}
	return level, nil
}
