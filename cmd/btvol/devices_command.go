package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"btvol/internal/ipc"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List known devices and their stored volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Devices()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Devices) == 0 {
					fmt.Fprintln(stdout, "No devices known")
					return nil
				}
				rows := make([][]string, 0, len(resp.Devices))
				for _, device := range resp.Devices {
					rows = append(rows, []string{
						device.Address,
						device.Name,
						strconv.Itoa(device.Volume),
						device.Capability,
					})
				}
				fmt.Fprintln(stdout, renderTable([]string{"Address", "Name", "Volume", "AbsVol"}, rows, 3))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit devices as JSON")
	return cmd
}
