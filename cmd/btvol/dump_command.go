package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"btvol/internal/ipc"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the daemon's diagnostic volume report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Dump()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), resp.Report)
				return nil
			})
		},
	}
}
