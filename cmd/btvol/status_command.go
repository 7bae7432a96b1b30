package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"btvol/internal/ipc"
	"btvol/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and volume route status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status *ipc.StatusResponse
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, statusErr := client.Status()
				if statusErr != nil {
					return statusErr
				}
				status = resp
				return nil
			})
			if err != nil {
				if jsonOutput {
					return err
				}
				return renderOfflineStatus(cmd, ctx)
			}

			if jsonOutput {
				return writeJSON(cmd, status)
			}

			p := newStatusPrinter(cmd.OutOrStdout())
			p.section("Daemon")
			p.line("btvold", statusOK, fmt.Sprintf("Running (pid %d)", status.PID))
			monitorKind, monitorDetail := statusInfo, "Inactive"
			if status.MonitorRunning {
				monitorKind, monitorDetail = statusOK, "Watching kernel device events"
			}
			p.line("Device monitor", monitorKind, monitorDetail)
			p.line("Database", statusInfo, status.DatabasePath)
			p.blank()

			p.section("Volume Route")
			active := status.ActiveDevice
			activeKind := statusOK
			if active == "" {
				active = "none"
				activeKind = statusInfo
			}
			p.line("Active device", activeKind, active)
			routeKind := statusInfo
			switch status.RouteState {
			case "confirmed":
				routeKind = statusOK
			case "pending":
				routeKind = statusWarn
			}
			p.line("Route state", routeKind, status.RouteState)
			p.line("System volume", statusInfo, fmt.Sprintf("%d / %d", status.SystemVolume, status.MaxVolume))
			p.line("Known devices", statusInfo, fmt.Sprintf("%d", status.DeviceCount))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	return cmd
}

// renderOfflineStatus runs local preflight checks when the daemon is not
// reachable, so "btvol status" still says something useful.
func renderOfflineStatus(cmd *cobra.Command, ctx *commandContext) error {
	p := newStatusPrinter(cmd.OutOrStdout())
	p.section("Daemon")
	p.line("btvold", statusWarn, "Not running (run `btvol daemon start`)")
	p.blank()

	cfg := ctx.configValue()
	if cfg == nil {
		return nil
	}
	p.section("Preflight")
	for _, result := range preflight.RunAll(cfg) {
		kind := statusError
		if result.Passed {
			kind = statusOK
		}
		p.line(result.Name, kind, result.Detail)
	}
	return nil
}
