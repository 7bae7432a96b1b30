// Package daemonrun wires together the btvold runtime: logging, preflight,
// the device store, mixer, coordinator, and the IPC server, then blocks until
// a signal or stop request arrives.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"btvol/internal/audio"
	"btvol/internal/config"
	"btvol/internal/coordinator"
	"btvol/internal/daemon"
	"btvol/internal/devstore"
	"btvol/internal/ipc"
	"btvol/internal/logging"
	"btvol/internal/preflight"
	"btvol/internal/transport"
	"btvol/internal/volume"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the btvold runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("create runtime directories: %w", err)
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.LogPath()},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	sessionID := uuid.NewString()
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))
	logger.Info("btvold starting",
		logging.String(logging.FieldEventType, "daemon_starting"),
		logging.String("state_dir", cfg.Paths.StateDir))

	for _, result := range preflight.RunAll(cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldImpact, "daemon may not persist or serve volume state"),
			logging.String(logging.FieldErrorHint, "fix the reported path and restart"))
	}

	store, err := devstore.Open(cfg, logger)
	if err != nil {
		logger.Error("open device store", logging.Error(err))
		return err
	}
	pruneInvalidRecords(store, logger)

	rng, err := volume.NewRange(cfg.Audio.MinVolume, cfg.Audio.MaxVolume)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("invalid volume bounds: %w", err)
	}

	mixer := audio.NewMixer(cfg, logger)
	var sender transport.Transport = transport.Nop{}
	if cfg.Transport.Socket != "" {
		sender = transport.NewSocketSender(cfg.Transport.Socket, logger)
	}
	coord := coordinator.New(rng, store, mixer, sender, logger)
	mixer.Subscribe(coord)

	d, err := daemon.New(cfg, store, logger, coord, mixer)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, cancel, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check for a running btvold instance holding the lock"),
			logging.String(logging.FieldImpact, "volume coordination unavailable"))
		return err
	}

	<-signalCtx.Done()
	logger.Info("btvold shutting down")
	return nil
}

// pruneInvalidRecords drops rows whose address no longer parses. Transports
// remove unbonded devices through Forget; this only clears corrupt rows so a
// bad write cannot wedge the device table forever.
func pruneInvalidRecords(store *devstore.Store, logger *slog.Logger) {
	removed := store.Prune(func(address string) bool {
		hw, err := net.ParseMAC(address)
		return err == nil && len(hw) == 6
	})
	for _, address := range removed {
		logger.Warn("pruned device record with invalid address",
			logging.String(logging.FieldDevice, address),
			logging.String(logging.FieldEventType, "device_record_pruned"))
	}
}
