package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"btvol/internal/audio"
	"btvol/internal/config"
	"btvol/internal/coordinator"
	"btvol/internal/devstore"
	"btvol/internal/logging"
)

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *devstore.Store
	coord   *coordinator.Coordinator
	mixer   *audio.Mixer
	monitor *bluetoothMonitor

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	DatabasePath   string
	LockFilePath   string
	ActiveDevice   string
	RouteState     string
	SystemVolume   int
	MaxVolume      int
	DeviceCount    int
	MonitorRunning bool
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *devstore.Store, logger *slog.Logger, coord *coordinator.Coordinator, mixer *audio.Mixer) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || coord == nil || mixer == nil {
		return nil, errors.New("daemon requires config, store, logger, coordinator, and mixer")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		coord:    coord,
		mixer:    mixer,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	if cfg.Monitor.Enabled {
		d.monitor = newBluetoothMonitor(logger, d.deviceRemoved)
	}
	return d, nil
}

// Start acquires the daemon lock and begins watching for device removal events.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another btvold instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.monitor.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start bluetooth monitor: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("btvold started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background watchers and releases the daemon lock. The swap on
// the running flag lets the IPC stop request and signal shutdown race; only
// one caller tears down.
func (d *Daemon) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.monitor.Stop()
	d.store.Flush()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.logger.Info("btvold stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	snapshot := d.coord.Snapshot()
	return Status{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		DatabasePath:   d.cfg.DatabasePath(),
		LockFilePath:   d.lockPath,
		ActiveDevice:   snapshot.ActiveDevice,
		RouteState:     snapshot.RouteState,
		SystemVolume:   snapshot.SystemVolume,
		MaxVolume:      d.mixer.MaxVolume(),
		DeviceCount:    len(snapshot.Devices),
		MonitorRunning: d.monitor.Running(),
	}
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.cfg.LogPath()
}

// Snapshot returns the coordinator's diagnostic snapshot.
func (d *Daemon) Snapshot() coordinator.Snapshot {
	return d.coord.Snapshot()
}

// Dump renders the plain-text diagnostic report.
func (d *Daemon) Dump() string {
	return d.coord.Dump()
}

// DeviceConnected records a completed capability negotiation for a device.
func (d *Daemon) DeviceConnected(address, name string, absoluteVolume bool) error {
	normalized, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	d.coord.DeviceConnected(normalized, name, absoluteVolume)
	return nil
}

// DeviceDisconnected drops the capability entry for a device.
func (d *Daemon) DeviceDisconnected(address string) error {
	normalized, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	d.coord.DeviceDisconnected(normalized)
	return nil
}

// SetActiveDevice records routing intent. Empty address clears it.
func (d *Daemon) SetActiveDevice(address string) error {
	if strings.TrimSpace(address) == "" {
		d.coord.SetActiveDevice("")
		return nil
	}
	normalized, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	d.coord.SetActiveDevice(normalized)
	return nil
}

// ConfirmRoute reports the set of live audio outputs, as the audio subsystem
// would. It exists for transports that cannot observe output changes directly.
func (d *Daemon) ConfirmRoute(addresses []string) error {
	normalized := make([]string, 0, len(addresses))
	for _, address := range addresses {
		n, err := normalizeAddress(address)
		if err != nil {
			return err
		}
		normalized = append(normalized, n)
	}
	d.mixer.SetActiveOutputs(normalized)
	return nil
}

// SetVolume applies a remote-initiated volume change in protocol units.
func (d *Daemon) SetVolume(address string, protocolVolume int) error {
	normalized, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	d.coord.SetVolume(normalized, protocolVolume)
	return nil
}

// NotifyVolume reports a system-side volume observation for a device.
func (d *Daemon) NotifyVolume(address string, systemVolume int) error {
	normalized, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	d.coord.SendVolumeChanged(normalized, systemVolume)
	return nil
}

// GetVolume returns the stored volume for a device and whether the device
// currently supports absolute volume.
func (d *Daemon) GetVolume(address string) (int, bool, error) {
	normalized, err := normalizeAddress(address)
	if err != nil {
		return 0, false, err
	}
	return d.coord.StoredVolume(normalized), d.coord.AbsoluteVolumeSupported(normalized), nil
}

// Forget removes a device's persisted volume record.
func (d *Daemon) Forget(address string) error {
	normalized, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	d.coord.Forget(normalized)
	return nil
}

// deviceRemoved handles kernel removal events from the bluetooth monitor.
func (d *Daemon) deviceRemoved(address string) {
	normalized, err := normalizeAddress(address)
	if err != nil {
		d.logger.Debug("ignoring removal event with unparseable address",
			logging.String(logging.FieldDevice, address))
		return
	}
	d.coord.DeviceDisconnected(normalized)
}

// normalizeAddress validates a Bluetooth device address and canonicalizes it
// to upper-case colon-separated form.
func normalizeAddress(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	hw, err := net.ParseMAC(trimmed)
	if err != nil || len(hw) != 6 {
		return "", fmt.Errorf("invalid device address %q", address)
	}
	return strings.ToUpper(hw.String()), nil
}
