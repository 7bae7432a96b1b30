package daemon

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"btvol/internal/logging"
)

// bluetoothMonitor listens for udev netlink events on the bluetooth subsystem
// and reports device removals. This keeps stale capability entries from
// lingering when a transport crashes without delivering a disconnect.
type bluetoothMonitor struct {
	logger  *slog.Logger
	handler func(address string)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newBluetoothMonitor(logger *slog.Logger, handler func(address string)) *bluetoothMonitor {
	return &bluetoothMonitor{
		logger:  logging.NewComponentLogger(logger, "bluetooth-monitor"),
		handler: handler,
	}
}

// Start begins listening for udev netlink events.
func (m *bluetoothMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; device removal will rely on transport disconnects",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "kernel-level device removal events unavailable"),
		)
		return nil // Non-fatal - transports still report disconnects over IPC
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	// Pass quit channel to goroutine to avoid reading m.quit without lock
	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("bluetooth monitor started",
		logging.String(logging.FieldEventType, "bluetooth_monitor_started"),
	)

	return nil
}

// Stop shuts down the monitor.
func (m *bluetoothMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}

	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}

	m.running = false

	m.logger.Info("bluetooth monitor stopped",
		logging.String(logging.FieldEventType, "bluetooth_monitor_stopped"),
	)
}

// Running reports whether the monitor is active.
func (m *bluetoothMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *bluetoothMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)

	matcher := m.buildMatcher()

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(events, errs, matcher)

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "device removal events may be missed"),
			)
		}
	}
}

// buildMatcher creates a matcher for bluetooth device removal events.
func (m *bluetoothMonitor) buildMatcher() netlink.Matcher {
	action := "remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "bluetooth",
		},
	})
	return rules
}

// handleEvent processes a matched uevent.
func (m *bluetoothMonitor) handleEvent(uevent netlink.UEvent) {
	address := extractDeviceAddress(uevent)
	if address == "" {
		m.logger.Debug("ignoring event without device address",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}

	m.logger.Info("device removal detected via netlink",
		logging.String(logging.FieldEventType, "netlink_device_removed"),
		logging.String(logging.FieldDevice, address),
	)

	if m.handler != nil {
		m.handler(address)
	}
}

// extractDeviceAddress gets the peer address from a uevent. Device objects
// under /sys/class/bluetooth are named hciN:handle, so the address has to
// come from the event environment.
func extractDeviceAddress(uevent netlink.UEvent) string {
	if address := uevent.Env["ADDRESS"]; address != "" {
		return address
	}

	// Fall back on the DEVPATH leaf (e.g. .../hci0/hci0:3/dev_AA_BB_CC_DD_EE_FF)
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		devpath = uevent.KObj
	}
	parts := strings.Split(devpath, "/")
	leaf := parts[len(parts)-1]
	if !strings.HasPrefix(leaf, "dev_") {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(leaf, "dev_"), "_", ":")
}
