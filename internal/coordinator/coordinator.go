package coordinator

import (
	"log/slog"
	"sync"

	"btvol/internal/audio"
	"btvol/internal/devstore"
	"btvol/internal/eventlog"
	"btvol/internal/logging"
	"btvol/internal/textutil"
	"btvol/internal/transport"
	"btvol/internal/volume"
)

// eventLogSize bounds the rolling volume event log included in dumps.
const eventLogSize = 30

type routeState int

const (
	routeNone routeState = iota
	routePending
	routeConfirmed
)

func (s routeState) String() string {
	switch s {
	case routePending:
		return "pending"
	case routeConfirmed:
		return "confirmed"
	default:
		return "none"
	}
}

// Coordinator tracks per-device absolute volume capability, last-known
// volume, and the active audio route. All exported methods are safe for
// concurrent use and serialize against each other.
type Coordinator struct {
	rng    volume.Range
	store  *devstore.Store
	system audio.System
	sender transport.Transport
	logger *slog.Logger
	events *eventlog.Log

	mu sync.Mutex
	// caps holds absolute-volume capability for connected devices only.
	caps map[string]bool
	// target is the device intended to carry audio, empty for none.
	target string
	state  routeState
	// deferred marks a confirmed route whose switch is waiting on the
	// device's capability report.
	deferred bool
}

// New constructs a coordinator. The volume range must already be validated;
// construction is the only place translation inputs are trusted.
func New(rng volume.Range, store *devstore.Store, system audio.System, sender transport.Transport, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		rng:    rng,
		store:  store,
		system: system,
		sender: sender,
		logger: logging.NewComponentLogger(logger, "coordinator"),
		events: eventlog.New("Volume Events", eventLogSize),
		caps:   make(map[string]bool),
	}
}

// DeviceConnected records the capability reported for a device once its
// feature negotiation completes. When the audio route already went live
// for this device before capability discovery finished, the deferred
// switch completes here.
func (c *Coordinator) DeviceConnected(address, name string, absoluteVolume bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.caps[address] = absoluteVolume
	if _, ok := c.store.Volume(address); !ok {
		c.logger.Debug("no stored volume, seeding default",
			logging.String(logging.FieldDevice, address),
			logging.Int("volume", c.rng.Default()))
		c.store.Put(address, c.rng.Default())
	}
	// The record must exist before the name lands; SetName never creates one.
	if cleaned := textutil.CleanName(name); cleaned != "" {
		c.store.SetName(address, cleaned)
	}
	c.events.Addf("connected: device=%s absolute=%t", address, absoluteVolume)

	if address == c.target && c.deferred {
		c.deferred = false
		c.switchLocked(address)
		c.state = routeConfirmed
	}
}

// DeviceDisconnected drops the capability entry for a device. The stored
// volume survives so a reconnect restores prior loudness, and the route
// intent is left alone - a later output change callback simply finds no
// matching route.
func (c *Coordinator) DeviceDisconnected(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.caps, address)
	c.events.Addf("disconnected: device=%s", address)
}

// SetActiveDevice records the intent to route audio to a device (or to
// nothing). Equal intent is a no-op. No volume side effects happen here;
// they wait for the audio subsystem to confirm the route, because acting
// early risks applying volume to the wrong physical output.
func (c *Coordinator) SetActiveDevice(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if address == c.target {
		return
	}
	c.events.Addf("active device request: %q -> %q", c.target, address)
	c.target = address
	c.deferred = false
	if address == "" {
		c.state = routeNone
		return
	}
	c.state = routePending
}

// AudioOutputsChanged implements audio.Listener. It treats the callback as
// route confirmation: when the intended device appears among the active
// outputs and its capability is known, the switch procedure runs.
func (c *Coordinator) AudioOutputsChanged(addresses []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.target == "" {
		c.logger.Debug("output change with no intended device")
		return
	}
	found := false
	for _, address := range addresses {
		if address == c.target {
			found = true
			break
		}
	}
	if !found {
		c.logger.Debug("intended device not among active outputs",
			logging.String(logging.FieldDevice, c.target))
		return
	}
	if _, ok := c.caps[c.target]; !ok {
		// Capability discovery has not finished; DeviceConnected completes it.
		c.deferred = true
		c.logger.Warn("route confirmed before capability known, deferring switch",
			logging.String(logging.FieldDevice, c.target),
			logging.String(logging.FieldEventType, "route_switch_deferred"),
			logging.String(logging.FieldImpact, "remote volume not realigned until the device connects"),
			logging.String(logging.FieldErrorHint, "expected transiently during connection setup"))
		return
	}

	c.deferred = false
	c.switchLocked(c.target)
	c.state = routeConfirmed
}

// SetVolume applies a locally initiated volume change expressed in protocol
// units: converts to the system scale, applies it to the output (surfacing
// volume UI only when the level actually changes), and persists the result.
func (c *Coordinator) SetVolume(address string, protocolVolume int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	level := c.rng.ToSystem(protocolVolume)
	cached, ok := c.store.Volume(address)
	showUI := !ok || cached != level
	if err := c.system.SetVolume(level, showUI); err != nil {
		c.logger.Warn("apply volume failed",
			logging.String(logging.FieldDevice, address),
			logging.Int("level", level),
			logging.Error(err),
			logging.String(logging.FieldEventType, "set_volume_failed"),
			logging.String(logging.FieldImpact, "output level unchanged"),
			logging.String(logging.FieldErrorHint, "check audio subsystem state"))
		return
	}
	c.events.Addf("set volume: device=%s protocol=%d system=%d", address, protocolVolume, level)
	c.store.Put(address, level)
}

// SendVolumeChanged reports a system-side volume observation to the remote
// peer. Equal values short-circuit, which both avoids protocol chatter and
// breaks feedback loops between system- and remote-initiated changes.
func (c *Coordinator) SendVolumeChanged(address string, systemVolume int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.store.Volume(address); ok && cached == systemVolume {
		c.logger.Debug("volume unchanged, skipping notification",
			logging.String(logging.FieldDevice, address),
			logging.Int("volume", systemVolume))
		return
	}
	protocol := c.rng.ToProtocolRounded(systemVolume)
	if err := c.sender.SendVolumeChanged(address, protocol); err != nil {
		c.logger.Warn("volume notification failed",
			logging.String(logging.FieldDevice, address),
			logging.Int("protocol_volume", protocol),
			logging.Error(err),
			logging.String(logging.FieldEventType, "volume_notify_failed"),
			logging.String(logging.FieldImpact, "remote display may show a stale volume"),
			logging.String(logging.FieldErrorHint, "verify the transport socket is connected"))
	}
	c.events.Addf("volume changed: device=%s system=%d protocol=%d", address, systemVolume, protocol)
	c.store.Put(address, systemVolume)
}

// AbsoluteVolumeSupported reports the recorded capability for a device, or
// false when the device is unknown or not connected.
func (c *Coordinator) AbsoluteVolumeSupported(address string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps[address]
}

// StoredVolume returns the persisted volume for a device, falling back to
// the process-wide default for unknown devices.
func (c *Coordinator) StoredVolume(address string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storedVolumeLocked(address)
}

// Forget removes a device's persisted volume record on unbond. Capability
// state, if any is left, goes with it.
func (c *Coordinator) Forget(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.caps, address)
	c.store.Remove(address)
	c.events.Addf("forgotten: device=%s", address)
}

func (c *Coordinator) storedVolumeLocked(address string) int {
	if saved, ok := c.store.Volume(address); ok {
		return saved
	}
	c.logger.Debug("no stored volume, using default",
		logging.String(logging.FieldDevice, address),
		logging.Int("volume", c.rng.Default()))
	return c.rng.Default()
}

// switchLocked runs the route-switch procedure for a device whose capability
// entry exists: declare the routing behavior, resolve the stored volume, and
// for absolute-capable devices realign the remote peer. Stored and remote
// volume may have drifted while the device was not the active route, so the
// realignment happens on every activation.
func (c *Coordinator) switchLocked(address string) {
	absolute := c.caps[address]
	behavior := audio.BehaviorLocallyVariable
	if absolute {
		behavior = audio.BehaviorHostControlled
	}
	if err := c.system.SetDeviceVolumeBehavior(address, behavior); err != nil {
		c.logger.Warn("set routing behavior failed",
			logging.String(logging.FieldDevice, address),
			logging.String("behavior", behavior.String()),
			logging.Error(err),
			logging.String(logging.FieldEventType, "routing_behavior_failed"),
			logging.String(logging.FieldImpact, "volume control direction may be wrong for this route"),
			logging.String(logging.FieldErrorHint, "check audio subsystem state"))
	}

	saved := c.storedVolumeLocked(address)
	if !absolute {
		// Local volume handling already reflects the stored preference.
		c.events.Addf("switch: device=%s behavior=%s", address, behavior)
		return
	}

	protocol := c.rng.ToProtocol(saved)
	if err := c.sender.SendVolumeChanged(address, protocol); err != nil {
		c.logger.Warn("realign volume failed",
			logging.String(logging.FieldDevice, address),
			logging.Int("protocol_volume", protocol),
			logging.Error(err),
			logging.String(logging.FieldEventType, "volume_realign_failed"),
			logging.String(logging.FieldImpact, "remote display may show a stale volume"),
			logging.String(logging.FieldErrorHint, "verify the transport socket is connected"))
	}
	c.events.Addf("switch: device=%s behavior=%s volume=%d protocol=%d", address, behavior, saved, protocol)
}
