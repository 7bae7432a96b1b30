package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"btvol/internal/config"
	"btvol/internal/logging"
)

// Mixer is a software audio output: one volume level within configured
// bounds, per-device routing behavior, and the set of currently active
// output endpoints. Listeners are notified outside the mixer lock so they
// may call back into the mixer freely.
type Mixer struct {
	min int
	max int

	logger *slog.Logger

	mu        sync.Mutex
	level     int
	behaviors map[string]Behavior
	outputs   []string
	listeners []Listener
}

// NewMixer builds a mixer from the configured volume bounds, starting at
// half scale.
func NewMixer(cfg *config.Config, logger *slog.Logger) *Mixer {
	return &Mixer{
		min:       cfg.Audio.MinVolume,
		max:       cfg.Audio.MaxVolume,
		logger:    logging.NewComponentLogger(logger, "mixer"),
		level:     cfg.Audio.MaxVolume / 2,
		behaviors: make(map[string]Behavior),
	}
}

// Subscribe registers a listener for active-output changes.
func (m *Mixer) Subscribe(listener Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// MaxVolume implements System.
func (m *Mixer) MaxVolume() int { return m.max }

// MinVolume implements System.
func (m *Mixer) MinVolume() int { return m.min }

// CurrentVolume implements System.
func (m *Mixer) CurrentVolume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// SetVolume implements System. Levels outside the configured bounds are
// rejected rather than clamped: callers translate volumes and are expected
// to stay on scale.
func (m *Mixer) SetVolume(level int, showUI bool) error {
	if level < m.min || level > m.max {
		return fmt.Errorf("mixer: level %d outside [%d, %d]", level, m.min, m.max)
	}
	m.mu.Lock()
	changed := m.level != level
	m.level = level
	m.mu.Unlock()

	if changed {
		m.logger.Debug("output level changed",
			logging.Int("level", level),
			logging.Bool("show_ui", showUI))
	}
	return nil
}

// SetDeviceVolumeBehavior implements System.
func (m *Mixer) SetDeviceVolumeBehavior(address string, behavior Behavior) error {
	m.mu.Lock()
	m.behaviors[address] = behavior
	m.mu.Unlock()

	m.logger.Debug("device routing behavior set",
		logging.String(logging.FieldDevice, address),
		logging.String("behavior", behavior.String()))
	return nil
}

// DeviceVolumeBehavior reports the declared behavior for a device route.
func (m *Mixer) DeviceVolumeBehavior(address string) (Behavior, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	behavior, ok := m.behaviors[address]
	return behavior, ok
}

// SetActiveOutputs replaces the set of active output endpoints and notifies
// subscribed listeners. External audio-routing integrations drive this.
func (m *Mixer) SetActiveOutputs(addresses []string) {
	m.mu.Lock()
	m.outputs = append([]string(nil), addresses...)
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, listener := range listeners {
		listener.AudioOutputsChanged(addresses)
	}
}

// ActiveOutputs returns the currently active output endpoints.
func (m *Mixer) ActiveOutputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.outputs...)
}
