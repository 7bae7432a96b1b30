package audio

// Behavior describes how volume for a routed device is controlled.
type Behavior int

const (
	// BehaviorLocallyVariable means the local system owns the output level.
	BehaviorLocallyVariable Behavior = iota
	// BehaviorHostControlled means the remote device accepts host-pushed
	// absolute volume values.
	BehaviorHostControlled
)

func (b Behavior) String() string {
	switch b {
	case BehaviorHostControlled:
		return "host-controlled"
	case BehaviorLocallyVariable:
		return "locally-variable"
	default:
		return "unknown"
	}
}

// System is the audio subsystem surface the volume coordinator consumes.
type System interface {
	// MaxVolume and MinVolume report the output scale. Read once at startup.
	MaxVolume() int
	MinVolume() int
	// CurrentVolume returns the present output level.
	CurrentVolume() int
	// SetVolume applies a new output level, optionally surfacing volume UI.
	SetVolume(level int, showUI bool) error
	// SetDeviceVolumeBehavior declares who controls volume for a device route.
	SetDeviceVolumeBehavior(address string, behavior Behavior) error
}

// Listener receives notifications when the set of active output endpoints
// changes. The coordinator implements this and registers itself with the
// audio subsystem.
type Listener interface {
	AudioOutputsChanged(addresses []string)
}
