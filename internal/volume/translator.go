package volume

import "fmt"

// ProtocolMax is the highest volume value on the AVRCP protocol scale.
const ProtocolMax = 127

// Range holds the local audio output's volume bounds. The bounds are read
// from the audio subsystem once at startup and never change afterwards;
// conversions are pure functions of the two scalars.
type Range struct {
	min int
	max int
}

// NewRange validates the bounds reported by the audio subsystem. A
// non-positive maximum would make every conversion ratio undefined, so it is
// rejected here rather than guarded against on every call.
func NewRange(min, max int) (Range, error) {
	if max <= 0 {
		return Range{}, fmt.Errorf("volume range: device max volume must be positive, got %d", max)
	}
	if min < 0 || min >= max {
		return Range{}, fmt.Errorf("volume range: device min volume %d must be in [0, %d)", min, max)
	}
	return Range{min: min, max: max}, nil
}

// Min returns the lower bound of the system volume scale.
func (r Range) Min() int { return r.min }

// Max returns the upper bound of the system volume scale.
func (r Range) Max() int { return r.max }

// Default returns the volume assigned to a device that has no stored
// preference: half of the device maximum.
func (r Range) Default() int { return r.max / 2 }

// ToSystem converts a protocol volume to the system scale. The result rounds
// down so the local output never overshoots the remote-requested loudness.
func (r Range) ToSystem(protocol int) int {
	protocol = clamp(protocol, 0, ProtocolMax)
	system := protocol * r.max / ProtocolMax
	return clamp(system, r.min, r.max)
}

// ToProtocol converts a system volume to the protocol scale, rounding up so
// that a single system-side increment is never silently dropped.
func (r Range) ToProtocol(system int) int {
	system = clamp(system, r.min, r.max)
	protocol := (system*ProtocolMax + r.max - 1) / r.max
	return clamp(protocol, 0, ProtocolMax)
}

// ToProtocolRounded converts a system volume to the protocol scale using
// round-to-nearest. Used when reporting an externally observed system volume
// to the remote peer, where the upward bias of ToProtocol would skew the
// remote display.
func (r Range) ToProtocolRounded(system int) int {
	system = clamp(system, r.min, r.max)
	protocol := (system*ProtocolMax + r.max/2) / r.max
	return clamp(protocol, 0, ProtocolMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
