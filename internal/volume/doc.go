// Package volume converts between the AVRCP protocol volume scale (0-127)
// and the local audio output's device-dependent scale.
//
// Conversions are pure: a Range captures the output bounds reported by the
// audio subsystem at startup and every translation is a function of that
// value. Rounding direction differs by purpose - ToSystem floors so a remote
// request is never overshot, ToProtocol ceils so local increments are never
// lost, and ToProtocolRounded rounds to nearest for peer notifications. All
// results are clamped to their scale on both ends.
package volume
