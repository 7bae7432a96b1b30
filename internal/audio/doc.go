// Package audio defines the boundary to the local audio output subsystem.
//
// The coordinator consumes the System interface and registers a Listener for
// active-output changes; it never assumes a concrete implementation. Mixer is
// the in-process software implementation the daemon runs with: it owns a
// single output level, per-device routing behavior, and the set of active
// output endpoints, which external routing integrations update over IPC.
package audio
