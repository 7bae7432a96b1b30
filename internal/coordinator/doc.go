// Package coordinator reconciles volume state between remote Bluetooth
// devices and the local audio output.
//
// Three facts change independently: which device is intended to carry audio,
// whether that device has finished capability negotiation, and what volume
// was last set for it. The coordinator buffers the routing intent until the
// audio subsystem confirms the route is live, then pushes the stored volume
// in the right direction - to the remote peer when it supports absolute
// volume, otherwise relying on local volume handling.
//
// A single mutex guards all coordinator state. No operation blocks while
// holding it: persistence writes are handed to the store's background
// flusher and protocol sends carry their own deadline.
package coordinator
