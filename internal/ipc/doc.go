// Package ipc implements the JSON-RPC control surface between the btvol CLI
// (and volume transports) and the btvold daemon over a Unix domain socket.
package ipc
