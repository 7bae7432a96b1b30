// Package textutil normalizes Bluetooth device names for display.
//
// Remote device names are free-form UTF-8 chosen by the peer and routinely
// contain combining sequences, control characters, or excessive length. The
// helpers here produce stable, printable forms for tables and logs, and a
// Unicode-aware ordering for listing devices by name.
package textutil
