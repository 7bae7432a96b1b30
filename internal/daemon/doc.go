// Package daemon owns the long-running btvold process state: the
// single-instance lock, the optional kernel uevent monitor, and the
// operations the IPC surface exposes against the volume coordinator.
package daemon
