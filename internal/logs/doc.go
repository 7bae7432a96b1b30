// Package logs reads the btvold log file incrementally so the CLI can page
// and follow daemon output over IPC without shipping a streaming protocol.
package logs
