// Package preflight provides readiness checks for the filesystem paths and
// runtime state that btvold depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs any failure before it begins
//     serving, so a read-only state directory surfaces immediately instead of
//     as silently dropped volume writes.
//   - The CLI "btvol status" command renders individual check results when
//     the daemon is not reachable.
package preflight
