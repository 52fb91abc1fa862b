// Package execshell provides structured helpers for invoking the git binary.
//
// It wraps os/exec behind ShellExecutor, which logs command lifecycle events,
// converts non-zero exits into typed errors, and exposes the argument vector,
// exit code, and captured output streams as the only process contract.
package execshell
