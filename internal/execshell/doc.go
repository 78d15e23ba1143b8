// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle events,
// OSCommandRunner launches processes through os/exec and streams their output
// line by line, and CommandMessageFormatter describes Maven builds in terms of
// the goals they run.
package execshell
