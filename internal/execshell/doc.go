// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and typed failures,
// and OSCommandRunner runs commands through os/exec. The audit workflow uses
// it to query git history for patches that lack authorship metadata.
package execshell
