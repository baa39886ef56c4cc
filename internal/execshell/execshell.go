// Package execshell is the platform collaborator spec.md names but keeps
// out of the core's scope: a thing that can run a command line and hand
// back its combined stdout+stderr.
package execshell

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/armon/circbuf"
	"github.com/cenkalti/backoff/v5"
)

// outputLimit bounds how much combined output a single command capture
// retains; a runaway compiler invocation cannot grow this without bound
// the way an unbounded bytes.Buffer would.
const outputLimit = 4 << 20 // 4 MiB

// Executor runs a single command line and returns its combined
// stdout+stderr, exactly the contract §1 asks of the platform collaborator.
type Executor interface {
	Run(ctx context.Context, command string, dir string) (output string, err error)
}

// Shell is the default Executor, running commands through the OS shell so
// a single "command line" string (as a compiler adapter produces it) needs
// no manual argv splitting.
type Shell struct {
	// ShellPath overrides the shell used to interpret a command line;
	// empty means "sh -c" (or "cmd /C" on Windows).
	ShellPath string
}

// NewShell returns a Shell with the default OS shell.
func NewShell() *Shell {
	return &Shell{}
}

// Run launches command, retrying only the *launch* itself (never the
// command's own exit status or output) a handful of times on transient
// OS-level spawn errors such as EAGAIN from an exhausted process table.
// Toolchain diagnostics are never retried here — only resolver.go decides
// what a failing compile means.
func (s *Shell) Run(ctx context.Context, command string, dir string) (string, error) {
	operation := func() (string, error) {
		buf, err := circbuf.NewBuffer(outputLimit)
		if err != nil {
			return "", backoff.Permanent(err)
		}

		cmd := s.build(ctx, command)
		cmd.Dir = dir
		cmd.Stdout = buf
		cmd.Stderr = buf

		if err := cmd.Run(); err != nil {
			if isTransientSpawnError(err) {
				return "", err // retryable
			}
			// A non-zero exit or signal is the compiler's own result,
			// not a launch failure; surface the captured output as-is.
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return buf.String(), nil
			}
			return "", backoff.Permanent(err)
		}
		return buf.String(), nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithMaxTries(3),
		backoff.WithMaxElapsedTime(LaunchTimeout),
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
	)
}

func (s *Shell) build(ctx context.Context, command string) *exec.Cmd {
	shell := s.ShellPath
	if shell != "" {
		return exec.CommandContext(ctx, shell, "-c", command)
	}
	return defaultShellCommand(ctx, command)
}

// LaunchTimeout is a conservative ceiling for how long the retrying launch
// path itself is allowed to take finding a process slot; it does not bound
// the command's own execution time once started.
const LaunchTimeout = 10 * time.Second

// JoinLines normalizes CRLF/CR/LF line endings in captured output into a
// slice of lines, the shape process_diagnostics classifies one at a time.
func JoinLines(output string) []string {
	normalized := strings.ReplaceAll(output, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	if normalized == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(normalized, "\n"), "\n")
}
