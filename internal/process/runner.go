package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const (
	// DefaultTimeout applies when NewShellRunner is given a non-positive timeout.
	DefaultTimeout = 10 * time.Second

	// appendFileMode is the permission used when AppendToFile creates a file.
	appendFileMode = 0o644

	// waitDelay bounds how long Wait blocks on output pipes after a kill.
	waitDelay = 2 * time.Second

	// maxLoggedStderr caps stderr text attached to debug logs.
	maxLoggedStderr = 512
)

// Runner executes external commands and appends to files.
type Runner interface {
	// Run executes command and returns its standard output.
	Run(ctx context.Context, command string) (string, error)

	// AppendToFile appends text to the file at path, creating it if needed.
	AppendToFile(path, text string) error
}

// Logger defines the logging interface for the runner.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ShellRunner runs commands through /bin/sh.
type ShellRunner struct {
	shell   string
	timeout time.Duration
	logger  Logger
}

// NewShellRunner returns a ShellRunner that limits each command to timeout.
func NewShellRunner(timeout time.Duration) *ShellRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ShellRunner{
		shell:   "/bin/sh",
		timeout: timeout,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the runner.
func (r *ShellRunner) SetLogger(logger Logger) {
	r.logger = logger
}

// Timeout returns the per-command timeout.
func (r *ShellRunner) Timeout() time.Duration {
	return r.timeout
}

// Run executes command with "sh -c" and returns standard output.
//
// A start failure, non-zero exit, timeout or cancellation of ctx returns
// ErrCommandFailed wrapped with the command and exit detail.
func (r *ShellRunner) Run(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", ErrEmptyCommand
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.shell, "-c", command) //nolint:gosec // Commands are built from operator config

	// Own process group so the kill reaches tdtool and anything it spawns.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if stderr.Len() > 0 {
		r.logger.Debug("command stderr",
			"command", command,
			"stderr", truncate(stderr.String(), maxLoggedStderr),
		)
	}

	if err != nil {
		detail := err.Error()
		if ctxErr := ctx.Err(); ctxErr != nil {
			detail = ctxErr.Error()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			detail = fmt.Sprintf("exit status %d", exitErr.ExitCode())
		}
		r.logger.Warn("command failed",
			"command", command,
			"error", detail,
			"duration", elapsed,
		)
		return "", fmt.Errorf("%w: %q: %s", ErrCommandFailed, command, detail)
	}

	r.logger.Debug("command finished",
		"command", command,
		"bytes", stdout.Len(),
		"duration", elapsed,
	)
	return stdout.String(), nil
}

// AppendToFile appends text to path, creating the file with mode 0644 when
// it does not exist.
func (r *ShellRunner) AppendToFile(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, appendFileMode) //nolint:gosec // Path comes from config
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrAppendFailed, path, err)
	}

	if _, err := f.WriteString(text); err != nil {
		f.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("%w: writing %s: %w", ErrAppendFailed, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrAppendFailed, path, err)
	}

	r.logger.Info("appended to file", "path", path, "bytes", len(text))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
