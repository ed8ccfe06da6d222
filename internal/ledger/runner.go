// Package ledger runs hledger and turns its CSV output into posting records.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultBinary is the executable used when no explicit path is configured.
const DefaultBinary = "hledger"

// ErrLedgerNotFound is returned when the hledger binary cannot be located.
var ErrLedgerNotFound = errors.New("ledger binary not found")

// Runner executes ledger commands.
type Runner interface {
	// Stream starts a command and returns its stdout. Closing the stream
	// terminates the command if it is still running.
	Stream(ctx context.Context, args ...string) (io.ReadCloser, error)
	// Output runs a command to completion and returns its stdout.
	Output(ctx context.Context, args ...string) ([]byte, error)
}

// ProcessError reports a ledger command that exited unsuccessfully.
type ProcessError struct {
	Err      error
	Stderr   string
	Args     []string
	ExitCode int
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s failed", strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		return msg + ": " + stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ExecRunner runs the hledger binary as a subprocess.
type ExecRunner struct {
	path       string
	ledgerFile string
}

// NewExecRunner creates a runner for the binary at path. When ledgerFile is
// set it is passed to every command with -f.
func NewExecRunner(path, ledgerFile string) (*ExecRunner, error) {
	if path == "" {
		path = DefaultBinary
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLedgerNotFound, path)
	}

	return &ExecRunner{
		path:       resolved,
		ledgerFile: ledgerFile,
	}, nil
}

func (r *ExecRunner) command(ctx context.Context, args []string) (*exec.Cmd, []string) {
	full := args
	if r.ledgerFile != "" {
		full = append([]string{"-f", r.ledgerFile}, args...)
	}
	return exec.CommandContext(ctx, r.path, full...), append([]string{r.path}, full...)
}

// Stream starts the command and hands back a Process reading its stdout.
func (r *ExecRunner) Stream(ctx context.Context, args ...string) (io.ReadCloser, error) {
	cmd, display := r.command(ctx, args)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, &ProcessError{Args: display, Err: err}
	}

	slog.Debug("started ledger process", "args", display, "pid", cmd.Process.Pid)

	return &Process{
		cmd:    cmd,
		stdout: stdout,
		stderr: &stderr,
		args:   display,
	}, nil
}

// Output runs the command and returns stdout once it exits.
func (r *ExecRunner) Output(ctx context.Context, args ...string) ([]byte, error) {
	cmd, display := r.command(ctx, args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running ledger command", "args", display)

	if err := cmd.Run(); err != nil {
		return nil, newProcessError(display, err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// Process is a running ledger command whose stdout is being consumed.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	args   []string
	eof    bool
	closed bool
}

func (p *Process) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if errors.Is(err, io.EOF) {
		p.eof = true
	}
	return n, err
}

// Close releases the process. If stdout was not fully consumed the process
// is killed and its exit status ignored; otherwise a non-zero exit is
// reported as a *ProcessError.
func (p *Process) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if !p.eof {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			slog.Debug("failed to kill ledger process", "error", err)
		}
		_ = p.cmd.Wait()
		slog.Debug("terminated ledger process early", "args", p.args)
		return nil
	}

	if err := p.cmd.Wait(); err != nil {
		return newProcessError(p.args, err, p.stderr.String())
	}
	return nil
}

func newProcessError(args []string, err error, stderr string) *ProcessError {
	pe := &ProcessError{Args: args, Err: err, Stderr: stderr}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		pe.ExitCode = exitErr.ExitCode()
	}
	return pe
}
