// Package shell runs planned commands through the system shell.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultShell interprets command text.
const DefaultShell = "/bin/sh"

// Executor implements ports.Executor with `sh -c`.
//
// Commands run on a pseudo-terminal when one can be opened so compilers keep
// their colored diagnostics; stdout and stderr are merged in that case.
// Without a pseudo-terminal the streams stay separate.
type Executor struct {
	logger   ports.Logger
	shell    string
	usePTY   bool
	fallback sync.Once
}

// Option configures an Executor.
type Option func(*Executor)

// WithShell overrides the interpreter.
func WithShell(path string) Option {
	return func(e *Executor) { e.shell = path }
}

// WithPTY enables or disables pseudo-terminal execution.
func WithPTY(enabled bool) Option {
	return func(e *Executor) { e.usePTY = enabled }
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{
		logger: logger,
		shell:  DefaultShell,
		usePTY: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs step.Command in dir and waits for it to finish.
func (e *Executor) Execute(
	ctx context.Context,
	step *domain.CommandStep,
	dir string,
	stdout, stderr io.Writer,
) error {
	if step.Command == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, e.shell, "-c", step.Command) //nolint:gosec // command text comes from the plan
	cmd.Dir = dir
	cmd.Env = os.Environ()

	var err error
	if e.usePTY {
		err = e.runPTY(cmd, stdout)
		if errors.Is(err, errNoPTY) {
			e.fallback.Do(func() {
				e.logger.Warn("pseudo-terminal unavailable, running commands with pipes")
			})
			cmd = exec.CommandContext(ctx, e.shell, "-c", step.Command) //nolint:gosec // see above
			cmd.Dir = dir
			cmd.Env = os.Environ()
			err = runPipes(cmd, stdout, stderr)
		}
	} else {
		err = runPipes(cmd, stdout, stderr)
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode), "output", step.Output.String())
	}
	return nil
}

var errNoPTY = errors.New("pty unavailable")

func (e *Executor) runPTY(cmd *exec.Cmd, stdout io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		if cmd.Process == nil {
			return errNoPTY
		}
		return err
	}

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		// Reading the master returns EIO once the child side closes.
		_, _ = io.Copy(stdout, ptmx)
	}()

	err = cmd.Wait()
	<-copied
	_ = ptmx.Close()
	return err
}

// pipeWaitDelay bounds how long Wait keeps copying output after cancellation.
const pipeWaitDelay = 500 * time.Millisecond

// runPipes starts the shell in its own process group so cancellation kills
// every process the command spawned, not only the shell.
func runPipes(cmd *exec.Cmd, stdout, stderr io.Writer) error {
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = pipeWaitDelay
	return cmd.Run()
}

var _ ports.Executor = (*Executor)(nil)
