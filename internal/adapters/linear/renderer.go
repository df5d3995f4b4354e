// Package linear provides a line-buffered progress renderer for build steps.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/cplan/internal/core/ports"
	"go.trai.ch/cplan/internal/ui/output"
	"go.trai.ch/cplan/internal/ui/style"
)

// Renderer implements ports.Renderer with chronological, step-prefixed lines.
// Status lines go to stderr and command output to stdout.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	steps   map[string]*stepState
	stopped bool
}

type stepState struct {
	name      string
	startTime time.Time
	buf       bytes.Buffer
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer creates a new Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, output.ColorProfileANSI),
		steps:  make(map[string]*stepState),
	}
}

// Start does nothing; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes partial lines of unfinished steps.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, st := range r.steps {
		r.flushLocked(st)
	}
	r.stopped = true
	return nil
}

// Wait does nothing; the renderer writes synchronously.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the number of planned steps.
func (r *Renderer) OnPlanEmit(outputs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	_, _ = fmt.Fprintf(r.stderr, "Planning to build %d step(s)\n", len(outputs))
}

// OnStepStart prints a start line for the step.
func (r *Renderer) OnStepStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	r.steps[spanID] = &stepState{name: name, startTime: startTime}

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", prefix)
}

// OnStepLog buffers data and prints every complete line with the step prefix.
func (r *Renderer) OnStepLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.steps[spanID]
	if !ok || r.stopped {
		return
	}

	st.buf.Write(data)
	for {
		i := bytes.IndexByte(st.buf.Bytes(), '\n')
		if i < 0 {
			return
		}
		line := st.buf.Next(i + 1)
		r.printLineLocked(st.name, line)
	}
}

// OnStepComplete flushes the step's partial line and prints its status.
func (r *Renderer) OnStepComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.steps[spanID]
	if !ok {
		return
	}
	delete(r.steps, spanID)
	if r.stopped {
		return
	}

	r.flushLocked(st)

	duration := endTime.Sub(st.startTime).Round(time.Millisecond)
	prefix := fmt.Sprintf("[%s]", st.name)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(r.output.Color(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}

	symbol := r.output.String(style.Check).Foreground(r.output.Color(string(style.Green))).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
}

func (r *Renderer) flushLocked(st *stepState) {
	if st.buf.Len() > 0 {
		r.printLineLocked(st.name, st.buf.Bytes())
		st.buf.Reset()
	}
}

func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
