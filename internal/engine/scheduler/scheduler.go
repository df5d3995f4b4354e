// Package scheduler executes a planned command sequence with bounded parallelism.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// StepStatus represents the status of a step.
type StepStatus string

const (
	// StatusPending indicates the step is waiting to be executed.
	StatusPending StepStatus = "Pending"
	// StatusRunning indicates the step is currently executing.
	StatusRunning StepStatus = "Running"
	// StatusCompleted indicates the step has finished successfully.
	StatusCompleted StepStatus = "Completed"
	// StatusFailed indicates the step execution failed.
	StatusFailed StepStatus = "Failed"
	// StatusSkipped indicates the step never ran because the build stopped first.
	StatusSkipped StepStatus = "Skipped"
)

const dirPerm = 0o755

// Options controls a single Run.
type Options struct {
	// Parallelism bounds the number of commands running at once.
	Parallelism int
	// DryRun writes each command to its span instead of executing it.
	DryRun bool
}

// Scheduler runs command steps once the outputs they need exist.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer

	mu         sync.RWMutex
	stepStatus map[domain.InternedString]StepStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(executor ports.Executor, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		stepStatus: make(map[domain.InternedString]StepStatus),
	}
}

func (s *Scheduler) initStepStatuses(seq domain.Sequence) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.stepStatus)
	for i := range seq {
		s.stepStatus[seq[i].Output] = StatusPending
	}
}

func (s *Scheduler) updateStatus(output domain.InternedString, status StepStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepStatus[output] = status
}

// Run executes seq in cfg.Root. A step starts once every output it needs has
// been produced by an earlier step of seq; needs outside seq count as present.
// With parallelism 1 steps run exactly in sequence order. The first failure
// stops new launches and running steps are allowed to finish.
func (s *Scheduler) Run(ctx context.Context, cfg *domain.Config, seq domain.Sequence, opts Options) error {
	if opts.Parallelism < 1 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidParallelism, "run plan"), "parallelism", opts.Parallelism)
	}

	state := s.newRunState(ctx, cfg, seq, opts)
	s.initStepStatuses(seq)

	outputs := make([]string, len(seq))
	for i := range seq {
		outputs[i] = state.displayName(seq[i].Output)
	}
	s.tracer.EmitPlan(ctx, outputs)

	if !opts.DryRun {
		if err := prepareOutputDirs(ctx, cfg, seq); err != nil {
			return err
		}
	}

	return state.runExecutionLoop()
}

// prepareOutputDirs creates the object and library directories along with the
// parent directory of every output.
func prepareOutputDirs(ctx context.Context, cfg *domain.Config, seq domain.Sequence) error {
	dirs := []string{cfg.ObjDir(), cfg.LibDir()}
	for i := range seq {
		dirs = append(dirs, filepath.Dir(seq[i].Output.String()))
	}
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(len(dirs))
	for _, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.MkdirAll(dir, dirPerm); err != nil {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrOutputDirCreateFailed, "prepare outputs"),
					"dir", dir), "cause", err.Error())
			}
			return nil
		})
	}
	return g.Wait()
}

type result struct {
	output domain.InternedString
	err    error
}

type runState struct {
	s           *Scheduler
	ctx         context.Context
	cfg         *domain.Config
	opts        Options
	pending     []*domain.CommandStep
	planned     map[domain.InternedString]bool
	done        map[domain.InternedString]bool
	active      int
	failed      bool
	resultsCh   chan result
	errs        error
	parallelism int
}

func (s *Scheduler) newRunState(ctx context.Context, cfg *domain.Config, seq domain.Sequence, opts Options) *runState {
	pending := make([]*domain.CommandStep, len(seq))
	planned := make(map[domain.InternedString]bool, len(seq))
	for i := range seq {
		pending[i] = &seq[i]
		planned[seq[i].Output] = true
	}

	return &runState{
		s:           s,
		ctx:         ctx,
		cfg:         cfg,
		opts:        opts,
		pending:     pending,
		planned:     planned,
		done:        make(map[domain.InternedString]bool, len(seq)),
		resultsCh:   make(chan result, opts.Parallelism),
		parallelism: opts.Parallelism,
	}
}

func (state *runState) runExecutionLoop() error {
	for {
		state.schedule()

		// Nothing running means nothing left can become ready.
		if state.active == 0 {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
			// Running commands see the same context; drain their results.
			for state.active > 0 {
				state.handleResult(<-state.resultsCh)
			}
		}
	}

	for _, step := range state.pending {
		state.s.updateStatus(step.Output, StatusSkipped)
	}

	if err := state.ctx.Err(); err != nil {
		state.errs = errors.Join(state.errs, err)
	}
	return state.errs
}

// schedule launches ready steps in sequence order.
func (state *runState) schedule() {
	for i := 0; i < len(state.pending); {
		if state.active >= state.parallelism || state.failed || state.ctx.Err() != nil {
			break
		}

		step := state.pending[i]
		if !state.ready(step) {
			if state.parallelism == 1 {
				break
			}
			i++
			continue
		}

		state.pending = slices.Delete(state.pending, i, i+1)
		state.active++
		state.s.updateStatus(step.Output, StatusRunning)
		go state.executeStep(step)
	}
}

func (state *runState) ready(step *domain.CommandStep) bool {
	for _, need := range step.Needs {
		if state.planned[need] && !state.done[need] {
			return false
		}
	}
	return true
}

func (state *runState) executeStep(step *domain.CommandStep) {
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, state.displayName(step.Output),
			ports.WithAttribute("cplan.target", step.Target.String()),
			ports.WithAttribute("cplan.priority", step.Priority.String()),
			ports.WithAttribute("cplan.command", step.Command),
		)
		defer span.End()

		if state.opts.DryRun {
			_, _ = io.WriteString(span, step.Command+"\n")
			return result{output: step.Output}
		}

		err := state.s.executor.Execute(ctx, step, state.cfg.Root, span, span)
		if err != nil {
			span.RecordError(err)
		}
		return result{output: step.Output, err: err}
	}()

	state.resultsCh <- res
}

func (state *runState) handleResult(res result) {
	state.active--
	if res.err != nil {
		wrapped := zerr.With(
			zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrStepExecutionFailed, res.err), "execute step"),
			"output", res.output.String(),
		)
		state.errs = errors.Join(state.errs, wrapped)
		state.failed = true
		state.s.updateStatus(res.output, StatusFailed)
		return
	}

	state.done[res.output] = true
	state.s.updateStatus(res.output, StatusCompleted)
}

// displayName returns output relative to the project root when possible.
func (state *runState) displayName(output domain.InternedString) string {
	rel, err := filepath.Rel(state.cfg.Root, output.String())
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return output.String()
	}
	return rel
}
