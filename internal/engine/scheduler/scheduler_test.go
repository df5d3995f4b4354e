package scheduler_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
	"go.trai.ch/cplan/internal/core/ports/mocks"
	"go.trai.ch/cplan/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type recordingTracer struct {
	mu    sync.Mutex
	plan  []string
	names []string
	logs  map[string]string
	errs  map[string]error
}

func newRecordingTracer() *recordingTracer {
	return &recordingTracer{logs: map[string]string{}, errs: map[string]error{}}
}

func (r *recordingTracer) Start(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	return ctx, &recordingSpan{tracer: r, name: name}
}

func (r *recordingTracer) EmitPlan(_ context.Context, outputs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plan = outputs
}

type recordingSpan struct {
	tracer *recordingTracer
	name   string
}

func (s *recordingSpan) Write(p []byte) (int, error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.logs[s.name] += string(p)
	return len(p), nil
}

func (s *recordingSpan) End() {}

func (s *recordingSpan) RecordError(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.errs[s.name] = err
}

func (s *recordingSpan) SetAttribute(string, any) {}

// events records executor calls in the order they happen.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, s)
}

func (e *events) index(s string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Index(e.log, s)
}

func (e *events) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.log)
}

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	return &domain.Config{
		Root:    t.TempDir(),
		Project: domain.ProjectSettings{Out: "target"},
	}
}

func step(cfg *domain.Config, rank, n int, rel string, needs ...string) domain.CommandStep {
	s := domain.CommandStep{
		Priority: domain.Priority{Rank: rank, Step: n},
		Target:   domain.NewInternedString("app"),
		Output:   domain.NewInternedString(filepath.Join(cfg.Root, rel)),
		Command:  "cc " + rel,
	}
	for _, need := range needs {
		s.Needs = append(s.Needs, domain.NewInternedString(filepath.Join(cfg.Root, need)))
	}
	return s
}

func linkPlan(cfg *domain.Config) domain.Sequence {
	return domain.Sequence{
		step(cfg, 0, 1, "target/obj/a.o"),
		step(cfg, 0, 2, "target/obj/b.o"),
		step(cfg, 0, 3, "target/app", "target/obj/a.o", "target/obj/b.o"),
	}
}

func recordExecutions(exec *mocks.MockExecutor, ev *events, fail map[string]error) {
	exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *domain.CommandStep, _ string, _, _ io.Writer) error {
			name := filepath.Base(s.Output.String())
			ev.add("start " + name)
			defer ev.add("end " + name)
			return fail[name]
		}).
		AnyTimes()
}

func TestScheduler_SequentialOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)
	tracer := newRecordingTracer()

	var ev events
	recordExecutions(exec, &ev, nil)

	s := scheduler.NewScheduler(exec, tracer)
	require.NoError(t, s.Run(context.Background(), cfg, linkPlan(cfg), scheduler.Options{Parallelism: 1}))

	assert.Equal(t, []string{
		"start a.o", "end a.o",
		"start b.o", "end b.o",
		"start app", "end app",
	}, ev.snapshot())
	assert.Equal(t, []string{
		filepath.Join("target", "obj", "a.o"),
		filepath.Join("target", "obj", "b.o"),
		filepath.Join("target", "app"),
	}, tracer.plan)

	for _, status := range s.GetStepStatusMap() {
		assert.Equal(t, scheduler.StatusCompleted, status)
	}

	assert.DirExists(t, cfg.ObjDir())
	assert.DirExists(t, cfg.LibDir())
}

func TestScheduler_ParallelRespectsNeeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)

	var ev events
	recordExecutions(exec, &ev, nil)

	s := scheduler.NewScheduler(exec, newRecordingTracer())
	require.NoError(t, s.Run(context.Background(), cfg, linkPlan(cfg), scheduler.Options{Parallelism: 4}))

	link := ev.index("start app")
	require.GreaterOrEqual(t, link, 0)
	assert.Greater(t, link, ev.index("end a.o"))
	assert.Greater(t, link, ev.index("end b.o"))
	assert.Len(t, ev.snapshot(), 6)
}

func TestScheduler_NeedsOutsidePlanAreSatisfied(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)

	var ev events
	recordExecutions(exec, &ev, nil)

	seq := domain.Sequence{step(cfg, 1, 1, "target/app", "target/lib/libexternal.a")}
	s := scheduler.NewScheduler(exec, newRecordingTracer())
	require.NoError(t, s.Run(context.Background(), cfg, seq, scheduler.Options{Parallelism: 2}))
	assert.Equal(t, []string{"start app", "end app"}, ev.snapshot())
}

func TestScheduler_FailureStopsLaunches(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)
	tracer := newRecordingTracer()

	var ev events
	boom := errors.New("exit status 1")
	recordExecutions(exec, &ev, map[string]error{"b.o": boom})

	s := scheduler.NewScheduler(exec, tracer)
	err := s.Run(context.Background(), cfg, linkPlan(cfg), scheduler.Options{Parallelism: 1})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, domain.ErrStepExecutionFailed)
	assert.Contains(t, err.Error(), domain.ErrStepExecutionFailed.Error())

	assert.Equal(t, -1, ev.index("start app"))
	assert.Equal(t, boom, tracer.errs[filepath.Join("target", "obj", "b.o")])

	status := s.GetStepStatusMap()
	seq := linkPlan(cfg)
	assert.Equal(t, scheduler.StatusCompleted, status[seq[0].Output])
	assert.Equal(t, scheduler.StatusFailed, status[seq[1].Output])
	assert.Equal(t, scheduler.StatusSkipped, status[seq[2].Output])
}

func TestScheduler_FailedNeedBlocksDependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)

	var ev events
	recordExecutions(exec, &ev, map[string]error{"a.o": errors.New("syntax error")})

	s := scheduler.NewScheduler(exec, newRecordingTracer())
	err := s.Run(context.Background(), cfg, linkPlan(cfg), scheduler.Options{Parallelism: 3})
	require.Error(t, err)
	assert.Equal(t, -1, ev.index("start app"))
}

func TestScheduler_InvalidParallelism(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)

	s := scheduler.NewScheduler(exec, newRecordingTracer())
	err := s.Run(context.Background(), cfg, linkPlan(cfg), scheduler.Options{Parallelism: 0})
	require.ErrorIs(t, err, domain.ErrInvalidParallelism)
}

func TestScheduler_DryRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)
	tracer := newRecordingTracer()

	s := scheduler.NewScheduler(exec, tracer)
	require.NoError(t, s.Run(context.Background(), cfg, linkPlan(cfg), scheduler.Options{Parallelism: 1, DryRun: true}))

	assert.Equal(t, "cc target/app\n", tracer.logs[filepath.Join("target", "app")])
	assert.Len(t, tracer.names, 3)
	assert.NoDirExists(t, cfg.OutRoot())
}

func TestScheduler_Cancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.CommandStep, _ string, _, _ io.Writer) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)

	s := scheduler.NewScheduler(exec, newRecordingTracer())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(ctx, cfg, linkPlan(cfg), scheduler.Options{Parallelism: 1})
	}()

	<-started
	cancel()

	err := <-errCh
	require.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_OutputDirFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cfg := testConfig(t)

	require.NoError(t, os.WriteFile(cfg.OutRoot(), []byte("not a directory"), 0o600))

	s := scheduler.NewScheduler(exec, newRecordingTracer())
	err := s.Run(context.Background(), cfg, linkPlan(cfg), scheduler.Options{Parallelism: 1})
	require.ErrorIs(t, err, domain.ErrOutputDirCreateFailed)
	assert.True(t, strings.Contains(err.Error(), "prepare outputs"))
}
