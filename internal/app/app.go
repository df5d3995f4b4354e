// Package app implements the application layer for cplan.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.trai.ch/cplan/internal/adapters/linear"
	"go.trai.ch/cplan/internal/adapters/telemetry"
	"go.trai.ch/cplan/internal/adapters/watcher"
	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
	"go.trai.ch/cplan/internal/engine/planner"
	"go.trai.ch/cplan/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	planner      *planner.Planner
	executor     ports.Executor
	script       ports.ScriptRenderer
	watcher      ports.Watcher
	logger       ports.Logger

	stdout     io.Writer
	stderr     io.Writer
	configPath string

	// regenerated receives a value after each watch regeneration when set.
	regenerated chan struct{}
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	plan *planner.Planner,
	executor ports.Executor,
	script ports.ScriptRenderer,
	w ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		planner:      plan,
		executor:     executor,
		script:       script,
		watcher:      w,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects the command output and the build progress.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// SetConfigPath selects the configuration explicitly. A directory is
// searched upwards like the working directory.
func (a *App) SetConfigPath(path string) {
	a.configPath = path
}

// Stdout returns the writer command results are printed to.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// LoadConfig resolves and loads the project configuration.
func (a *App) LoadConfig() (*domain.Config, error) {
	path, err := a.resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return a.configLoader.Load(path)
}

func (a *App) resolveConfigPath() (string, error) {
	start := a.configPath
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "get working directory")
		}
		start = cwd
	}

	info, err := os.Stat(start)
	if err == nil && !info.IsDir() {
		return start, nil
	}
	if err != nil && a.configPath != "" {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "resolve config path"), "path", start)
	}
	return a.configLoader.Find(start)
}

// Plan loads the configuration and plans the root binary target.
func (a *App) Plan(_ context.Context) (*domain.Config, domain.Sequence, error) {
	cfg, err := a.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	seq, err := a.planner.Plan(cfg, cfg.Bin)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, "plan "+cfg.Bin.Name), "target", cfg.Bin.Name)
	}
	return cfg, seq, nil
}

// Script writes the build script to out, or to build.sh next to the configuration.
// It returns the path written.
func (a *App) Script(ctx context.Context, out string) (string, error) {
	cfg, seq, err := a.Plan(ctx)
	if err != nil {
		return "", err
	}
	return a.writeScript(cfg, seq, out)
}

func (a *App) writeScript(cfg *domain.Config, seq domain.Sequence, out string) (string, error) {
	if out == "" {
		out = filepath.Join(cfg.Root, domain.ScriptFileName)
	}

	var buf bytes.Buffer
	if err := a.script.Render(&buf, cfg, seq, planner.Digest(seq)); err != nil {
		return "", err
	}

	if err := os.WriteFile(out, buf.Bytes(), domain.ScriptPerm); err != nil {
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrScriptWriteFailed, "write script"), "path", out), "cause", err.Error())
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(out, domain.ScriptPerm); err != nil {
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrScriptWriteFailed, "make script executable"), "path", out), "cause", err.Error())
	}

	a.logger.Info(fmt.Sprintf("wrote %s (%d steps)", out, len(seq)))
	return out, nil
}

// CompileOptions describes a single command to render.
type CompileOptions struct {
	Kind        string
	Output      string
	CompileOnly bool
	Libraries   []string
	Inputs      []string
}

// Compile renders one command without planning, or the whole project body for the bin kind.
func (a *App) Compile(_ context.Context, opts CompileOptions) (string, error) {
	kind, err := domain.ParseKind(opts.Kind)
	if err != nil {
		return "", err
	}

	cfg, err := a.LoadConfig()
	if err != nil {
		return "", err
	}

	var output string
	if opts.Output != "" {
		output = planner.ResolveOutput(cfg, kind, opts.Output)
	}

	bc := domain.NewBuildContext(domain.ContextSpec{
		Kind:        kind,
		Libraries:   opts.Libraries,
		Output:      output,
		Inputs:      opts.Inputs,
		CompileOnly: opts.CompileOnly,
	})

	return a.planner.Render(cfg, bc)
}

// BuildOptions configures Build.
type BuildOptions struct {
	Parallelism int
	DryRun      bool
}

// Build plans the root binary target and runs every step.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	cfg, seq, err := a.Plan(ctx)
	if err != nil {
		return err
	}

	renderer := linear.NewRenderer(a.stdout, a.stderr)

	provider := telemetry.NewProvider(renderer)
	otel.SetTracerProvider(provider)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()

	tracer := telemetry.NewOTelTracer(provider, renderer)
	sched := scheduler.NewScheduler(a.executor, tracer)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		err := sched.Run(ctx, cfg, seq, scheduler.Options{
			Parallelism: opts.Parallelism,
			DryRun:      opts.DryRun,
		})
		if errors.Is(err, domain.ErrInvalidParallelism) {
			return err
		}
		if err != nil {
			return errors.Join(domain.ErrBuildExecutionFailed, err)
		}
		return nil
	})

	return g.Wait()
}

// Watch writes the build script, then rewrites it whenever the configuration changes
// until ctx is cancelled. Failed regenerations are logged and watching continues.
func (a *App) Watch(ctx context.Context, out string) error {
	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	a.configPath = path

	if _, err := a.Script(ctx, out); err != nil {
		a.logger.Error(err)
	}

	if err := a.watcher.Start(ctx, filepath.Dir(path)); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	a.logger.Info("watching " + path)

	d := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func([]string) {
		if _, err := a.Script(ctx, out); err != nil {
			a.logger.Error(err)
		}
		if a.regenerated != nil {
			a.regenerated <- struct{}{}
		}
	})

	name := filepath.Base(path)
	for ev := range a.watcher.Events() {
		if filepath.Base(ev.Path) != name || ev.Operation == ports.OpRemove {
			continue
		}
		d.Add(ev.Path)
	}

	d.Flush()
	return nil
}

// Config prints the resolved configuration, defaults included.
func (a *App) Config(_ context.Context) error {
	cfg, err := a.LoadConfig()
	if err != nil {
		return err
	}
	return a.configLoader.Dump(a.stdout, cfg)
}
