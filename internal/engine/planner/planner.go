// Package planner turns a build configuration into an ordered, deduplicated sequence of shell commands.
package planner

import (
	"fmt"
	"slices"

	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
)

// Planner builds command sequences. It holds no per-plan state and is safe for concurrent use.
type Planner struct {
	logger ports.Logger
}

// New creates a new Planner.
func New(logger ports.Logger) *Planner {
	return &Planner{logger: logger}
}

// Plan returns the ordered, deduplicated command sequence for target.
//
// Every declared library reachable through the target's link names is planned
// first, in topological order. Each target contributes one object step per
// source group followed by one final step; whole-project targets have no final step.
func (p *Planner) Plan(cfg *domain.Config, target domain.BuildTarget) (domain.Sequence, error) {
	graph, err := buildGraph(cfg, target)
	if err != nil {
		return nil, err
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	finals := make(map[domain.InternedString]domain.InternedString, graph.Len())
	var steps []domain.CommandStep

	for rank, node := range graph.Walk() {
		own, err := p.targetSteps(cfg, rank, node, finals)
		if err != nil {
			return nil, err
		}
		steps = append(steps, own...)
	}

	domain.SortSteps(steps)
	seq := p.dedupe(steps)
	domain.SortSteps(seq)

	return seq, nil
}

// buildGraph adds the target and every declared library it reaches.
func buildGraph(cfg *domain.Config, root domain.BuildTarget) (*domain.TargetGraph, error) {
	g := domain.NewTargetGraph()
	seen := make(map[string]bool)

	var add func(t domain.BuildTarget) error
	add = func(t domain.BuildTarget) error {
		if seen[t.Name] {
			return nil
		}
		seen[t.Name] = true

		deps := dependencyNames(cfg, t)
		if err := g.AddTarget(t, deps); err != nil {
			return err
		}
		for _, dep := range deps {
			lib, _ := cfg.Library(dep)
			if err := add(lib); err != nil {
				return err
			}
		}
		return nil
	}

	if err := add(root); err != nil {
		return nil, err
	}
	return g, nil
}

// dependencyNames returns the declared libraries t depends on: its link names in
// order, then for whole-project targets every other declared library.
// Link names without a declared library are external and create no edge.
func dependencyNames(cfg *domain.Config, t domain.BuildTarget) []string {
	var deps []string
	for _, name := range t.Libraries {
		if _, ok := cfg.Library(name); ok && !slices.Contains(deps, name) {
			deps = append(deps, name)
		}
	}
	if t.Kind == domain.KindProject {
		for _, name := range cfg.LibraryNames() {
			if !slices.Contains(deps, name) {
				deps = append(deps, name)
			}
		}
	}
	return deps
}

type sourceGroup struct {
	name  string
	files []string
}

// groupSources groups files sharing a base name without the final extension.
// Groups and the files inside them keep encounter order.
func groupSources(sources []string) []sourceGroup {
	index := make(map[string]int, len(sources))
	groups := make([]sourceGroup, 0, len(sources))
	for _, src := range sources {
		name := stem(src)
		if i, ok := index[name]; ok {
			groups[i].files = append(groups[i].files, src)
			continue
		}
		index[name] = len(groups)
		groups = append(groups, sourceGroup{name: name, files: []string{src}})
	}
	return groups
}

// targetSteps renders the object steps and the final step of one target.
func (p *Planner) targetSteps(
	cfg *domain.Config,
	rank int,
	node domain.TargetNode,
	finals map[domain.InternedString]domain.InternedString,
) ([]domain.CommandStep, error) {
	t := node.Target
	name := domain.NewInternedString(t.Name)
	groups := groupSources(t.Sources)

	steps := make([]domain.CommandStep, 0, len(groups)+1)
	objects := make([]string, 0, len(groups))
	needs := make([]domain.InternedString, 0, len(groups)+len(node.Dependencies))

	for k, grp := range groups {
		out := ResolveOutput(cfg, domain.KindObject, grp.name+".o")
		bc := domain.NewBuildContext(domain.ContextSpec{
			Kind:        domain.KindObject,
			Libraries:   t.Libraries,
			Output:      out,
			Inputs:      grp.files,
			CompileOnly: true,
		})

		cmd, err := p.Render(cfg, bc)
		if err != nil {
			return nil, err
		}

		steps = append(steps, domain.CommandStep{
			Priority: domain.Priority{Rank: rank, Step: k + 1},
			Target:   name,
			Output:   domain.NewInternedString(out),
			Command:  cmd,
		})
		objects = append(objects, out)
		needs = append(needs, domain.NewInternedString(out))
	}

	if t.Kind == domain.KindProject {
		return steps, nil
	}

	out := FinalOutput(cfg, t)
	bc := domain.NewBuildContext(domain.ContextSpec{
		Kind:        t.Kind,
		Libraries:   t.Libraries,
		Output:      out,
		Inputs:      objects,
		CompileOnly: t.Kind == domain.KindObject,
	})

	cmd, err := p.Render(cfg, bc)
	if err != nil {
		return nil, err
	}

	for _, dep := range node.Dependencies {
		if final, ok := finals[dep]; ok {
			needs = append(needs, final)
		}
	}

	final := domain.NewInternedString(out)
	finals[name] = final
	steps = append(steps, domain.CommandStep{
		Priority: domain.Priority{Rank: rank, Step: len(groups) + 1},
		Target:   name,
		Output:   final,
		Command:  cmd,
		Needs:    needs,
	})

	return steps, nil
}

// FinalOutput returns the path of the artifact a target's final step produces.
func FinalOutput(cfg *domain.Config, t domain.BuildTarget) string {
	out := ResolveOutput(cfg, t.Kind, t.OutputName())
	if t.Kind == domain.KindStaticArchive {
		return archivePath(out)
	}
	return out
}

// dedupe keeps the first step for every output path. steps must be sorted,
// so the survivor has the lowest priority and ties keep the earlier entry.
func (p *Planner) dedupe(steps []domain.CommandStep) domain.Sequence {
	kept := make(map[domain.InternedString]int, len(steps))
	seq := make(domain.Sequence, 0, len(steps))

	for i := range steps {
		s := steps[i]
		if j, ok := kept[s.Output]; ok {
			if seq[j].Command != s.Command {
				p.logger.Warn(fmt.Sprintf(
					"%s is produced by both %s and %s, keeping %s",
					s.Output, seq[j].Target, s.Target, seq[j].Target,
				))
			}
			continue
		}
		kept[s.Output] = len(seq)
		seq = append(seq, s)
	}

	return seq
}
