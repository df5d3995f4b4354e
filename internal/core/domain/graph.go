// Package domain contains the core build planning models.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// TargetNode is a build target together with the library targets it depends on.
type TargetNode struct {
	Target       BuildTarget
	Dependencies []InternedString
}

// TargetGraph is the dependency graph of build targets.
// Iteration follows insertion order so that planning is deterministic.
type TargetGraph struct {
	nodes          map[InternedString]TargetNode
	insertion      []InternedString
	executionOrder []InternedString
	rank           map[InternedString]int
}

// NewTargetGraph creates an empty TargetGraph.
func NewTargetGraph() *TargetGraph {
	return &TargetGraph{
		nodes: make(map[InternedString]TargetNode),
	}
}

// AddTarget adds a target and its dependency names.
// It returns an error if a target with the same name already exists.
func (g *TargetGraph) AddTarget(t BuildTarget, deps []string) error {
	name := NewInternedString(t.Name)
	if _, exists := g.nodes[name]; exists {
		return zerr.With(zerr.Wrap(ErrTargetAlreadyExists, "add target"), "target", t.Name)
	}
	node := TargetNode{Target: t, Dependencies: make([]InternedString, 0, len(deps))}
	for _, dep := range deps {
		node.Dependencies = append(node.Dependencies, NewInternedString(dep))
	}
	g.nodes[name] = node
	g.insertion = append(g.insertion, name)
	return nil
}

// Len returns the number of targets.
func (g *TargetGraph) Len() int {
	return len(g.nodes)
}

// Node returns the node for name.
func (g *TargetGraph) Node(name InternedString) (TargetNode, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Validate checks for cycles and missing dependencies with a depth first topological sort.
// It populates the execution order and ranks if successful.
func (g *TargetGraph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.nodes))
	g.rank = make(map[InternedString]int, len(g.nodes))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		node, exists := g.nodes[u]
		if !exists {
			return zerr.With(zerr.Wrap(ErrMissingDependency, "resolve "+path[0].String()), "dependency", u.String())
		}

		for _, dep := range node.Dependencies {
			if visited[dep] == 1 {
				return buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.rank[u] = len(g.executionOrder)
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.insertion {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "library references"), "cycle", strings.Join(parts, " -> "))
}

// Rank returns the topological position of a target, dependencies first.
// It assumes Validate() has been called and returned nil.
func (g *TargetGraph) Rank(name InternedString) (int, bool) {
	r, ok := g.rank[name]
	return r, ok
}

// Walk returns an iterator that yields targets in execution order.
// It assumes Validate() has been called and returned nil.
func (g *TargetGraph) Walk() iter.Seq2[int, TargetNode] {
	return func(yield func(int, TargetNode) bool) {
		for i, name := range g.executionOrder {
			if !yield(i, g.nodes[name]) {
				return
			}
		}
	}
}
