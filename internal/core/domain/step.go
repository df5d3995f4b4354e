package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// Priority orders command steps. Rank is the owning target's position in
// topological order and Step is the 1-based position inside that target.
type Priority struct {
	Rank int
	Step int
}

// Compare returns -1, 0 or +1 ordering by rank, then step.
func (p Priority) Compare(o Priority) int {
	if c := cmp.Compare(p.Rank, o.Rank); c != 0 {
		return c
	}
	return cmp.Compare(p.Step, o.Step)
}

// Less reports whether p sorts before o.
func (p Priority) Less(o Priority) bool {
	return p.Compare(o) < 0
}

func (p Priority) String() string {
	return fmt.Sprintf("%d.%d", p.Rank, p.Step)
}

// CommandStep is one shell command of a plan.
type CommandStep struct {
	Priority Priority
	// Target is the build target the step belongs to.
	Target InternedString
	// Output is the absolute path the command produces.
	Output InternedString
	// Command is the space-joined command line.
	Command string
	// Needs are outputs that must exist before the command runs.
	Needs []InternedString
}

// Sequence is an ordered plan in which every output path appears once.
type Sequence []CommandStep

// SortSteps orders steps by priority, then output path.
func SortSteps(steps []CommandStep) {
	slices.SortStableFunc(steps, func(a, b CommandStep) int {
		if c := a.Priority.Compare(b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Output.String(), b.Output.String())
	})
}

// Outputs returns the output paths of the sequence in order.
func (s Sequence) Outputs() []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].Output.String()
	}
	return out
}

// Commands returns the command texts of the sequence in order.
func (s Sequence) Commands() []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].Command
	}
	return out
}
