package domain

import (
	"fmt"
	"slices"
	"strings"
)

// ContextSpec carries the values used to construct a BuildContext.
type ContextSpec struct {
	Kind      Kind
	Libraries []string
	// Output is the resolved output path. Empty means no -o flag.
	Output           string
	Inputs           []string
	CompileOnly      bool
	Shared           bool
	SuppressWarnings bool
}

// BuildContext describes exactly one rendered command.
// It is a read-only value: the With methods return modified copies.
type BuildContext struct {
	kind             Kind
	libraries        []string
	output           string
	inputs           []string
	compileOnly      bool
	shared           bool
	suppressWarnings bool
}

// NewBuildContext creates a BuildContext, copying every slice in spec.
func NewBuildContext(spec ContextSpec) BuildContext {
	return BuildContext{
		kind:             spec.Kind,
		libraries:        slices.Clone(spec.Libraries),
		output:           spec.Output,
		inputs:           slices.Clone(spec.Inputs),
		compileOnly:      spec.CompileOnly,
		shared:           spec.Shared,
		suppressWarnings: spec.SuppressWarnings,
	}
}

// Kind returns the artifact kind.
func (c BuildContext) Kind() Kind { return c.kind }

// Libraries returns a copy of the link names.
func (c BuildContext) Libraries() []string { return slices.Clone(c.libraries) }

// Output returns the resolved output path.
func (c BuildContext) Output() string { return c.output }

// Inputs returns a copy of the input paths.
func (c BuildContext) Inputs() []string { return slices.Clone(c.inputs) }

// CompileOnly reports whether linking is suppressed.
func (c BuildContext) CompileOnly() bool { return c.compileOnly }

// Shared reports whether -shared is forced.
func (c BuildContext) Shared() bool { return c.shared }

// SuppressWarnings reports whether -W flags are omitted.
func (c BuildContext) SuppressWarnings() bool { return c.suppressWarnings }

// WithShared returns a copy with force-shared set.
func (c BuildContext) WithShared(shared bool) BuildContext {
	c.libraries = slices.Clone(c.libraries)
	c.inputs = slices.Clone(c.inputs)
	c.shared = shared
	return c
}

// WithCompileOnly returns a copy with linking suppressed or enabled.
func (c BuildContext) WithCompileOnly(compileOnly bool) BuildContext {
	c.libraries = slices.Clone(c.libraries)
	c.inputs = slices.Clone(c.inputs)
	c.compileOnly = compileOnly
	return c
}

// WithOutput returns a copy with a different output path.
func (c BuildContext) WithOutput(output string) BuildContext {
	c.libraries = slices.Clone(c.libraries)
	c.inputs = slices.Clone(c.inputs)
	c.output = output
	return c
}

func (c BuildContext) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "[build_context]")
	fmt.Fprintf(&b, "  output:     %s\n", c.output)
	fmt.Fprintf(&b, "  inputs:     %v\n", c.inputs)
	fmt.Fprintf(&b, "  shared:     %t\n", c.shared)
	fmt.Fprintf(&b, "  kind:       %s\n", c.kind)
	fmt.Fprintf(&b, "  libraries:  %v\n", c.libraries)
	fmt.Fprintf(&b, "  no_compile: %t\n", c.compileOnly)
	fmt.Fprintf(&b, "  no_warning: %t\n", c.suppressWarnings)
	return b.String()
}
