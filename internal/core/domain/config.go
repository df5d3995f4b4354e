package domain

import "slices"

// ProjectSettings describes the project being built.
type ProjectSettings struct {
	Name    string
	Out     string
	Version string
}

// CompileSettings holds the toolchain configuration shared by every command.
type CompileSettings struct {
	Compiler string
	Includes []string
	Standard string
	Warnings []string
	// Libraries are library search paths, rendered as -L flags.
	Libraries  []string
	DebugLevel int
}

// BuildTarget is a named unit to produce.
type BuildTarget struct {
	Name string
	Kind Kind
	// Output overrides the artifact name. Empty means Name.
	Output string
	// Libraries are link names. Names matching a declared library become build dependencies.
	Libraries []string
	Sources   []string
}

// OutputName returns the requested artifact name before resolution.
func (t *BuildTarget) OutputName() string {
	if t.Output != "" {
		return t.Output
	}
	return t.Name
}

// Config is the typed, defaulted view over a project configuration file.
// It is built once by the loader and treated as read-only afterwards.
type Config struct {
	// Root is the directory holding the configuration file.
	Root    string
	Project ProjectSettings
	Compile CompileSettings
	Bin     BuildTarget
	Libs    []BuildTarget
}

// Library returns the declared library with the given name.
func (c *Config) Library(name string) (BuildTarget, bool) {
	i := slices.IndexFunc(c.Libs, func(t BuildTarget) bool { return t.Name == name })
	if i < 0 {
		return BuildTarget{}, false
	}
	return c.Libs[i], true
}

// Target returns the root binary target or a declared library by name.
func (c *Config) Target(name string) (BuildTarget, bool) {
	if name == c.Bin.Name {
		return c.Bin, true
	}
	return c.Library(name)
}

// LibraryNames returns the declared library names in declaration order.
func (c *Config) LibraryNames() []string {
	names := make([]string, len(c.Libs))
	for i := range c.Libs {
		names[i] = c.Libs[i].Name
	}
	return names
}
