package domain

import "path/filepath"

const (
	// TOMLConfigName is the name of the TOML project configuration file.
	TOMLConfigName = "build.toml"

	// YAMLConfigName is the name of the YAML project configuration file.
	YAMLConfigName = "build.yaml"

	// ScriptFileName is the default name of the generated build script.
	ScriptFileName = "build.sh"

	// ObjDirName is the directory under the output root holding object files.
	ObjDirName = "obj"

	// LibDirName is the directory under the output root holding archives and shared objects.
	LibDirName = "lib"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// ScriptPerm is the permission of the generated build script (rwxr-xr-x).
	ScriptPerm = 0o755
)

// Defaults applied to configuration fields that are left out.
const (
	DefaultCompiler   = "gcc"
	DefaultStandard   = "c99"
	DefaultOutDir     = "target"
	DefaultVersion    = "0.0.0"
	DefaultTargetName = "a.out"
	DefaultDebugLevel = 0
)

// ConfigNames lists the config file names in lookup order.
func ConfigNames() []string {
	return []string{TOMLConfigName, YAMLConfigName}
}

// OutRoot returns the absolute output root of the project.
func (c *Config) OutRoot() string {
	return c.Abs(c.Project.Out)
}

// ObjDir returns the absolute directory for object files.
func (c *Config) ObjDir() string {
	return filepath.Join(c.OutRoot(), ObjDirName)
}

// LibDir returns the absolute directory for archives and shared objects.
func (c *Config) LibDir() string {
	return filepath.Join(c.OutRoot(), LibDirName)
}

// Abs resolves p against the project root. Absolute paths are cleaned and returned as is.
func (c *Config) Abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}
