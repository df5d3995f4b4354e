package config

// File is the on-disk layout shared by build.toml and build.yaml.
type File struct {
	Project ProjectDTO  `toml:"project" yaml:"project"`
	Compile CompileDTO  `toml:"compile" yaml:"compile"`
	Bin     *TargetDTO  `toml:"bin"     yaml:"bin"`
	Lib     []TargetDTO `toml:"lib"     yaml:"lib"`
}

// ProjectDTO is the [project] table.
type ProjectDTO struct {
	Name    string `toml:"name"    yaml:"name"`
	Out     string `toml:"out"     yaml:"out"`
	Version string `toml:"version" yaml:"version"`
}

// CompileDTO is the [compile] table.
type CompileDTO struct {
	Compiler   string   `toml:"compiler"    yaml:"compiler"`
	Includes   []string `toml:"includes"    yaml:"includes"`
	Standard   string   `toml:"standard"    yaml:"standard"`
	Warnings   []string `toml:"warnings"    yaml:"warnings"`
	Libraries  []string `toml:"libraries"   yaml:"libraries"`
	DebugLevel int      `toml:"debug_level" yaml:"debug_level"`
}

// TargetDTO is the [bin] table and each [[lib]] entry.
type TargetDTO struct {
	Name      string   `toml:"name"      yaml:"name"`
	Kind      string   `toml:"kind"      yaml:"kind"`
	Output    string   `toml:"output"    yaml:"output"`
	Libraries []string `toml:"libraries" yaml:"libraries"`
	Sources   []string `toml:"sources"   yaml:"sources"`
}
