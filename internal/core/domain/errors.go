package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownKind is returned when an artifact kind is not one of obj, exe, static, shared or bin.
	ErrUnknownKind = zerr.New("invalid compile type")

	// ErrTargetAlreadyExists is returned when two build targets share a name.
	ErrTargetAlreadyExists = zerr.New("build target already exists")

	// ErrMissingDependency is returned when a target references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when library references form a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTargetNotFound is returned when a requested target is not declared in the configuration.
	ErrTargetNotFound = zerr.New("build target not found")

	// ErrEmptyTargetName is returned when a declared library has no name.
	ErrEmptyTargetName = zerr.New("build target name must not be empty")

	// ErrProjectKindLibrary is returned when a library is declared with the whole-project kind.
	ErrProjectKindLibrary = zerr.New("library targets cannot use the bin kind")

	// ErrNoInputs is returned when a command needs at least one input file and none was given.
	ErrNoInputs = zerr.New("no input files")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no config file can be found.
	ErrConfigNotFound = zerr.New("could not find build.toml or build.yaml")

	// ErrUnsupportedConfigFormat is returned for config files that are neither TOML nor YAML.
	ErrUnsupportedConfigFormat = zerr.New("unsupported config file format")

	// ErrScriptWriteFailed is returned when the build script cannot be written.
	ErrScriptWriteFailed = zerr.New("failed to write build script")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrStepExecutionFailed is returned when a single command step fails.
	ErrStepExecutionFailed = zerr.New("step execution failed")

	// ErrOutputDirCreateFailed is returned when an output directory cannot be created.
	ErrOutputDirCreateFailed = zerr.New("failed to create output directory")

	// ErrInvalidParallelism is returned when the requested parallelism is less than one.
	ErrInvalidParallelism = zerr.New("parallelism must be at least 1")
)
