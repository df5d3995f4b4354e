// Package config locates and loads build.toml and build.yaml project files.
package config

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a Loader reading from the real filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Find walks up from cwd and returns the first config file found.
// build.toml wins over build.yaml in the same directory.
func (l *Loader) Find(cwd string) (string, error) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "resolve working directory"), "cwd", cwd)
	}

	for {
		var found []string
		for _, name := range domain.ConfigNames() {
			candidate := filepath.Join(dir, name)
			if info, statErr := l.FS.Stat(candidate); statErr == nil && !info.IsDir() {
				found = append(found, candidate)
			}
		}

		if len(found) > 0 {
			if len(found) > 1 {
				l.Logger.Warn(fmt.Sprintf("both %s and %s found in %s, using %s",
					domain.TOMLConfigName, domain.YAMLConfigName, dir, domain.TOMLConfigName))
			}
			return found[0], nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "find config"), "cwd", cwd)
}

// Load reads the config file at path, applies defaults and validates targets.
// The directory holding the file becomes the project root.
func (l *Loader) Load(path string) (*domain.Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	data, err := l.FS.ReadFile(abs)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", abs)
	}

	var file File
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".toml":
		err = l.decodeTOML(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedConfigFormat, "load config"), "path", abs)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", abs)
	}

	cfg, err := toDomain(&file, filepath.Dir(abs))
	if err != nil {
		return nil, zerr.With(err, "path", abs)
	}
	return cfg, nil
}

// decodeTOML decodes data and warns about keys that no field consumed.
func (l *Loader) decodeTOML(data []byte, file *File) error {
	md, err := toml.Decode(string(data), file)
	if err != nil {
		return err
	}
	for _, key := range md.Undecoded() {
		l.Logger.Warn(fmt.Sprintf("ignoring unknown key %q in %s", key.String(), domain.TOMLConfigName))
	}
	return nil
}

// Dump writes cfg as TOML with every default spelled out.
func (l *Loader) Dump(w io.Writer, cfg *domain.Config) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# root = %q\n\n", cfg.Root)

	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(fromDomain(cfg)); err != nil {
		return zerr.Wrap(err, "encode config")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func toDomain(file *File, root string) (*domain.Config, error) {
	cfg := &domain.Config{
		Root: root,
		Project: domain.ProjectSettings{
			Name:    file.Project.Name,
			Out:     orDefault(file.Project.Out, domain.DefaultOutDir),
			Version: orDefault(file.Project.Version, domain.DefaultVersion),
		},
		Compile: domain.CompileSettings{
			Compiler:   orDefault(file.Compile.Compiler, domain.DefaultCompiler),
			Includes:   file.Compile.Includes,
			Standard:   orDefault(file.Compile.Standard, domain.DefaultStandard),
			Warnings:   file.Compile.Warnings,
			Libraries:  file.Compile.Libraries,
			DebugLevel: file.Compile.DebugLevel,
		},
	}

	bin := TargetDTO{}
	if file.Bin != nil {
		bin = *file.Bin
	}
	bin.Name = orDefault(bin.Name, domain.DefaultTargetName)

	var err error
	if cfg.Bin, err = toTarget(&bin); err != nil {
		return nil, err
	}

	seen := map[string]bool{cfg.Bin.Name: true}
	cfg.Libs = make([]domain.BuildTarget, 0, len(file.Lib))
	for i := range file.Lib {
		dto := &file.Lib[i]
		if dto.Name == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrEmptyTargetName, "load library"), "index", i)
		}
		if seen[dto.Name] {
			return nil, zerr.With(zerr.Wrap(domain.ErrTargetAlreadyExists, "load library"), "target", dto.Name)
		}
		seen[dto.Name] = true

		lib, err := toTarget(dto)
		if err != nil {
			return nil, err
		}
		if lib.Kind == domain.KindProject {
			return nil, zerr.With(zerr.Wrap(domain.ErrProjectKindLibrary, "load library"), "target", dto.Name)
		}
		cfg.Libs = append(cfg.Libs, lib)
	}

	return cfg, nil
}

func toTarget(dto *TargetDTO) (domain.BuildTarget, error) {
	kind, err := domain.ParseKind(dto.Kind)
	if err != nil {
		return domain.BuildTarget{}, zerr.With(err, "target", dto.Name)
	}
	return domain.BuildTarget{
		Name:      dto.Name,
		Kind:      kind,
		Output:    dto.Output,
		Libraries: dto.Libraries,
		Sources:   dto.Sources,
	}, nil
}

func fromDomain(cfg *domain.Config) File {
	target := func(t *domain.BuildTarget) TargetDTO {
		return TargetDTO{
			Name:      t.Name,
			Kind:      t.Kind.String(),
			Output:    t.OutputName(),
			Libraries: orEmpty(t.Libraries),
			Sources:   orEmpty(t.Sources),
		}
	}

	bin := target(&cfg.Bin)
	file := File{
		Project: ProjectDTO(cfg.Project),
		Compile: CompileDTO{
			Compiler:   cfg.Compile.Compiler,
			Includes:   orEmpty(cfg.Compile.Includes),
			Standard:   cfg.Compile.Standard,
			Warnings:   orEmpty(cfg.Compile.Warnings),
			Libraries:  orEmpty(cfg.Compile.Libraries),
			DebugLevel: cfg.Compile.DebugLevel,
		},
		Bin: &bin,
	}
	for i := range cfg.Libs {
		file.Lib = append(file.Lib, target(&cfg.Libs[i]))
	}
	return file
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ ports.ConfigLoader = (*Loader)(nil)
