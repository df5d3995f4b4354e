package planner

import (
	"path/filepath"
	"strings"

	"go.trai.ch/cplan/internal/core/domain"
)

// ResolveOutput places the base name of requested under the project output layout:
// objects go to <out>/obj, archives and shared objects to <out>/lib, everything else to <out>.
// An empty request resolves to the default target name.
func ResolveOutput(cfg *domain.Config, kind domain.Kind, requested string) string {
	name := domain.DefaultTargetName
	if requested != "" {
		name = filepath.Base(requested)
	}

	switch kind {
	case domain.KindObject:
		return filepath.Join(cfg.ObjDir(), name)
	case domain.KindStaticArchive, domain.KindSharedObject:
		return filepath.Join(cfg.LibDir(), name)
	default:
		return filepath.Join(cfg.OutRoot(), name)
	}
}

// archivePath strips trailing source and object extensions from an archive output.
func archivePath(p string) string {
	for {
		trimmed := strings.TrimSuffix(strings.TrimSuffix(p, ".c"), ".o")
		if trimmed == p {
			return p
		}
		p = trimmed
	}
}

// stem returns the file name without its final extension.
func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
