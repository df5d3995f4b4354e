package planner

import (
	"strings"

	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// Archiver is the tool used for static archives.
	Archiver = "ar"
	// ArchiverFlags creates the archive, replaces members and writes an index.
	ArchiverFlags = "rcs"
)

// Render renders the command text for one build context.
// The whole-project kind renders every step of the root binary plan,
// each preceded by an echo of the command.
func (p *Planner) Render(cfg *domain.Config, bc domain.BuildContext) (string, error) {
	switch bc.Kind() {
	case domain.KindObject:
		return strings.Join(Flags(cfg, bc.WithCompileOnly(true)), " "), nil
	case domain.KindExecutable:
		return strings.Join(Flags(cfg, bc), " "), nil
	case domain.KindStaticArchive:
		return renderArchive(cfg, bc)
	case domain.KindSharedObject:
		return renderShared(cfg, bc), nil
	case domain.KindProject:
		return p.renderProject(cfg)
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrUnknownKind, "render command"), "kind", bc.Kind().String())
	}
}

func renderArchive(cfg *domain.Config, bc domain.BuildContext) (string, error) {
	inputs := bc.Inputs()

	out := bc.Output()
	if out == "" {
		if len(inputs) == 0 {
			return "", zerr.With(zerr.Wrap(domain.ErrNoInputs, "render archive"), "kind", bc.Kind().String())
		}
		out = ResolveOutput(cfg, domain.KindStaticArchive, "lib"+stem(inputs[0])+".a")
	}

	tokens := make([]string, 0, 3+len(inputs))
	tokens = append(tokens, Archiver, ArchiverFlags, archivePath(out))
	for _, in := range inputs {
		tokens = append(tokens, cfg.Abs(in))
	}
	return strings.Join(tokens, " "), nil
}

// renderShared links with -shared. Warnings and include paths were already
// applied when the member objects were compiled, so they are dropped.
func renderShared(cfg *domain.Config, bc domain.BuildContext) string {
	flags := Flags(cfg, bc.WithShared(true))
	kept := flags[:0]
	for _, f := range flags {
		if strings.HasPrefix(f, "-W") || strings.HasPrefix(f, "-I") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func (p *Planner) renderProject(cfg *domain.Config) (string, error) {
	seq, err := p.Plan(cfg, cfg.Bin)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, 2*len(seq))
	for i := range seq {
		lines = append(lines, "echo "+ShellQuote(seq[i].Command), seq[i].Command)
	}
	return strings.Join(lines, "\n"), nil
}

// ShellQuote wraps s in single quotes for POSIX shells.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
