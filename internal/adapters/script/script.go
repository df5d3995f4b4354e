// Package script renders a plan as a standalone POSIX shell build script.
package script

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.trai.ch/cplan/internal/build"
	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
	"go.trai.ch/zerr"
)

const indent = "    "

// Renderer implements ports.ScriptRenderer.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the build script for seq. The script accepts exactly one of
// build, clean or rebuild and runs it under time.
func (r *Renderer) Render(w io.Writer, cfg *domain.Config, seq domain.Sequence, digest string) error {
	var b strings.Builder

	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# Generated by cplan %s. Do not edit.\n", build.Version)
	fmt.Fprintf(&b, "# project: %s %s\n", orUnnamed(cfg.Project.Name), cfg.Project.Version)
	fmt.Fprintf(&b, "# plan: %s (%d steps)\n", digest, len(seq))

	b.WriteString("\n")
	writeBlock(&b, `if [ $# != 1 ]; then`, "fi", []string{
		`echo '\033[31merror\033[0m: Not enough arguments.'`,
		`echo 'Must provide at least one of the following options:'`,
		`echo '  build   - builds the project.'`,
		`echo '  clean   - removes build artifacts.'`,
		`echo '  rebuild - rebuilds this script.'`,
		`exit 1`,
	})

	b.WriteString("\n")
	writeBlock(&b, "build() {", "}", buildBody(cfg, seq))

	b.WriteString("\n")
	writeBlock(&b, "clean() {", "}", []string{
		"rm -rf " + quote(cfg.OutRoot()),
	})

	b.WriteString("\n")
	writeBlock(&b, "rebuild() {", "}", []string{
		`echo '\033[34mrebuilding\033[0m '"$0"`,
		fmt.Sprintf(`cplan -C %s script -o "$0"`, quote(cfg.Root)),
	})

	b.WriteString("\n")
	b.WriteString("time $@\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return zerr.Wrap(err, domain.ErrScriptWriteFailed.Error())
	}
	return nil
}

func buildBody(cfg *domain.Config, seq domain.Sequence) []string {
	lines := make([]string, 0, 3+2*len(seq))
	for _, dir := range []string{cfg.LibDir(), cfg.ObjDir()} {
		q := quote(dir)
		lines = append(lines, fmt.Sprintf("[ ! -d %s ] && mkdir -p %s", q, q))
	}
	lines = append(lines, "")

	for i := range seq {
		lines = append(lines,
			fmt.Sprintf(`echo '\033[34mbuilding\033[0m %s'`, displayPath(cfg, seq[i].Output.String())),
			seq[i].Command,
		)
	}
	return lines
}

func writeBlock(b *strings.Builder, open, end string, body []string) {
	b.WriteString(open + "\n")
	for _, line := range body {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(end + "\n")
}

// displayPath shortens p relative to the project root for progress lines.
func displayPath(cfg *domain.Config, p string) string {
	rel, err := filepath.Rel(cfg.Root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return strings.ReplaceAll(rel, "'", "")
}

// quote leaves plain paths alone and single-quotes anything else.
func quote(s string) string {
	if s != "" && strings.IndexFunc(s, unsafe) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("/._-+=:,@%", r):
		return false
	}
	return true
}

func orUnnamed(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}

var _ ports.ScriptRenderer = (*Renderer)(nil)
