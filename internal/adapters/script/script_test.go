package script_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cplan/internal/adapters/script"
	"go.trai.ch/cplan/internal/core/domain"
)

func mathutilConfig() *domain.Config {
	return &domain.Config{
		Root:    "/work",
		Project: domain.ProjectSettings{Name: "demo", Out: "target", Version: "0.0.0"},
		Compile: domain.CompileSettings{Compiler: "gcc", Standard: "c99"},
	}
}

func step(rank, n int, target, output, command string) domain.CommandStep {
	return domain.CommandStep{
		Priority: domain.Priority{Rank: rank, Step: n},
		Target:   domain.NewInternedString(target),
		Output:   domain.NewInternedString(output),
		Command:  command,
	}
}

func mathutilSequence() domain.Sequence {
	return domain.Sequence{
		step(0, 1, "mathutil", "/work/target/obj/a.o", "gcc -std=c99 -c -fPIC -o /work/target/obj/a.o /work/a.c /work/a.h"),
		step(0, 2, "mathutil", "/work/target/obj/b.o", "gcc -std=c99 -c -fPIC -o /work/target/obj/b.o /work/b.c"),
		step(0, 3, "mathutil", "/work/target/lib/mathutil",
			"ar rcs /work/target/lib/mathutil /work/target/obj/a.o /work/target/obj/b.o"),
		step(1, 1, "app", "/work/target/obj/main.o", "gcc -std=c99 -c -fPIC -o /work/target/obj/main.o /work/main.c"),
		step(1, 2, "app", "/work/target/app", "gcc -std=c99 -o /work/target/app -lmathutil /work/target/obj/main.o"),
	}
}

func TestRender_Golden(t *testing.T) {
	var buf bytes.Buffer
	err := script.New().Render(&buf, mathutilConfig(), mathutilSequence(), "0123456789abcdef")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "mathutil_build_sh", buf.Bytes())
}

func TestRender_EmptyPlan(t *testing.T) {
	cfg := mathutilConfig()
	cfg.Project.Name = ""
	cfg.Root = "/my project"

	var buf bytes.Buffer
	require.NoError(t, script.New().Render(&buf, cfg, nil, "ef46db3751d8e999"))

	out := buf.String()
	assert.Contains(t, out, "# project: (unnamed) 0.0.0\n")
	assert.Contains(t, out, "# plan: ef46db3751d8e999 (0 steps)\n")
	assert.Contains(t, out, "    rm -rf '/my project/target'\n")
	assert.Contains(t, out, `    cplan -C '/my project' script -o "$0"`)
	assert.NotContains(t, out, "mbuilding")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriteError(t *testing.T) {
	err := script.New().Render(failingWriter{}, mathutilConfig(), mathutilSequence(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrScriptWriteFailed.Error())
	assert.Contains(t, err.Error(), "disk full")
}
