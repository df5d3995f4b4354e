package domain_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cplan/internal/core/domain"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Kind
	}{
		{"", domain.KindExecutable},
		{"exe", domain.KindExecutable},
		{"obj", domain.KindObject},
		{"static", domain.KindStaticArchive},
		{"shared", domain.KindSharedObject},
		{"bin", domain.KindProject},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := domain.ParseKind("dll")
	require.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestKind_TextRoundTrip(t *testing.T) {
	for _, k := range domain.Kinds {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back domain.Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}

	_, err := domain.Kind(42).MarshalText()
	require.ErrorIs(t, err, domain.ErrUnknownKind)
	assert.False(t, domain.Kind(42).Valid())
	assert.Equal(t, "unknown", domain.Kind(42).String())
}

func TestBuildContext_IsACopy(t *testing.T) {
	libs := []string{"m"}
	inputs := []string{"/src/a.c"}

	ctx := domain.NewBuildContext(domain.ContextSpec{
		Kind:        domain.KindObject,
		Libraries:   libs,
		Inputs:      inputs,
		Output:      "/out/obj/a.o",
		CompileOnly: true,
	})

	libs[0] = "changed"
	inputs[0] = "changed"
	assert.Equal(t, []string{"m"}, ctx.Libraries())
	assert.Equal(t, []string{"/src/a.c"}, ctx.Inputs())

	got := ctx.Inputs()
	got[0] = "mutated"
	assert.Equal(t, []string{"/src/a.c"}, ctx.Inputs())
}

func TestBuildContext_With(t *testing.T) {
	base := domain.NewBuildContext(domain.ContextSpec{
		Kind:   domain.KindExecutable,
		Output: "/out/app",
	})

	shared := base.WithShared(true)
	moved := base.WithOutput("/out/other")

	assert.False(t, base.Shared())
	assert.True(t, shared.Shared())
	assert.Equal(t, "/out/app", base.Output())
	assert.Equal(t, "/out/other", moved.Output())
	assert.Equal(t, domain.KindExecutable, moved.Kind())
	assert.Contains(t, shared.String(), "shared:     true")
}

func TestPriority_Order(t *testing.T) {
	dep := domain.Priority{Rank: 0, Step: 9}
	own := domain.Priority{Rank: 1, Step: 1}

	assert.True(t, dep.Less(own))
	assert.False(t, own.Less(dep))
	assert.Equal(t, 0, own.Compare(domain.Priority{Rank: 1, Step: 1}))
	assert.Equal(t, "1.1", own.String())
}

func TestSortSteps_TieBreaksOnOutput(t *testing.T) {
	steps := []domain.CommandStep{
		{Priority: domain.Priority{Rank: 1, Step: 1}, Output: domain.NewInternedString("/b")},
		{Priority: domain.Priority{Rank: 0, Step: 2}, Output: domain.NewInternedString("/z")},
		{Priority: domain.Priority{Rank: 1, Step: 1}, Output: domain.NewInternedString("/a")},
	}

	domain.SortSteps(steps)

	seq := domain.Sequence(steps)
	assert.Equal(t, []string{"/z", "/a", "/b"}, seq.Outputs())
}

func TestConfig_Paths(t *testing.T) {
	cfg := &domain.Config{
		Root:    "/work",
		Project: domain.ProjectSettings{Out: "target"},
	}

	assert.Equal(t, filepath.Join("/work", "target"), cfg.OutRoot())
	assert.Equal(t, filepath.Join("/work", "target", "obj"), cfg.ObjDir())
	assert.Equal(t, filepath.Join("/work", "target", "lib"), cfg.LibDir())
	assert.Equal(t, "/abs/inc", cfg.Abs("/abs/inc/"))
	assert.Equal(t, filepath.Join("/work", "src", "a.c"), cfg.Abs("src/a.c"))
}

func TestConfig_Lookup(t *testing.T) {
	cfg := &domain.Config{
		Bin: domain.BuildTarget{Name: "app"},
		Libs: []domain.BuildTarget{
			{Name: "mathutil", Kind: domain.KindStaticArchive},
			{Name: "net", Kind: domain.KindSharedObject},
		},
	}

	lib, ok := cfg.Library("net")
	require.True(t, ok)
	assert.Equal(t, domain.KindSharedObject, lib.Kind)

	_, ok = cfg.Library("app")
	assert.False(t, ok)

	bin, ok := cfg.Target("app")
	require.True(t, ok)
	assert.Equal(t, "app", bin.Name)

	assert.Equal(t, []string{"mathutil", "net"}, cfg.LibraryNames())
}

func TestBuildTarget_OutputName(t *testing.T) {
	assert.Equal(t, "app", (&domain.BuildTarget{Name: "app"}).OutputName())
	assert.Equal(t, "libm.a", (&domain.BuildTarget{Name: "m", Output: "libm.a"}).OutputName())
}

func TestErrors_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(domain.ErrCycleDetected, domain.ErrUnknownKind))
	assert.Equal(t, "invalid compile type", domain.ErrUnknownKind.Error())
}
