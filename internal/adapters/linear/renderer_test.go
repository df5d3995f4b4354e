package linear_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cplan/internal/adapters/linear"
)

func newRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)
	require.NoError(t, r.Start(context.Background()))
	return r, &stdout, &stderr
}

func TestRenderer_StepLifecycle(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r.OnPlanEmit([]string{"target/obj/a.o", "target/app"})
	r.OnStepStart("s1", "", "target/obj/a.o", start)
	r.OnStepLog("s1", []byte("first line\nsecond line\n"))
	r.OnStepComplete("s1", start.Add(1500*time.Millisecond), nil)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	assert.Equal(t, "[target/obj/a.o] first line\n[target/obj/a.o] second line\n", stdout.String())
	assert.Equal(t,
		"Planning to build 2 step(s)\n"+
			"[target/obj/a.o] Starting...\n"+
			"[target/obj/a.o] ✓ Completed in 1.5s\n",
		stderr.String())
}

func TestRenderer_PartialLines(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	start := time.Now()

	r.OnStepStart("s1", "", "app", start)
	r.OnStepLog("s1", []byte("part"))
	assert.Empty(t, stdout.String())

	r.OnStepLog("s1", []byte("ial\r\nrest"))
	assert.Equal(t, "[app] partial\n", stdout.String())

	r.OnStepComplete("s1", start, nil)
	assert.Equal(t, "[app] partial\n[app] rest\n", stdout.String())
}

func TestRenderer_Failure(t *testing.T) {
	r, _, stderr := newRenderer(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r.OnStepStart("s1", "", "app", start)
	r.OnStepComplete("s1", start.Add(20*time.Millisecond), errors.New("exit status 1"))

	assert.Contains(t, stderr.String(), "[app] ✗ Failed after 20ms: exit status 1\n")
}

func TestRenderer_InterleavedSteps(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	start := time.Now()

	r.OnStepStart("a", "", "a.o", start)
	r.OnStepStart("b", "", "b.o", start)
	r.OnStepLog("a", []byte("from "))
	r.OnStepLog("b", []byte("b\n"))
	r.OnStepLog("a", []byte("a\n"))

	assert.Equal(t, "[b.o] b\n[a.o] from a\n", stdout.String())
}

func TestRenderer_UnknownSpanIgnored(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnStepLog("missing", []byte("data\n"))
	r.OnStepComplete("missing", time.Now(), nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_StopFlushesAndDropsLaterEvents(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnStepStart("s1", "", "app", time.Now())
	r.OnStepLog("s1", []byte("dangling"))
	require.NoError(t, r.Stop())
	assert.Equal(t, "[app] dangling\n", stdout.String())

	before := stderr.String()
	r.OnPlanEmit([]string{"x"})
	r.OnStepStart("s2", "", "late", time.Now())
	r.OnStepComplete("s1", time.Now(), nil)
	assert.Equal(t, before, stderr.String())
}
