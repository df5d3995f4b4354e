package logger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/cplan/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	base := zerr.New("invalid compile type")

	tests := []struct {
		name string
		err  error
		want []logger.ErrorEntry
	}{
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
		{
			name: "standard error",
			err:  errors.New("exit status 2"),
			want: []logger.ErrorEntry{{Message: "exit status 2"}},
		},
		{
			name: "zerr chain with metadata on the wrapper",
			err:  zerr.With(zerr.Wrap(base, "parse kind"), "kind", "dll"),
			want: []logger.ErrorEntry{
				{Message: "parse kind", Metadata: map[string]any{"kind": "dll"}},
				{Message: "invalid compile type"},
			},
		},
		{
			name: "zerr over standard error",
			err:  zerr.Wrap(zerr.Wrap(errors.New("permission denied"), "open build.sh"), "write script"),
			want: []logger.ErrorEntry{
				{Message: "write script"},
				{Message: "open build.sh"},
				{Message: "permission denied"},
			},
		},
		{
			name: "metadata only link moves to the next message",
			err:  zerr.With(errors.New("exit status 1"), "output", "/out/app"),
			want: []logger.ErrorEntry{
				{Message: "exit status 1", Metadata: map[string]any{"output": "/out/app"}},
			},
		},
		{
			name: "fmt wrapped error ends the walk",
			err:  zerr.Wrap(fmt.Errorf("outer: %w", errors.New("inner")), "step"),
			want: []logger.ErrorEntry{
				{Message: "step"},
				{Message: "outer: inner"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectErrorEntries(tt.err))
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single",
			entries: []logger.ErrorEntry{{Message: "no input files"}},
			want:    "Error: no input files",
		},
		{
			name: "causes",
			entries: []logger.ErrorEntry{
				{Message: "first"},
				{Message: "second"},
				{Message: "third"},
			},
			want: "Error: first\n\n  Caused by:\n    → second\n    → third",
		},
		{
			name: "sorted metadata",
			entries: []logger.ErrorEntry{
				{Message: "run step", Metadata: map[string]any{"target": "app", "output": "/out/app"}},
				{Message: "exit status 1"},
			},
			want: "Error: run step\n       output: /out/app\n       target: app\n\n  Caused by:\n    → exit status 1",
		},
		{
			name: "multiline messages",
			entries: []logger.ErrorEntry{
				{Message: "a\nb"},
				{Message: "c\nd", Metadata: map[string]any{"k": 1}},
			},
			want: "Error: a\n       b\n\n  Caused by:\n    → c\n      d\n      k: 1",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
