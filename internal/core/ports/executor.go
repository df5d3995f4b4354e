// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/cplan/internal/core/domain"
)

// Executor defines the interface for executing command steps.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the step's command with dir as the working directory.
	//
	// It returns an error if the command cannot be started or exits non-zero.
	Execute(ctx context.Context, step *domain.CommandStep, dir string, stdout, stderr io.Writer) error
}
