package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for build progress output.
// It decouples telemetry collection from presentation.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes buffered output. No events are accepted afterwards.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called with the step outputs in execution order.
	OnPlanEmit(outputs []string)

	// OnStepStart is called when a span begins.
	// parentID is empty for root spans.
	OnStepStart(spanID, parentID, name string, startTime time.Time)

	// OnStepLog is called with raw command output, possibly partial lines.
	OnStepLog(spanID string, data []byte)

	// OnStepComplete is called when a span ends. err is nil on success.
	OnStepComplete(spanID string, endTime time.Time, err error)
}
