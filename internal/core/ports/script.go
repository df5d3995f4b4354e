package ports

import (
	"io"

	"go.trai.ch/cplan/internal/core/domain"
)

// ScriptRenderer turns a finished plan into a standalone shell script.
// digest identifies the plan and is written into the script header.
//
//go:generate go run go.uber.org/mock/mockgen -source=script.go -destination=mocks/mock_script.go -package=mocks
type ScriptRenderer interface {
	Render(w io.Writer, cfg *domain.Config, seq domain.Sequence, digest string) error
}
