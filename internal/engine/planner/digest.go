package planner

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cplan/internal/core/domain"
)

// Digest returns a stable fingerprint of a sequence's outputs and commands.
func Digest(seq domain.Sequence) string {
	h := xxhash.New()
	for i := range seq {
		_, _ = h.WriteString(seq[i].Output.String())
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(seq[i].Command)
		_, _ = h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
