package script

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cplan/internal/core/ports"
)

// NodeID is the unique identifier for the script renderer Graft node.
const NodeID graft.ID = "adapter.script"

func init() {
	graft.Register(graft.Node[ports.ScriptRenderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ScriptRenderer, error) {
			return New(), nil
		},
	})
}
