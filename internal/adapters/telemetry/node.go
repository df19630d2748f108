package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pynix/internal/adapters/logger"
	"go.trai.ch/pynix/internal/core/ports"
)

// NodeID identifies the tracer node in the dependency graph.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			// Wire the global provider before the tracer grabs it.
			Setup(NewLogBridge(log))
			return NewOTelTracer("pynix"), nil
		},
	})
}
