package pysite

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pynix/internal/core/ports"
)

const (
	// DeriverNodeID is the unique identifier for the path deriver Graft node.
	DeriverNodeID graft.ID = "adapter.pysite.deriver"
	// ImporterNodeID is the unique identifier for the module importer Graft node.
	ImporterNodeID graft.ID = "adapter.pysite.importer"
	// ProberNodeID is the unique identifier for the interpreter prober Graft node.
	ProberNodeID graft.ID = "adapter.pysite.prober"
)

func init() {
	graft.Register(graft.Node[ports.PathDeriver]{
		ID:        DeriverNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PathDeriver, error) {
			return NewSiteDeriver(), nil
		},
	})

	graft.Register(graft.Node[ports.ModuleImporter]{
		ID:        ImporterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ModuleImporter, error) {
			return NewImporter(), nil
		},
	})

	graft.Register(graft.Node[ports.InterpreterProber]{
		ID:        ProberNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.InterpreterProber, error) {
			return NewProber(), nil
		},
	})
}
