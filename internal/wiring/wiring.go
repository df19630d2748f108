// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pynix/internal/adapters/config"
	_ "go.trai.ch/pynix/internal/adapters/logger"
	_ "go.trai.ch/pynix/internal/adapters/pysite"
	_ "go.trai.ch/pynix/internal/adapters/shell"
	_ "go.trai.ch/pynix/internal/adapters/telemetry"
	_ "go.trai.ch/pynix/internal/adapters/watcher"
	// Register the app node.
	_ "go.trai.ch/pynix/internal/app"
)
