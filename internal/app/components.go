package app

import "go.trai.ch/pynix/internal/core/ports"

// Components holds the wired application and the pieces main needs after
// graph construction.
type Components struct {
	App    *App
	Logger ports.Logger
}
