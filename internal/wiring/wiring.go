// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cplan/internal/adapters/config"
	_ "go.trai.ch/cplan/internal/adapters/logger"
	_ "go.trai.ch/cplan/internal/adapters/script"
	_ "go.trai.ch/cplan/internal/adapters/shell"
	_ "go.trai.ch/cplan/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/cplan/internal/app"
	_ "go.trai.ch/cplan/internal/engine/planner"
)
