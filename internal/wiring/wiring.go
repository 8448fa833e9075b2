// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/porcelain/internal/adapters/cas"
	_ "go.trai.ch/porcelain/internal/adapters/config"
	_ "go.trai.ch/porcelain/internal/adapters/discovery"
	_ "go.trai.ch/porcelain/internal/adapters/fs"
	_ "go.trai.ch/porcelain/internal/adapters/inference"
	_ "go.trai.ch/porcelain/internal/adapters/logger"
	_ "go.trai.ch/porcelain/internal/adapters/manifest"
	_ "go.trai.ch/porcelain/internal/adapters/metadata"
	_ "go.trai.ch/porcelain/internal/adapters/metrics"
	_ "go.trai.ch/porcelain/internal/adapters/rustup"
	_ "go.trai.ch/porcelain/internal/adapters/sandbox"
	_ "go.trai.ch/porcelain/internal/adapters/shell"
	_ "go.trai.ch/porcelain/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/porcelain/internal/adapters/workspace"
	// Register app nodes.
	_ "go.trai.ch/porcelain/internal/app"
)
