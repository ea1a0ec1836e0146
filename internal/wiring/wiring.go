// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ferry/internal/adapters/config"
	_ "go.trai.ch/ferry/internal/adapters/logger"
	_ "go.trai.ch/ferry/internal/adapters/metrics"
	_ "go.trai.ch/ferry/internal/adapters/notify"
	_ "go.trai.ch/ferry/internal/adapters/release"
	_ "go.trai.ch/ferry/internal/adapters/secrets"
	_ "go.trai.ch/ferry/internal/adapters/services"
	_ "go.trai.ch/ferry/internal/adapters/shell"
	_ "go.trai.ch/ferry/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/ferry/internal/app"
	_ "go.trai.ch/ferry/internal/engine/notifier"
	_ "go.trai.ch/ferry/internal/engine/runner"
	_ "go.trai.ch/ferry/internal/engine/scheduler"
)
