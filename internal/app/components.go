package app

import "go.trai.ch/ferry/internal/core/ports"

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

// SetJSON switches the logger to JSON output when it supports it.
func (c *Components) SetJSON(enable bool) {
	if l, ok := c.Logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}
