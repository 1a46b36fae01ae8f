package lua

import (
	"github.com/dokzlo13/ledclock/internal/lua/modules"
	"github.com/dokzlo13/ledclock/internal/rgb"
)

// RuntimeDeps groups all dependencies needed by Lua runtime.
type RuntimeDeps struct {
	Clock   modules.ClockControl
	Palette rgb.Palette

	// Store backs the "store" module. Nil leaves the module out.
	Store modules.StateStore

	// QueueSize bounds pending work (default: 100)
	QueueSize int
}
