package modules

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/ledclock/internal/clock"
	"github.com/dokzlo13/ledclock/internal/rgb"
)

// ClockControl is the part of the clock controller exposed to scripts.
type ClockControl interface {
	Settings() clock.Settings
	SetBrightness(pct int) error
	SetFixedColor(index int) error
	Snapshot() clock.Snapshot
}

// ClockModule provides clock.on(), clock.state() and the settings setters
// to Lua.
type ClockModule struct {
	ctrl     ClockControl
	palette  rgb.Palette
	handlers map[string][]*lua.LFunction
}

// NewClockModule creates a new clock module
func NewClockModule(ctrl ClockControl, palette rgb.Palette) *ClockModule {
	return &ClockModule{
		ctrl:     ctrl,
		palette:  palette,
		handlers: make(map[string][]*lua.LFunction),
	}
}

// Loader is the module loader for Lua
func (m *ClockModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "on", L.NewFunction(m.on))
	L.SetField(mod, "state", L.NewFunction(m.state))
	L.SetField(mod, "palette", L.NewFunction(m.paletteFn))
	L.SetField(mod, "set_brightness", L.NewFunction(m.setBrightness))
	L.SetField(mod, "set_color", L.NewFunction(m.setColor))
	L.SetField(mod, "AUTO", lua.LNumber(clock.AutoColor))

	L.Push(mod)
	return 1
}

// Handlers returns the functions registered for an event type.
func (m *ClockModule) Handlers(eventType string) []*lua.LFunction {
	return m.handlers[eventType]
}

// HandlerCount returns the number of registered handlers.
func (m *ClockModule) HandlerCount() int {
	n := 0
	for _, fns := range m.handlers {
		n += len(fns)
	}
	return n
}

// on(event_type, fn) - Register a handler called with the event data table
func (m *ClockModule) on(L *lua.LState) int {
	eventType := L.CheckString(1)
	fn := L.CheckFunction(2)

	m.handlers[eventType] = append(m.handlers[eventType], fn)
	return 0
}

// state() - Current brightness, color mode and transition progress
func (m *ClockModule) state(L *lua.LState) int {
	snap := m.ctrl.Snapshot()
	L.Push(MapToLuaTable(L, map[string]any{
		"brightness":    snap.Brightness,
		"fixed_color":   snap.FixedColor,
		"mode":          snap.Mode,
		"color":         snap.Color,
		"face":          snap.Face,
		"transitioning": snap.Transitioning,
		"progress":      snap.Progress,
	}))
	return 1
}

// palette() - Array of {name, hex} in cycle order
func (m *ClockModule) paletteFn(L *lua.LState) int {
	tbl := L.NewTable()
	for _, nc := range m.palette {
		entry := L.NewTable()
		L.SetField(entry, "name", lua.LString(nc.Name))
		L.SetField(entry, "hex", lua.LString(nc.Hex()))
		tbl.Append(entry)
	}
	L.Push(tbl)
	return 1
}

// set_brightness(pct) - Returns true, or false and an error message
func (m *ClockModule) setBrightness(L *lua.LState) int {
	pct := L.CheckInt(1)
	if err := m.ctrl.SetBrightness(pct); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// set_color(index_or_name) - Accepts a palette index, clock.AUTO, a color
// name or "AUTO"
func (m *ClockModule) setColor(L *lua.LState) int {
	index := clock.AutoColor
	switch v := L.CheckAny(1).(type) {
	case lua.LNumber:
		index = int(v)
	case lua.LString:
		name := strings.ToUpper(string(v))
		if name != clock.AutoLabel {
			index = -2
			for i, nc := range m.palette {
				if strings.ToUpper(nc.Name) == name {
					index = i
					break
				}
			}
		}
	default:
		L.ArgError(1, "number or string expected")
		return 0
	}

	if err := m.ctrl.SetFixedColor(index); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
