package modules

import (
	lua "github.com/yuin/gopher-lua"
)

// scriptStateKind is the resource_state kind holding script values.
const scriptStateKind = "script"

// StateStore persists JSON values by kind and id.
type StateStore interface {
	GetJSON(kind, id string, v any) (bool, error)
	SetJSON(kind, id string, v any) error
	Delete(kind, id string) error
}

// StoreModule gives hook scripts values that survive restarts:
//
//	local store = require("store")
//	store.set("taps", (store.get("taps") or 0) + 1)
type StoreModule struct {
	store StateStore
}

// NewStoreModule creates a new store module.
func NewStoreModule(store StateStore) *StoreModule {
	return &StoreModule{store: store}
}

// Loader is the module loader for Lua.
func (m *StoreModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "set", L.NewFunction(m.set))
	L.SetField(mod, "delete", L.NewFunction(m.delete))

	L.Push(mod)
	return 1
}

// get(key, default) -> value, or default when missing
func (m *StoreModule) get(L *lua.LState) int {
	key := L.CheckString(1)
	fallback := L.Get(2)

	var value any
	found, err := m.store.GetJSON(scriptStateKind, key, &value)
	if err != nil {
		L.RaiseError("store.get(%q): %v", key, err)
		return 0
	}
	if !found || value == nil {
		L.Push(fallback)
		return 1
	}
	L.Push(GoToLuaValue(L, value))
	return 1
}

// set(key, value) - nil deletes the key
func (m *StoreModule) set(L *lua.LState) int {
	key := L.CheckString(1)
	value := L.Get(2)

	var err error
	if value == lua.LNil {
		err = m.store.Delete(scriptStateKind, key)
	} else {
		err = m.store.SetJSON(scriptStateKind, key, LuaToGo(value))
	}
	if err != nil {
		L.RaiseError("store.set(%q): %v", key, err)
	}
	return 0
}

// delete(key)
func (m *StoreModule) delete(L *lua.LState) int {
	key := L.CheckString(1)
	if err := m.store.Delete(scriptStateKind, key); err != nil {
		L.RaiseError("store.delete(%q): %v", key, err)
	}
	return 0
}
