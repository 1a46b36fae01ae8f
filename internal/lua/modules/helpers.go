package modules

import (
	lua "github.com/yuin/gopher-lua"
)

// LuaToGo converts a script value to plain Go data for JSON and log fields.
// A table whose keys are exactly 1..n becomes a slice, any other table a
// map keyed by the string form of its keys. Functions and userdata become nil.
func LuaToGo(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LString:
		return string(val)
	case lua.LNumber:
		return float64(val)
	case lua.LBool:
		return bool(val)
	case *lua.LTable:
		return tableToGo(val)
	}
	return nil
}

func tableToGo(t *lua.LTable) any {
	keys := 0
	t.ForEach(func(lua.LValue, lua.LValue) { keys++ })

	if n := t.MaxN(); n > 0 && n == keys {
		arr := make([]any, n)
		for i := range arr {
			arr[i] = LuaToGo(t.RawGetInt(i + 1))
		}
		return arr
	}

	obj := make(map[string]any, keys)
	t.ForEach(func(k, v lua.LValue) {
		obj[lua.LVAsString(k)] = LuaToGo(v)
	})
	return obj
}

// GoToLuaValue converts event data, snapshots and decoded JSON to Lua.
// Unsupported types become nil.
func GoToLuaValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		tbl := L.CreateTable(len(val), 0)
		for _, item := range val {
			tbl.Append(GoToLuaValue(L, item))
		}
		return tbl
	case map[string]any:
		return MapToLuaTable(L, val)
	}
	return lua.LNil
}

// MapToLuaTable converts a Go map to a Lua table
func MapToLuaTable(L *lua.LState, m map[string]any) *lua.LTable {
	tbl := L.CreateTable(0, len(m))
	for k, v := range m {
		tbl.RawSetString(k, GoToLuaValue(L, v))
	}
	return tbl
}
