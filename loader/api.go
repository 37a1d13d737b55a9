package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors as globals. Named
// constructors are curried like the rest of the definition DSL:
// EntityType "oak_chair" { ... }.
func registerAPI(L *lua.LState, coll *collector) {
	// Scenario { title = "...", seed = 42, ... }
	L.SetGlobal("Scenario", L.NewFunction(func(L *lua.LState) int {
		coll.scenario = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Material", curried(L, func(id string, tbl *lua.LTable) {
		coll.materials = append(coll.materials, rawDef{id: id, table: tbl})
	}))

	L.SetGlobal("EntityType", curried(L, func(id string, tbl *lua.LTable) {
		coll.types = append(coll.types, rawDef{id: id, table: tbl})
	}))

	L.SetGlobal("Object", curried(L, func(id string, tbl *lua.LTable) {
		coll.objects = append(coll.objects, rawDef{id: id, table: tbl})
	}))

	L.SetGlobal("Worker", curried(L, func(id string, tbl *lua.LTable) {
		coll.workers = append(coll.workers, rawDef{id: id, table: tbl})
	}))

	// Stockpile { material = "wood", count = 120, pos = {x, y} }
	L.SetGlobal("Stockpile", L.NewFunction(func(L *lua.LState) int {
		coll.stockpiles = append(coll.stockpiles, L.CheckTable(1))
		return 0
	}))

	L.SetGlobal("Modifier", curried(L, func(id string, tbl *lua.LTable) {
		coll.modifiers = append(coll.modifiers, rawDef{id: id, table: tbl})
	}))
}

// curried builds a Lua function of the shape Name "id" { ... }:
// the first call takes the ID and returns a function taking the table.
func curried(L *lua.LState, sink func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			sink(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}
