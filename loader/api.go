package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerRequirementHelpers(L)
}

// curried registers a global of the form Name "id" { ... }: calling it
// with an ID returns a closure that takes the definition table.
func curried(L *lua.LState, name string, sink *[]rawDef) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*sink = append(*sink, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// World { title = "...", start_area = "...", ... }
	L.SetGlobal("World", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.world = tbl
		return 0
	}))

	curried(L, "Area", &coll.areas)
	curried(L, "Obstacle", &coll.obstacles)
	curried(L, "Course", &coll.courses)
	curried(L, "Prayer", &coll.prayers)

	// Food "id" { ... } — curried, kind = "food".
	L.SetGlobal("Food", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.consumables = append(coll.consumables, rawConsumable{id: id, kind: "food", table: tbl})
			return 0
		}))
		return 1
	}))

	// Potion "id" { ... } — curried, kind = "potion".
	L.SetGlobal("Potion", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.consumables = append(coll.consumables, rawConsumable{id: id, kind: "potion", table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerRequirementHelpers(L *lua.LState) {
	// SkillReq("agility", 60)
	L.SetGlobal("SkillReq", L.NewFunction(func(L *lua.LState) int {
		skill := L.CheckString(1)
		level := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("skill"))
		tbl.RawSetString("skill", lua.LString(skill))
		tbl.RawSetString("level", level)
		L.Push(tbl)
		return 1
	}))

	// QuestReq("quest_id")
	L.SetGlobal("QuestReq", L.NewFunction(func(L *lua.LState) int {
		quest := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("quest"))
		tbl.RawSetString("quest", lua.LString(quest))
		L.Push(tbl)
		return 1
	}))

	// ItemReq("item_id")
	L.SetGlobal("ItemReq", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("item"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))
}
