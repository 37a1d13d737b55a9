package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/types"
)

// compile turns the collected raw Lua tables into typed definitions.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Materials:   map[string]types.MaterialDef{},
		EntityTypes: map[string]types.EntityTypeDef{},
		Objects:     map[string]types.ObjectDef{},
	}

	if coll.scenario != nil {
		defs.Scenario = types.ScenarioDef{
			Title:   getString(coll.scenario, "title"),
			Author:  getString(coll.scenario, "author"),
			Version: getString(coll.scenario, "version"),
			Intro:   getString(coll.scenario, "intro"),
			Seed:    int64(getInt(coll.scenario, "seed")),
		}
	}

	for _, raw := range coll.materials {
		if _, dup := defs.Materials[raw.id]; dup {
			return nil, fmt.Errorf("duplicate material %q", raw.id)
		}
		defs.Materials[raw.id] = types.MaterialDef{
			ID:   raw.id,
			Name: getString(raw.table, "name"),
		}
	}

	for _, raw := range coll.types {
		if _, dup := defs.EntityTypes[raw.id]; dup {
			return nil, fmt.Errorf("duplicate entity type %q", raw.id)
		}
		def := types.EntityTypeDef{
			ID:         raw.id,
			Name:       getString(raw.table, "name"),
			WorkCost:   getFloat(raw.table, "work"),
			HasQuality: getBool(raw.table, "quality"),
			BuildCost:  getCost(raw.table, "cost"),
		}
		if def.Name == "" {
			def.Name = raw.id
		}
		defs.EntityTypes[raw.id] = def
	}

	for _, raw := range coll.objects {
		if _, dup := defs.Objects[raw.id]; dup {
			return nil, fmt.Errorf("duplicate object %q", raw.id)
		}
		qualityName := getString(raw.table, "quality")
		quality := types.QualityNormal
		if qualityName != "" {
			q, ok := types.ParseQuality(qualityName)
			if !ok {
				return nil, fmt.Errorf("object %q: unknown quality %q", raw.id, qualityName)
			}
			quality = q
		}
		defs.Objects[raw.id] = types.ObjectDef{
			ID:      raw.id,
			Type:    getString(raw.table, "type"),
			Quality: quality,
			Pos:     getPos(raw.table, "pos"),
		}
	}

	for _, raw := range coll.workers {
		def := types.WorkerDef{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			Skill:       state.ClampSkill(getInt(raw.table, "skill")),
			WorkPerTick: getFloat(raw.table, "work"),
			Categories:  getStringList(raw.table, "categories"),
			Props:       getBoolMap(raw.table, "props"),
			Pos:         getPos(raw.table, "pos"),
		}
		if def.Name == "" {
			def.Name = raw.id
		}
		if def.WorkPerTick <= 0 {
			def.WorkPerTick = 10 + float64(def.Skill)
		}
		defs.Workers = append(defs.Workers, def)
	}

	for _, tbl := range coll.stockpiles {
		defs.Stockpiles = append(defs.Stockpiles, types.StockpileDef{
			Material: getString(tbl, "material"),
			Count:    getInt(tbl, "count"),
			Pos:      getPos(tbl, "pos"),
		})
	}

	for _, raw := range coll.modifiers {
		defs.Modifiers = append(defs.Modifiers, types.ModifierDef{
			Name:  raw.id,
			Prop:  getString(raw.table, "prop"),
			Bonus: getInt(raw.table, "bonus"),
		})
	}

	return defs, nil
}

func getString(tbl *lua.LTable, key string) string {
	if v, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func getInt(tbl *lua.LTable, key string) int {
	if v, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(v)
	}
	return 0
}

func getFloat(tbl *lua.LTable, key string) float64 {
	if v, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(v)
	}
	return 0
}

func getBool(tbl *lua.LTable, key string) bool {
	if v, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(v)
	}
	return false
}

// getPos reads pos = {x, y} or pos = {x = ..., y = ...}.
func getPos(tbl *lua.LTable, key string) types.Point {
	sub, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return types.Point{}
	}
	if x, ok := sub.RawGetString("x").(lua.LNumber); ok {
		y, _ := sub.RawGetString("y").(lua.LNumber)
		return types.Point{X: int(x), Y: int(y)}
	}
	x, _ := sub.RawGetInt(1).(lua.LNumber)
	y, _ := sub.RawGetInt(2).(lua.LNumber)
	return types.Point{X: int(x), Y: int(y)}
}

// getCost reads cost = {wood = 25, cloth = 5} into a sorted stack list.
// Sorting keeps hauling order deterministic across loads.
func getCost(tbl *lua.LTable, key string) []types.MaterialStack {
	sub, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}
	var cost []types.MaterialStack
	sub.ForEach(func(k, v lua.LValue) {
		name, okK := k.(lua.LString)
		count, okV := v.(lua.LNumber)
		if okK && okV && int(count) > 0 {
			cost = append(cost, types.MaterialStack{Type: string(name), Count: int(count)})
		}
	})
	sort.Slice(cost, func(i, j int) bool { return cost[i].Type < cost[j].Type })
	return cost
}

func getStringList(tbl *lua.LTable, key string) []string {
	sub, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	sub.ForEach(func(_, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

func getBoolMap(tbl *lua.LTable, key string) map[string]bool {
	sub, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}
	out := map[string]bool{}
	sub.ForEach(func(k, v lua.LValue) {
		name, okK := k.(lua.LString)
		val, okV := v.(lua.LBool)
		if okK && okV {
			out[string(name)] = bool(val)
		}
	})
	return out
}
