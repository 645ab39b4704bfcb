// Package loader loads Lua catalog content into Go structs at startup.
// The Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/runesim/types"
)

// rawDef holds a definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// rawConsumable holds a consumable table plus its kind discriminator.
type rawConsumable struct {
	id    string
	kind  string
	table *lua.LTable
}

// tileGlyphs maps grid characters to tile types.
var tileGlyphs = map[rune]types.TileType{
	'.': types.TileWalkable,
	'#': types.TileBlocked,
	'~': types.TileWater,
	'D': types.TileDoor,
	'G': types.TileGate,
	'L': types.TileLadder,
	'S': types.TileStairs,
	'O': types.TileObstacle,
}

// statNames maps Lua stat names to Stat values.
var statNames = map[string]types.Stat{
	"attack":    types.StatAttack,
	"strength":  types.StatStrength,
	"defence":   types.StatDefence,
	"ranged":    types.StatRanged,
	"magic":     types.StatMagic,
	"hitpoints": types.StatHitpoints,
	"prayer":    types.StatPrayer,
	"agility":   types.StatAgility,
}

// tagNames maps Lua tag names to EffectTag values.
var tagNames = map[string]types.EffectTag{
	"divine":     types.TagDivine,
	"antifire":   types.TagAntifire,
	"antipoison": types.TagAntipoison,
	"stamina":    types.TagStamina,
	"overload":   types.TagOverload,
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStringList returns an array field as a string slice.
func getStringList(tbl *lua.LTable, key string) []string {
	t := getTable(tbl, key)
	if t == nil {
		return nil
	}
	var out []string
	for i := 1; i <= t.MaxN(); i++ {
		if s, ok := t.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compileCoord reads a {x=, y=, plane=} table. Missing fields are 0.
func compileCoord(tbl *lua.LTable) types.Coord {
	if tbl == nil {
		return types.Coord{}
	}
	return types.Coord{
		X:     getInt(tbl, "x"),
		Y:     getInt(tbl, "y"),
		Plane: getInt(tbl, "plane"),
	}
}

// compileRequirements reads a requires = { SkillReq(...), ... } list.
func compileRequirements(tbl *lua.LTable, owner string) ([]types.Requirement, error) {
	if tbl == nil {
		return nil, nil
	}
	var reqs []types.Requirement
	for i := 1; i <= tbl.MaxN(); i++ {
		rt, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%s: requirement %d is not a table", owner, i)
		}
		switch kind := getString(rt, "type"); kind {
		case "skill":
			stat, ok := statNames[getString(rt, "skill")]
			if !ok {
				return nil, fmt.Errorf("%s: unknown skill %q", owner, getString(rt, "skill"))
			}
			reqs = append(reqs, types.Requirement{Kind: types.ReqSkill, Skill: stat, Level: getInt(rt, "level")})
		case "quest":
			reqs = append(reqs, types.Requirement{Kind: types.ReqQuest, Quest: getString(rt, "quest")})
		case "item":
			reqs = append(reqs, types.Requirement{Kind: types.ReqItem, Item: getString(rt, "item")})
		default:
			return nil, fmt.Errorf("%s: unknown requirement type %q", owner, kind)
		}
	}
	return reqs, nil
}

// compileBoosts reads a boosts = { strength = 5, ... } table.
func compileBoosts(tbl *lua.LTable, owner string) (map[types.Stat]int, error) {
	if tbl == nil {
		return nil, nil
	}
	boosts := map[types.Stat]int{}
	var compileErr error
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		stat, ok := statNames[string(ks)]
		if !ok {
			compileErr = fmt.Errorf("%s: unknown boost stat %q", owner, string(ks))
			return
		}
		if n, ok := v.(lua.LNumber); ok {
			boosts[stat] = int(n)
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return boosts, nil
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*types.Defs, error) {
	defs := &types.Defs{
		Areas:       map[string]*types.AreaDef{},
		Obstacles:   map[string]*types.ObstacleDef{},
		Courses:     map[string]*types.CourseDef{},
		Prayers:     map[string]*types.PrayerDef{},
		Consumables: map[string]*types.ConsumableDef{},
	}

	// World.
	if coll.world == nil {
		return nil, fmt.Errorf("no World{} definition found")
	}
	defs.World = types.WorldDef{
		Title:     getString(coll.world, "title"),
		Version:   getString(coll.world, "version"),
		StartArea: getString(coll.world, "start_area"),
		Start:     compileCoord(getTable(coll.world, "start")),
		Seed:      int64(getNumber(coll.world, "seed")),
	}

	// Areas.
	for _, raw := range coll.areas {
		area, err := compileArea(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling area %s: %w", raw.id, err)
		}
		defs.Areas[area.ID] = area
	}

	// Obstacles.
	for _, raw := range coll.obstacles {
		obs, err := compileObstacle(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling obstacle %s: %w", raw.id, err)
		}
		defs.Obstacles[obs.ID] = obs
	}

	// Courses.
	for _, raw := range coll.courses {
		course, err := compileCourse(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling course %s: %w", raw.id, err)
		}
		defs.Courses[course.ID] = course
	}

	// Prayers.
	for _, raw := range coll.prayers {
		prayer, err := compilePrayer(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling prayer %s: %w", raw.id, err)
		}
		defs.Prayers[prayer.ID] = prayer
	}

	// Consumables.
	for _, raw := range coll.consumables {
		item, err := compileConsumable(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling %s %s: %w", raw.kind, raw.id, err)
		}
		defs.Consumables[item.ID] = item
	}

	// Stamp obstacle metadata onto their anchor tiles so renderers and
	// shortcut discovery see level and interaction text without a lookup.
	stampObstacleTiles(defs)

	return defs, nil
}

// compileArea reads an area definition with one or more glyph grids.
// Single-plane areas use grid = { "...." }; multi-plane areas use
// planes = { { "..." }, { "..." } }. All rows of all planes must share
// one width, and all planes one height.
func compileArea(raw rawDef) (*types.AreaDef, error) {
	tbl := raw.table
	area := &types.AreaDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Wilderness:  getBool(tbl, "wilderness", false),
		PvP:         getBool(tbl, "pvp", false),
		Connections: map[string]types.ConnectionDef{},
	}

	var planes [][]string
	if pt := getTable(tbl, "planes"); pt != nil {
		for i := 1; i <= pt.MaxN(); i++ {
			gt, ok := pt.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("plane %d is not a grid table", i)
			}
			planes = append(planes, tableToRows(gt))
		}
	} else if gt := getTable(tbl, "grid"); gt != nil {
		planes = [][]string{tableToRows(gt)}
	}
	if len(planes) == 0 {
		return nil, fmt.Errorf("area has no grid or planes")
	}

	area.Planes = len(planes)
	area.Height = len(planes[0])
	if area.Height == 0 {
		return nil, fmt.Errorf("plane 0 has no rows")
	}
	area.Width = len(planes[0][0])

	for p, rows := range planes {
		if len(rows) != area.Height {
			return nil, fmt.Errorf("plane %d has %d rows, want %d", p, len(rows), area.Height)
		}
		for y, row := range rows {
			if len(row) != area.Width {
				return nil, fmt.Errorf("plane %d row %d has %d columns, want %d", p, y, len(row), area.Width)
			}
			for x, glyph := range row {
				tt, ok := tileGlyphs[glyph]
				if !ok {
					return nil, fmt.Errorf("plane %d row %d: unknown tile glyph %q", p, y, string(glyph))
				}
				area.Tiles = append(area.Tiles, types.Tile{
					Coord: types.Coord{X: x, Y: y, Plane: p},
					Type:  tt,
				})
			}
		}
	}

	// Connections.
	if ct := getTable(tbl, "connections"); ct != nil {
		var connErr error
		ct.ForEach(func(k, v lua.LValue) {
			name, ok := k.(lua.LString)
			if !ok {
				return
			}
			conn, ok := v.(*lua.LTable)
			if !ok {
				connErr = fmt.Errorf("connection %q is not a table", string(name))
				return
			}
			reqs, err := compileRequirements(getTable(conn, "requires"), "connection "+string(name))
			if err != nil {
				connErr = err
				return
			}
			area.Connections[string(name)] = types.ConnectionDef{
				To:           getString(conn, "to"),
				Requirements: reqs,
			}
		})
		if connErr != nil {
			return nil, connErr
		}
	}

	return area, nil
}

// tableToRows converts a Lua array of strings to a row slice.
func tableToRows(tbl *lua.LTable) []string {
	var rows []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			rows = append(rows, string(s))
		}
	}
	return rows
}

func compileObstacle(raw rawDef) (*types.ObstacleDef, error) {
	tbl := raw.table
	reqs, err := compileRequirements(getTable(tbl, "requires"), "obstacle "+raw.id)
	if err != nil {
		return nil, err
	}
	obs := &types.ObstacleDef{
		ID:            raw.id,
		Name:          getString(tbl, "name"),
		Level:         getInt(tbl, "level"),
		XP:            getNumber(tbl, "xp"),
		BaseFailRate:  getNumber(tbl, "fail_rate"),
		Area:          getString(tbl, "area"),
		From:          compileCoord(getTable(tbl, "from")),
		To:            compileCoord(getTable(tbl, "to")),
		Delay:         getNumber(tbl, "delay"),
		Bidirectional: getBool(tbl, "bidirectional", false),
		Requirements:  reqs,
	}
	if dt := getTable(tbl, "fail_damage"); dt != nil {
		obs.FailDamageMin = getInt(dt, "min")
		obs.FailDamageMax = getInt(dt, "max")
	}
	return obs, nil
}

func compileCourse(raw rawDef) (*types.CourseDef, error) {
	tbl := raw.table
	reqs, err := compileRequirements(getTable(tbl, "requires"), "course "+raw.id)
	if err != nil {
		return nil, err
	}
	return &types.CourseDef{
		ID:           raw.id,
		Name:         getString(tbl, "name"),
		Obstacles:    getStringList(tbl, "obstacles"),
		MinLevel:     getInt(tbl, "min_level"),
		BonusXP:      getNumber(tbl, "bonus_xp"),
		MarkChance:   getNumber(tbl, "mark_chance"),
		Requirements: reqs,
	}, nil
}

func compilePrayer(raw rawDef) (*types.PrayerDef, error) {
	tbl := raw.table
	p := &types.PrayerDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		Level:     getInt(tbl, "level"),
		DrainRate: getNumber(tbl, "drain"),
		Overhead:  getBool(tbl, "overhead", false),
	}
	switch book := getString(tbl, "book"); book {
	case "", "normal":
		p.Book = types.BookNormal
	case "curses":
		p.Book = types.BookCurses
	default:
		return nil, fmt.Errorf("unknown prayer book %q", book)
	}
	if bt := getTable(tbl, "bonus"); bt != nil {
		p.Bonus = types.PrayerBonus{
			Attack:     getNumber(bt, "attack"),
			Strength:   getNumber(bt, "strength"),
			Defence:    getNumber(bt, "defence"),
			Ranged:     getNumber(bt, "ranged"),
			Magic:      getNumber(bt, "magic"),
			Protection: getNumber(bt, "protection"),
			Leech:      getNumber(bt, "leech"),
			Smite:      getNumber(bt, "smite"),
		}
	}
	return p, nil
}

func compileConsumable(raw rawConsumable) (*types.ConsumableDef, error) {
	tbl := raw.table
	item := &types.ConsumableDef{
		ID:    raw.id,
		Name:  getString(tbl, "name"),
		Level: getInt(tbl, "level"),
	}
	switch raw.kind {
	case "food":
		item.Kind = types.KindFood
	case "potion":
		item.Kind = types.KindPotion
	default:
		return nil, fmt.Errorf("unknown consumable kind %q", raw.kind)
	}

	boosts, err := compileBoosts(getTable(tbl, "boosts"), raw.kind+" "+raw.id)
	if err != nil {
		return nil, err
	}
	item.Effect = types.ConsumableEffect{
		Heal:          getInt(tbl, "heal"),
		Boosts:        boosts,
		PrayerRestore: getNumber(tbl, "prayer_restore"),
		Duration:      getNumber(tbl, "duration"),
		Cooldown:      getNumber(tbl, "cooldown"),
		Combo:         getBool(tbl, "combo", false),
	}
	for _, name := range getStringList(tbl, "tags") {
		tag, ok := tagNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown effect tag %q", name)
		}
		item.Effect.Tags = append(item.Effect.Tags, tag)
	}
	return item, nil
}

// stampObstacleTiles writes each obstacle's level and interaction text
// onto its anchor tile(s) so the grid alone answers "what is here".
func stampObstacleTiles(defs *types.Defs) {
	for _, obs := range defs.Obstacles {
		area, ok := defs.Areas[obs.Area]
		if !ok {
			continue
		}
		stamp := func(c types.Coord) {
			if c.X < 0 || c.X >= area.Width || c.Y < 0 || c.Y >= area.Height || c.Plane < 0 || c.Plane >= area.Planes {
				return
			}
			idx := (c.Plane*area.Height+c.Y)*area.Width + c.X
			tile := &area.Tiles[idx]
			if tile.Type != types.TileObstacle {
				return
			}
			tile.AgilityLevel = obs.Level
			tile.Interaction = obs.Name
		}
		stamp(obs.From)
		if obs.Bidirectional {
			stamp(obs.To)
		}
	}
}
