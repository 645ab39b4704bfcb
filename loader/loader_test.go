package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/runesim/types"
)

func TestLoad_MinimalWorld(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.World.Title != "Minimal World" {
		t.Errorf("Title = %q, want %q", defs.World.Title, "Minimal World")
	}
	if defs.World.StartArea != "yard" {
		t.Errorf("StartArea = %q, want %q", defs.World.StartArea, "yard")
	}
	if _, ok := defs.Areas["yard"]; !ok {
		t.Error("area 'yard' not found")
	}
}

func TestLoad_FullWorld(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// World metadata.
	if defs.World.Version != "1.2.3" {
		t.Errorf("Version = %q", defs.World.Version)
	}
	if defs.World.Seed != 77 {
		t.Errorf("Seed = %d, want 77", defs.World.Seed)
	}
	if defs.World.Start != (types.Coord{X: 1, Y: 1}) {
		t.Errorf("Start = %v", defs.World.Start)
	}

	// Areas.
	if len(defs.Areas) != 2 {
		t.Errorf("expected 2 areas, got %d", len(defs.Areas))
	}
	village := defs.Areas["village"]
	if village.Width != 6 || village.Height != 5 || village.Planes != 1 {
		t.Errorf("village dims = %dx%dx%d", village.Width, village.Height, village.Planes)
	}
	conn, ok := village.Connections["north_gate"]
	if !ok || conn.To != "ridge" {
		t.Errorf("north_gate connection = %+v", conn)
	}
	if len(conn.Requirements) != 1 || conn.Requirements[0].Kind != types.ReqSkill {
		t.Errorf("north_gate requirements = %+v", conn.Requirements)
	}

	ridge := defs.Areas["ridge"]
	if !ridge.Wilderness || !ridge.PvP {
		t.Error("ridge flags not set")
	}
	if ridge.Planes != 2 {
		t.Errorf("ridge planes = %d, want 2", ridge.Planes)
	}

	// Obstacles.
	wall, ok := defs.Obstacles["low_wall"]
	if !ok {
		t.Fatal("obstacle 'low_wall' not found")
	}
	if wall.XP != 8 || wall.BaseFailRate != 0.2 {
		t.Errorf("low_wall = %+v", wall)
	}
	if wall.FailDamageMin != 1 || wall.FailDamageMax != 2 {
		t.Errorf("low_wall damage = %d-%d", wall.FailDamageMin, wall.FailDamageMax)
	}
	swing := defs.Obstacles["rope_swing"]
	if !swing.Bidirectional {
		t.Error("rope_swing not bidirectional")
	}
	if len(swing.Requirements) != 1 || swing.Requirements[0].Item != "rope" {
		t.Errorf("rope_swing requirements = %+v", swing.Requirements)
	}

	// Courses.
	course, ok := defs.Courses["village_course"]
	if !ok {
		t.Fatal("course 'village_course' not found")
	}
	if len(course.Obstacles) != 2 || course.Obstacles[0] != "low_wall" {
		t.Errorf("course obstacles = %v", course.Obstacles)
	}
	if course.BonusXP != 30 || course.MarkChance != 0.05 {
		t.Errorf("course = %+v", course)
	}

	// Prayers.
	piety := defs.Prayers["piety"]
	if piety.Bonus.Strength != 1.23 {
		t.Errorf("piety strength bonus = %v", piety.Bonus.Strength)
	}
	if defs.Prayers["protect_melee"].Overhead != true {
		t.Error("protect_melee not an overhead")
	}
	if defs.Prayers["turmoil"].Book != types.BookCurses {
		t.Error("turmoil not on the curses book")
	}

	// Consumables.
	shark := defs.Consumables["shark"]
	if shark.Kind != types.KindFood || shark.Effect.Heal != 20 {
		t.Errorf("shark = %+v", shark)
	}
	if !defs.Consumables["karambwan"].Effect.Combo {
		t.Error("karambwan not a combo food")
	}
	divine := defs.Consumables["divine_super_strength"]
	if divine.Kind != types.KindPotion {
		t.Error("divine potion compiled as food")
	}
	if len(divine.Effect.Tags) != 1 || divine.Effect.Tags[0] != types.TagDivine {
		t.Errorf("divine tags = %v", divine.Effect.Tags)
	}
	if divine.Effect.Boosts[types.StatStrength] != 5 {
		t.Errorf("divine boosts = %v", divine.Effect.Boosts)
	}
}

func TestLoad_StampsObstacleTiles(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	village := defs.Areas["village"]
	tile := village.Tiles[1*village.Width+3] // (3,1), the low wall anchor
	if tile.Type != types.TileObstacle {
		t.Fatalf("anchor tile type = %v", tile.Type)
	}
	if tile.AgilityLevel != 1 || tile.Interaction != "low wall" {
		t.Errorf("anchor tile = %+v, want low wall metadata", tile)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs")
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
	if !strings.Contains(err.Error(), "undefined area") {
		t.Errorf("error = %q, expected 'undefined area'", err.Error())
	}
	if !strings.Contains(err.Error(), "undefined obstacle") {
		t.Errorf("error = %q, expected 'undefined obstacle'", err.Error())
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	if _, err := Load("testdata/bad_lua"); err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
}

func TestLoad_NoWorldDef_Fails(t *testing.T) {
	_, err := Load("testdata/no_world")
	if err == nil {
		t.Fatal("expected error for missing World{} definition")
	}
	if !strings.Contains(err.Error(), "no World{} definition") {
		t.Errorf("error = %q, expected 'no World{} definition'", err.Error())
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	// os library should not be available.
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`os.execute("echo pwned")`); err == nil {
		t.Fatal("expected sandbox to block os.execute")
	}
	if err := L.DoString(`math.randomseed(1)`); err == nil {
		t.Fatal("expected sandbox to block math.randomseed")
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"prayers.lua", "world.lua", "areas.lua", "courses.lua"})
	if files[0] != "world.lua" {
		t.Errorf("first file = %q, want world.lua", files[0])
	}
	// Rest should be alphabetical.
	if files[1] != "areas.lua" {
		t.Errorf("second file = %q, want areas.lua", files[1])
	}
}
