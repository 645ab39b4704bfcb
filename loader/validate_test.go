package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/runesim/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *types.Defs {
	area := &types.AreaDef{
		ID: "yard", Width: 3, Height: 3, Planes: 1,
		Connections: map[string]types.ConnectionDef{},
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			tt := types.TileWalkable
			if x == 2 && y == 1 {
				tt = types.TileObstacle
			}
			area.Tiles = append(area.Tiles, types.Tile{Coord: types.Coord{X: x, Y: y}, Type: tt})
		}
	}
	return &types.Defs{
		World: types.WorldDef{
			Title:     "Test",
			StartArea: "yard",
			Start:     types.Coord{X: 1, Y: 1},
		},
		Areas:       map[string]*types.AreaDef{"yard": area},
		Obstacles:   map[string]*types.ObstacleDef{},
		Courses:     map[string]*types.CourseDef{},
		Prayers:     map[string]*types.PrayerDef{},
		Consumables: map[string]*types.ConsumableDef{},
	}
}

func assertContains(t *testing.T, errs []string, want string) {
	t.Helper()
	for _, e := range errs {
		if strings.Contains(e, want) {
			return
		}
	}
	t.Errorf("no error containing %q in %v", want, errs)
}

func TestValidate_ValidDefs(t *testing.T) {
	if err := validate(validDefs()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_MissingTitleAndStart(t *testing.T) {
	defs := validDefs()
	defs.World.Title = ""
	defs.World.StartArea = ""

	err := validate(defs)
	if err == nil {
		t.Fatal("expected errors")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 errors collected, got %d", len(ve.Errors))
	}
	assertContains(t, ve.Errors, "title")
	assertContains(t, ve.Errors, "start_area")
}

func TestValidate_StartOutOfBounds(t *testing.T) {
	defs := validDefs()
	defs.World.Start = types.Coord{X: 9, Y: 9}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for out-of-bounds start")
	}
	assertContains(t, err.(*ValidationError).Errors, "bounds")
}

func TestValidate_ObstacleChecks(t *testing.T) {
	defs := validDefs()
	defs.Obstacles["bad"] = &types.ObstacleDef{
		ID: "bad", Area: "yard",
		Level:        150,
		BaseFailRate: 1.5,
		From:         types.Coord{X: 2, Y: 1},
		To:           types.Coord{X: 8, Y: 8},
		FailDamageMin: 5, FailDamageMax: 2,
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected errors")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "level 150")
	assertContains(t, ve.Errors, "fail_rate")
	assertContains(t, ve.Errors, "to-position")
	assertContains(t, ve.Errors, "fail_damage")
}

func TestValidate_ObstacleAnchorWarning(t *testing.T) {
	defs := validDefs()
	// From is walkable, not an 'O' tile: a warning, not an error.
	defs.Obstacles["off_grid"] = &types.ObstacleDef{
		ID: "off_grid", Area: "yard", Level: 1,
		From: types.Coord{X: 0, Y: 0},
		To:   types.Coord{X: 1, Y: 0},
	}
	if err := validate(defs); err != nil {
		t.Fatalf("warning escalated to error: %v", err)
	}
}

func TestValidate_CourseChecks(t *testing.T) {
	defs := validDefs()
	defs.Courses["empty"] = &types.CourseDef{ID: "empty"}
	defs.Courses["broken"] = &types.CourseDef{
		ID:         "broken",
		Obstacles:  []string{"ghost"},
		MarkChance: 2,
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected errors")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "no obstacles")
	assertContains(t, ve.Errors, "undefined obstacle")
	assertContains(t, ve.Errors, "mark_chance")
}

func TestValidate_PrayerAndConsumableChecks(t *testing.T) {
	defs := validDefs()
	defs.Prayers["bad"] = &types.PrayerDef{ID: "bad", Level: 0, DrainRate: -1}
	defs.Consumables["bad_potion"] = &types.ConsumableDef{
		ID: "bad_potion", Kind: types.KindPotion,
		Effect: types.ConsumableEffect{Duration: -1, Cooldown: -1},
	}
	defs.Consumables["divine_instant"] = &types.ConsumableDef{
		ID: "divine_instant", Kind: types.KindPotion,
		Effect: types.ConsumableEffect{Tags: []types.EffectTag{types.TagDivine}},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected errors")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "level 0")
	assertContains(t, ve.Errors, "drain")
	assertContains(t, ve.Errors, "duration")
	assertContains(t, ve.Errors, "cooldown")
	assertContains(t, ve.Errors, "positive duration")
}
