package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/runesim/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *types.Defs) error {
	ve := &ValidationError{}

	// World title required.
	if defs.World.Title == "" {
		ve.Errors = append(ve.Errors, "World.title is required")
	}

	// Start area exists and the start tile is walkable.
	if defs.World.StartArea == "" {
		ve.Errors = append(ve.Errors, "World.start_area is required")
	} else if area, ok := defs.Areas[defs.World.StartArea]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start area %q not found in defined areas", defs.World.StartArea))
	} else if !inBounds(area, defs.World.Start) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start position %v outside area %q bounds", defs.World.Start, area.ID))
	}

	// Connection targets valid.
	for areaID, area := range defs.Areas {
		for name, conn := range area.Connections {
			if _, ok := defs.Areas[conn.To]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"area %q connection %q points to undefined area %q", areaID, name, conn.To))
			}
		}
	}

	// Obstacles: area exists, endpoints in bounds, sane numbers.
	for id, obs := range defs.Obstacles {
		area, ok := defs.Areas[obs.Area]
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"obstacle %q references undefined area %q", id, obs.Area))
			continue
		}
		if !inBounds(area, obs.From) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"obstacle %q from-position %v outside area %q bounds", id, obs.From, obs.Area))
		}
		if !inBounds(area, obs.To) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"obstacle %q to-position %v outside area %q bounds", id, obs.To, obs.Area))
		}
		if obs.Level < 1 || obs.Level > 99 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"obstacle %q level %d outside 1–99", id, obs.Level))
		}
		if obs.BaseFailRate < 0 || obs.BaseFailRate > 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"obstacle %q fail_rate %g outside [0,1]", id, obs.BaseFailRate))
		}
		if obs.FailDamageMin > obs.FailDamageMax {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"obstacle %q fail_damage min %d > max %d", id, obs.FailDamageMin, obs.FailDamageMax))
		}
		if tile, ok := tileAt(area, obs.From); ok && tile.Type != types.TileObstacle {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"obstacle %q from-tile %v is not marked 'O' in area %q", id, obs.From, obs.Area))
		}
	}

	// Courses: obstacle references valid, levels consistent.
	for id, course := range defs.Courses {
		if len(course.Obstacles) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("course %q has no obstacles", id))
		}
		for _, obsID := range course.Obstacles {
			obs, ok := defs.Obstacles[obsID]
			if !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"course %q references undefined obstacle %q", id, obsID))
				continue
			}
			if obs.Level > course.MinLevel {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"course %q min_level %d below obstacle %q level %d",
					id, course.MinLevel, obsID, obs.Level))
			}
		}
		if course.MarkChance < 0 || course.MarkChance > 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"course %q mark_chance %g outside [0,1]", id, course.MarkChance))
		}
	}

	// Prayers: level range, non-negative drain.
	for id, prayer := range defs.Prayers {
		if prayer.Level < 1 || prayer.Level > 99 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"prayer %q level %d outside 1–99", id, prayer.Level))
		}
		if prayer.DrainRate < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"prayer %q drain %g is negative", id, prayer.DrainRate))
		}
	}

	// Consumables: sane durations and cooldowns.
	for id, item := range defs.Consumables {
		if item.Effect.Duration < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"consumable %q duration %g is negative", id, item.Effect.Duration))
		}
		if item.Effect.Cooldown < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"consumable %q cooldown %g is negative", id, item.Effect.Cooldown))
		}
		if hasDivineTag(item) && item.Effect.Duration <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"divine consumable %q needs a positive duration", id))
		}
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func inBounds(area *types.AreaDef, c types.Coord) bool {
	return c.X >= 0 && c.X < area.Width &&
		c.Y >= 0 && c.Y < area.Height &&
		c.Plane >= 0 && c.Plane < area.Planes
}

func tileAt(area *types.AreaDef, c types.Coord) (types.Tile, bool) {
	if !inBounds(area, c) {
		return types.Tile{}, false
	}
	return area.Tiles[(c.Plane*area.Height+c.Y)*area.Width+c.X], true
}

func hasDivineTag(item *types.ConsumableDef) bool {
	for _, t := range item.Effect.Tags {
		if t == types.TagDivine {
			return true
		}
	}
	return false
}
