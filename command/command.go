// Package command executes parsed player intents against the engine and
// renders plain-text responses. Both the CLI and the server dispatch
// through it so every front end speaks the same command language.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/runesim/engine"
	"github.com/nathoo/runesim/types"
)

// Execute runs one intent for a player and returns the response text.
// Unknown verbs and malformed arguments return errors; engine rule
// violations come back as wrapped sentinel errors the transport can map
// to wire codes.
func Execute(eng *engine.Engine, playerID string, intent types.Intent) (string, error) {
	switch intent.Verb {
	case "":
		return "", nil

	case "go":
		if intent.Object == "" || intent.Target == "" {
			return "", fmt.Errorf("usage: move <x> <y>")
		}
		x, err := strconv.Atoi(intent.Object)
		if err != nil {
			return "", fmt.Errorf("usage: move <x> <y>")
		}
		y, err := strconv.Atoi(intent.Target)
		if err != nil {
			return "", fmt.Errorf("usage: move <x> <y>")
		}
		st := eng.Status(playerID)
		dest := types.Coord{X: x, Y: y, Plane: st.Pos.Plane}
		if err := eng.MoveTo(playerID, dest); err != nil {
			return "", err
		}
		return fmt.Sprintf("Walking to (%d, %d).", x, y), nil

	case "stop":
		eng.CancelMove(playerID)
		return "You stop.", nil

	case "run":
		on, err := eng.ToggleRun(playerID)
		if err != nil {
			return "", err
		}
		if on {
			return "Run enabled.", nil
		}
		return "Run disabled.", nil

	case "course.start":
		if intent.Object == "" {
			return "", fmt.Errorf("usage: course start <course>")
		}
		if err := eng.StartCourse(playerID, intent.Object); err != nil {
			return "", err
		}
		return fmt.Sprintf("You step up to the %s.", intent.Object), nil

	case "course.leave":
		if err := eng.AbandonCourse(playerID); err != nil {
			return "", err
		}
		return "You leave the course.", nil

	case "obstacle":
		out, err := eng.AttemptObstacle(playerID)
		if err != nil {
			return "", err
		}
		return out.Message, nil

	case "shortcut":
		if intent.Object == "" {
			return "", fmt.Errorf("usage: shortcut <obstacle>")
		}
		out, err := eng.UseShortcut(playerID, intent.Object)
		if err != nil {
			return "", err
		}
		return out.Message, nil

	case "shortcuts":
		shortcuts := eng.AvailableShortcuts(playerID)
		if len(shortcuts) == 0 {
			return "No shortcuts nearby.", nil
		}
		var b strings.Builder
		b.WriteString("Nearby shortcuts:")
		for _, sc := range shortcuts {
			fmt.Fprintf(&b, "\n  %s (%s) -> (%d, %d)", sc.Obstacle, sc.Label, sc.Destination.X, sc.Destination.Y)
		}
		return b.String(), nil

	case "pray", "flick":
		if intent.Object == "" {
			return "", fmt.Errorf("usage: %s <prayer>", intent.Verb)
		}
		flick := intent.Verb == "flick"
		if err := eng.ActivatePrayer(playerID, intent.Object, flick); err != nil {
			return "", err
		}
		if flick {
			return fmt.Sprintf("You flick %s.", intent.Object), nil
		}
		return fmt.Sprintf("You activate %s.", intent.Object), nil

	case "unpray":
		if intent.Object == "" {
			return "", fmt.Errorf("usage: unpray <prayer>")
		}
		if err := eng.DeactivatePrayer(playerID, intent.Object); err != nil {
			return "", err
		}
		return fmt.Sprintf("You deactivate %s.", intent.Object), nil

	case "book":
		book, err := parseBook(intent.Object)
		if err != nil {
			return "", err
		}
		eng.SwitchPrayerBook(playerID, book)
		return fmt.Sprintf("You switch to the %s book.", intent.Object), nil

	case "quick":
		on, err := eng.ToggleQuickPrayers(playerID)
		if err != nil {
			return "", err
		}
		if on {
			return "Quick prayers on.", nil
		}
		return "Quick prayers off.", nil

	case "quick.set":
		var ids []string
		if intent.Object != "" {
			ids = append(ids, intent.Object)
		}
		ids = append(ids, strings.Fields(intent.Target)...)
		if err := eng.SetQuickPrayers(playerID, ids); err != nil {
			return "", err
		}
		return fmt.Sprintf("Quick prayers set: %s.", strings.Join(ids, ", ")), nil

	case "eat":
		if intent.Object == "" {
			return "", fmt.Errorf("usage: eat <food>")
		}
		effect, err := eng.ConsumeFood(playerID, intent.Object)
		if err != nil {
			return "", err
		}
		if effect.Heal > 0 {
			return fmt.Sprintf("You eat the %s. It heals %d hitpoints.", intent.Object, effect.Heal), nil
		}
		return fmt.Sprintf("You eat the %s.", intent.Object), nil

	case "drink":
		if intent.Object == "" {
			return "", fmt.Errorf("usage: drink <potion>")
		}
		effect, err := eng.ConsumePotion(playerID, intent.Object)
		if err != nil {
			return "", err
		}
		if effect.Duration > 0 {
			return fmt.Sprintf("You drink the %s. The effect lasts %.0f minutes.", intent.Object, effect.Duration), nil
		}
		return fmt.Sprintf("You drink the %s.", intent.Object), nil

	case "status":
		return FormatStatus(eng.Status(playerID)), nil

	case "effects":
		return formatEffects(eng.Status(playerID)), nil

	case "map":
		return RenderMap(eng.ViewTiles(playerID, 5), 5), nil

	case "help":
		return helpText, nil

	default:
		return "", fmt.Errorf("unknown command %q (try 'help')", intent.Verb)
	}
}

func parseBook(name string) (types.PrayerBook, error) {
	switch name {
	case "normal":
		return types.BookNormal, nil
	case "curses":
		return types.BookCurses, nil
	default:
		return 0, fmt.Errorf("unknown prayer book %q (normal, curses)", name)
	}
}

// FormatStatus renders a status snapshot as readable text.
func FormatStatus(st engine.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s (%d, %d)", st.Player, st.AreaName, st.Pos.X, st.Pos.Y)
	if st.Wilderness {
		b.WriteString(" [wilderness]")
	}
	fmt.Fprintf(&b, "\nHitpoints: %d/%d  Run: %.0f%%", st.Hitpoints, st.MaxHitpoints, st.RunEnergy)
	if st.Running {
		b.WriteString(" (running)")
	}
	fmt.Fprintf(&b, "\nPrayer: %.1f", st.PrayerPoints)
	if len(st.ActivePrayers) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(st.ActivePrayers, ", "))
	}
	fmt.Fprintf(&b, "\nAgility: %d (%.0f xp)  Marks: %d", st.AgilityLevel, st.AgilityXP, st.Marks)
	if st.Course != "" {
		fmt.Fprintf(&b, "\nCourse: %s — obstacle %d/%d, %d laps",
			st.CourseName, st.ObstacleIndex+1, st.CourseLength, st.Laps)
	}
	if len(st.Effects) > 0 {
		b.WriteString("\n")
		b.WriteString(formatEffects(st))
	}
	return b.String()
}

func formatEffects(st engine.Status) string {
	if len(st.Effects) == 0 {
		return "No active effects."
	}
	var b strings.Builder
	b.WriteString("Active effects:")
	for _, eff := range st.Effects {
		fmt.Fprintf(&b, "\n  %s — %.1f min", eff.Name, eff.Remaining)
	}
	return b.String()
}

// tileGlyphs mirrors the catalog legend for rendering.
var tileGlyphs = map[types.TileType]rune{
	types.TileWalkable: '.',
	types.TileBlocked:  '#',
	types.TileWater:    '~',
	types.TileDoor:     'D',
	types.TileGate:     'G',
	types.TileLadder:   'L',
	types.TileStairs:   'S',
	types.TileObstacle: 'O',
}

// RenderMap draws a tile grid with the player at the center.
func RenderMap(grid [][]types.Tile, radius int) string {
	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x, tile := range row {
			if x == radius && y == radius {
				b.WriteRune('@')
				continue
			}
			glyph, ok := tileGlyphs[tile.Type]
			if !ok {
				glyph = '?'
			}
			b.WriteRune(glyph)
		}
	}
	return b.String()
}

const helpText = `Commands:
  move <x> <y>        walk to a tile
  run                 toggle running
  stop                cancel movement
  shortcuts           list nearby agility shortcuts
  shortcut <id>       use a shortcut
  course start <id>   start an agility course
  course leave        abandon the course
  obstacle            attempt the next course obstacle
  pray <id>           activate a prayer
  flick <id>          flick a prayer (one-window activation)
  unpray <id>         deactivate a prayer
  book <normal|curses> switch prayer book
  quick set <ids...>  configure quick prayers
  quick               toggle quick prayers
  eat <id>            eat food
  drink <id>          drink a potion
  status              show your status
  effects             show active effects
  map                 show nearby tiles
  quit                exit`
