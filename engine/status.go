package engine

import (
	"sort"

	"github.com/nathoo/runesim/types"
)

// EffectStatus is one active consumable effect, for display.
type EffectStatus struct {
	Item      string
	Name      string
	Remaining float64 // minutes
}

// Status is a read-only view of a player's state for rendering and
// transport layers. It carries no references into the live session.
type Status struct {
	Player        string
	Area          string
	AreaName      string
	Pos           types.Coord
	Wilderness    bool
	Hitpoints     int
	MaxHitpoints  int
	RunEnergy     float64
	Running       bool
	Moving        bool
	PrayerPoints  float64
	PrayerBook    types.PrayerBook
	ActivePrayers []string
	AgilityLevel  int
	AgilityXP     float64
	Marks         int
	Course        string
	CourseName    string
	ObstacleIndex int
	CourseLength  int
	Laps          int
	Effects       []EffectStatus
}

// Status snapshots a player's state.
func (e *Engine) Status(playerID string) Status {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Player:       s.PlayerID,
		Area:         s.Move.Area,
		Pos:          s.Move.Pos,
		Wilderness:   e.world.InWilderness(s.Move.Area),
		Hitpoints:    s.Hitpoints,
		MaxHitpoints: s.MaxHitpoints,
		RunEnergy:    s.Move.RunEnergy,
		Running:      s.Move.Running,
		Moving:       len(s.Move.Path) > 0,
		PrayerPoints: s.Prayer.Points,
		PrayerBook:   s.Prayer.Book,
		AgilityLevel: s.Agility.Level,
		AgilityXP:    s.Agility.XP,
		Marks:        s.Agility.Marks,
		Course:       s.Agility.Course,
	}
	if a, ok := e.world.Area(s.Move.Area); ok {
		st.AreaName = a.Name
	}
	for id := range s.Prayer.Active {
		name := id
		if def, ok := e.prayer.Prayer(id); ok {
			name = def.Name
		}
		st.ActivePrayers = append(st.ActivePrayers, name)
	}
	sort.Strings(st.ActivePrayers)
	if s.Agility.Course != "" {
		if course, ok := e.agility.Course(s.Agility.Course); ok {
			st.CourseName = course.Name
			st.ObstacleIndex = s.Agility.ObstacleIndex
			st.CourseLength = len(course.Obstacles)
			st.Laps = s.Agility.LapCounts[course.ID]
		}
	}
	var itemIDs []string
	for id := range s.Consume.Effects {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)
	for _, id := range itemIDs {
		eff := s.Consume.Effects[id]
		name := id
		if def, ok := e.consume.Item(id); ok {
			name = def.Name
		}
		st.Effects = append(st.Effects, EffectStatus{Item: id, Name: name, Remaining: eff.Remaining})
	}
	return st
}

// ViewTiles returns the square of tiles centered on the player, radius
// tiles to each side. Out-of-bounds cells are returned as blocked tiles so
// renderers can draw a uniform grid. The engine depends on no rendering
// type; this is plain data.
func (e *Engine) ViewTiles(playerID string, radius int) [][]types.Tile {
	s := e.Session(playerID)
	s.mu.Lock()
	area, pos := s.Move.Area, s.Move.Pos
	s.mu.Unlock()

	size := radius*2 + 1
	grid := make([][]types.Tile, size)
	for ry := 0; ry < size; ry++ {
		row := make([]types.Tile, size)
		for rx := 0; rx < size; rx++ {
			c := types.Coord{X: pos.X - radius + rx, Y: pos.Y - radius + ry, Plane: pos.Plane}
			tile, ok := e.world.Tile(area, c)
			if !ok {
				tile = types.Tile{Coord: c, Type: types.TileBlocked}
			}
			row[rx] = tile
		}
		grid[ry] = row
	}
	return grid
}
