// Package world provides read-only access to the loaded areas and their
// tile grids. Area definitions are immutable after load and safe for
// concurrent reads from every player's state machine.
package world

import (
	"github.com/nathoo/runesim/types"
)

// Model is the static world: areas, tiles, and area connectivity.
type Model struct {
	areas map[string]*types.AreaDef
}

// New builds a model over loaded area definitions. The map is retained,
// not copied; callers must not mutate it afterwards.
func New(areas map[string]*types.AreaDef) *Model {
	return &Model{areas: areas}
}

// Area returns an area definition by ID.
func (m *Model) Area(id string) (*types.AreaDef, bool) {
	a, ok := m.areas[id]
	return a, ok
}

// AreaIDs returns the IDs of all loaded areas.
func (m *Model) AreaIDs() []string {
	ids := make([]string, 0, len(m.areas))
	for id := range m.areas {
		ids = append(ids, id)
	}
	return ids
}

// TileAt returns the tile at a position. Out-of-bounds positions return
// no tile; there is no failure mode beyond that.
func (m *Model) TileAt(area string, x, y, plane int) (types.Tile, bool) {
	a, ok := m.areas[area]
	if !ok {
		return types.Tile{}, false
	}
	planes := a.Planes
	if planes < 1 {
		planes = 1
	}
	if x < 0 || y < 0 || plane < 0 || x >= a.Width || y >= a.Height || plane >= planes {
		return types.Tile{}, false
	}
	return a.Tiles[(plane*a.Height+y)*a.Width+x], true
}

// Tile returns the tile at a coordinate.
func (m *Model) Tile(area string, c types.Coord) (types.Tile, bool) {
	return m.TileAt(area, c.X, c.Y, c.Plane)
}

// IsWalkable reports whether a tile can be occupied by regular movement.
// Doors, gates, ladders, and stairs are passable; agility obstacles are
// only traversable through the agility engine.
func (m *Model) IsWalkable(t types.Tile) bool {
	switch t.Type {
	case types.TileWalkable, types.TileDoor, types.TileGate, types.TileLadder, types.TileStairs:
		return true
	default:
		return false
	}
}

// WalkableAt reports whether the tile at a coordinate exists and is walkable.
func (m *Model) WalkableAt(area string, c types.Coord) bool {
	t, ok := m.Tile(area, c)
	return ok && m.IsWalkable(t)
}

// Connections returns an area's named connections to other areas.
func (m *Model) Connections(area string) map[string]types.ConnectionDef {
	a, ok := m.areas[area]
	if !ok {
		return nil
	}
	return a.Connections
}

// InWilderness reports whether an area carries the wilderness flag.
func (m *Model) InWilderness(area string) bool {
	a, ok := m.areas[area]
	return ok && a.Wilderness
}
