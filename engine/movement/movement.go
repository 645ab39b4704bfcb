// Package movement owns the player's position, facing path, and run-energy
// pool. Path execution is tick-driven: Advance consumes simulated time and
// steps the player tile-by-tile, so tests never wait on a wall clock.
package movement

import (
	"math"

	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/engine/path"
	"github.com/nathoo/runesim/engine/skill"
	"github.com/nathoo/runesim/engine/world"
	"github.com/nathoo/runesim/types"
)

const (
	// Per-tile completion delay in seconds. Running covers two tiles in
	// the time walking covers one.
	WalkTileDelay = 0.6
	RunTileDelay  = 0.3

	// Run-energy drain per tile: dist * drainFactor * (1 + weight/64).
	drainFactor  = 0.67
	weightScale  = 64.0
	maxRunEnergy = 100.0
)

// Controller executes movement over the world model. It is stateless with
// respect to players; all mutable state lives in types.MovementState.
type Controller struct {
	world    *world.Model
	finder   *path.Finder
	byOrigin map[string]map[types.Coord]*types.ObstacleDef
}

// NewController builds a controller and indexes obstacle endpoints so the
// orthogonal shortcut scan is a map lookup.
func NewController(w *world.Model, f *path.Finder, obstacles map[string]*types.ObstacleDef) *Controller {
	c := &Controller{
		world:    w,
		finder:   f,
		byOrigin: map[string]map[types.Coord]*types.ObstacleDef{},
	}
	for _, def := range obstacles {
		c.index(def.Area, def.From, def)
		if def.Bidirectional {
			c.index(def.Area, def.To, def)
		}
	}
	return c
}

func (c *Controller) index(area string, at types.Coord, def *types.ObstacleDef) {
	m, ok := c.byOrigin[area]
	if !ok {
		m = map[types.Coord]*types.ObstacleDef{}
		c.byOrigin[area] = m
	}
	m[at] = def
}

// MoveTo plans a path to dest and begins executing it. Shortcut edges the
// player qualifies for are part of the search; a disconnected destination
// returns errs.ErrNoPathFound and leaves the current path untouched.
func (c *Controller) MoveTo(st *types.MovementState, caps skill.Capability, dest types.Coord) error {
	edges := func(from types.Coord) []path.Edge {
		shortcuts := c.AvailableShortcuts(st.Area, from, caps)
		if len(shortcuts) == 0 {
			return nil
		}
		out := make([]path.Edge, 0, len(shortcuts))
		for _, s := range shortcuts {
			out = append(out, path.Edge{To: s.Destination, Obstacle: s.Obstacle})
		}
		return out
	}
	p, err := c.finder.FindPath(st.Area, st.Pos, dest, edges)
	if err != nil {
		return err
	}
	st.Path = p
	st.StepProgress = 0
	return nil
}

// Cancel abandons the current path. The player stays on the last fully
// arrived tile; progress toward the next tile is discarded.
func (c *Controller) Cancel(st *types.MovementState) {
	st.Path = nil
	st.StepProgress = 0
}

// ToggleRun flips the run flag. Enabling run with an empty energy pool
// fails with errs.ErrInsufficientEnergy.
func (c *Controller) ToggleRun(st *types.MovementState) error {
	if !st.Running && st.RunEnergy <= 0 {
		return errs.ErrInsufficientEnergy
	}
	st.Running = !st.Running
	return nil
}

// RestoreEnergy adds run energy, clamped to [0, 100].
func (c *Controller) RestoreEnergy(st *types.MovementState, amount float64) {
	st.RunEnergy += amount
	if st.RunEnergy > maxRunEnergy {
		st.RunEnergy = maxRunEnergy
	}
	if st.RunEnergy < 0 {
		st.RunEnergy = 0
	}
}

// Advance consumes dt seconds of simulated time, arriving at as many path
// tiles as the per-tile delay allows. It returns the tiles arrived at, in
// order. Running out of energy mid-path force-disables running and walks
// the remainder; the move itself is never aborted.
func (c *Controller) Advance(st *types.MovementState, dt float64) []types.Coord {
	var arrived []types.Coord
	for dt > 0 && len(st.Path) > 0 {
		delay := WalkTileDelay
		if st.Running {
			delay = RunTileDelay
		}
		need := delay - st.StepProgress
		if dt < need {
			st.StepProgress += dt
			break
		}
		dt -= need
		st.StepProgress = 0
		arrived = append(arrived, c.step(st))
	}
	if len(st.Path) == 0 {
		st.StepProgress = 0
	}
	return arrived
}

// step arrives at the next path tile, paying run-energy drain if running.
func (c *Controller) step(st *types.MovementState) types.Coord {
	next := st.Path[0]
	if st.Running {
		dist := distance(st.Pos, next)
		st.RunEnergy -= dist * drainFactor * (1 + st.Weight/weightScale)
		if st.RunEnergy <= 0 {
			st.RunEnergy = 0
			st.Running = false
		}
	}
	st.Pos = next
	st.Path = st.Path[1:]
	if len(st.Path) == 0 {
		st.Path = nil
	}
	return next
}

// Moving reports whether a path is currently being executed.
func (c *Controller) Moving(st *types.MovementState) bool {
	return len(st.Path) > 0
}

// AvailableShortcuts scans the four orthogonal neighbors of pos for agility
// obstacle tiles and filters them by the player's capability. This is the
// dynamic edge source the pathfinder consumes: an unusable shortcut is
// never returned, so it can never leak into a path.
func (c *Controller) AvailableShortcuts(area string, pos types.Coord, caps skill.Capability) []types.Shortcut {
	origins, ok := c.byOrigin[area]
	if !ok {
		return nil
	}
	var out []types.Shortcut
	for _, d := range [4]struct{ dx, dy int }{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
		at := types.Coord{X: pos.X + d.dx, Y: pos.Y + d.dy, Plane: pos.Plane}
		tile, ok := c.world.Tile(area, at)
		if !ok || tile.Type != types.TileObstacle {
			continue
		}
		def, ok := origins[at]
		if !ok {
			continue
		}
		if caps.Level(types.StatAgility) < def.Level || !caps.Meets(def.Requirements) {
			continue
		}
		dest := def.To
		if def.Bidirectional && at == def.To {
			dest = def.From
		}
		label := tile.Interaction
		if label == "" {
			label = def.Name
		}
		out = append(out, types.Shortcut{Obstacle: def.ID, Label: label, Destination: dest})
	}
	return out
}

// ObstacleAt returns the obstacle anchored at a coordinate, if any.
func (c *Controller) ObstacleAt(area string, at types.Coord) (*types.ObstacleDef, bool) {
	origins, ok := c.byOrigin[area]
	if !ok {
		return nil, false
	}
	def, ok := origins[at]
	return def, ok
}

func distance(a, b types.Coord) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
