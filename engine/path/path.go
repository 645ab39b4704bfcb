// Package path implements A* search over an area's tile grid. The neighbor
// set is the union of the four orthogonal walkable edges and any agility
// shortcut edges the player can currently use, supplied by the caller.
package path

import (
	"container/heap"
	"math"

	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/engine/world"
	"github.com/nathoo/runesim/types"
)

// Edge is a conditional shortcut edge from one tile to another.
type Edge struct {
	To       types.Coord
	Cost     float64
	Obstacle string // obstacle ID that provides this edge
}

// EdgeFunc supplies the shortcut edges usable from a tile. Edges the player
// cannot use must not be returned at all: their presence changes path cost,
// so the neighbor set has to be deterministic given player capability.
type EdgeFunc func(from types.Coord) []Edge

var orthogonal = [4]struct{ dx, dy int }{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

type node struct {
	coord  types.Coord
	g      float64
	f      float64
	index  int
	parent *node
}

type queue []*node

func (q queue) Len() int           { return len(q) }
func (q queue) Less(i, j int) bool { return q[i].f < q[j].f }

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// Finder runs A* searches over the world model.
type Finder struct {
	world *world.Model
}

// NewFinder creates a Finder over the given world.
func NewFinder(w *world.Model) *Finder {
	return &Finder{world: w}
}

func heuristic(a, b types.Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Hypot(dx, dy)
}

// FindPath searches for a path from start to goal within one area.
// shortcuts may be nil when no agility edges are available. The returned
// path excludes the start tile and ends on the goal tile. A disconnected
// goal yields errs.ErrNoPathFound, never a panic.
func (f *Finder) FindPath(area string, start, goal types.Coord, shortcuts EdgeFunc) ([]types.Coord, error) {
	if !f.world.WalkableAt(area, start) || !f.world.WalkableAt(area, goal) {
		return nil, errs.ErrNoPathFound
	}
	if start == goal {
		return []types.Coord{}, nil
	}

	open := &queue{}
	heap.Init(open)
	heap.Push(open, &node{coord: start, g: 0, f: heuristic(start, goal)})
	gScore := map[types.Coord]float64{start: 0}
	closed := map[types.Coord]struct{}{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if _, seen := closed[current.coord]; seen {
			continue
		}
		closed[current.coord] = struct{}{}
		if current.coord == goal {
			return reconstruct(current), nil
		}

		relax := func(next types.Coord, cost float64) {
			if _, seen := closed[next]; seen {
				return
			}
			tentative := current.g + cost
			if prev, ok := gScore[next]; ok && tentative >= prev {
				return
			}
			gScore[next] = tentative
			heap.Push(open, &node{
				coord:  next,
				g:      tentative,
				f:      tentative + heuristic(next, goal),
				parent: current,
			})
		}

		for _, d := range orthogonal {
			next := types.Coord{X: current.coord.X + d.dx, Y: current.coord.Y + d.dy, Plane: current.coord.Plane}
			if !f.world.WalkableAt(area, next) {
				continue
			}
			relax(next, 1)
		}

		if shortcuts != nil {
			for _, e := range shortcuts(current.coord) {
				cost := e.Cost
				if cost <= 0 {
					cost = heuristic(current.coord, e.To)
				}
				relax(e.To, cost)
			}
		}
	}
	return nil, errs.ErrNoPathFound
}

func reconstruct(end *node) []types.Coord {
	var path []types.Coord
	for n := end; n.parent != nil; n = n.parent {
		path = append(path, n.coord)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
