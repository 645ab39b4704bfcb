// Package agility implements the obstacle and course state machine:
// probabilistic traversal checks, experience awards, lap completion, and
// mark-of-grace rolls. A player is Idle or OnCourse(index); resolution and
// the following state transition happen in one call, so no command from
// the same player can observe a half-updated obstacle index.
package agility

import (
	"fmt"

	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/engine/rng"
	"github.com/nathoo/runesim/engine/skill"
	"github.com/nathoo/runesim/types"
)

const (
	// Relative fail-rate reduction per level above the requirement,
	// capped at 90%; the effective rate never drops below 1%.
	reductionPerLevel = 0.05
	maxReduction      = 0.9
	minFailRate       = 0.01

	// Mark-of-grace bonuses: per level above the course minimum
	// (uncapped, the combined chance clamp bounds it) and per completed
	// lap (capped at 0.1 total).
	markLevelBonus = 0.002
	markLapBonus   = 0.001
	markLapCap     = 0.1
)

// Engine resolves obstacle attempts against the immutable catalog.
type Engine struct {
	obstacles map[string]*types.ObstacleDef
	courses   map[string]*types.CourseDef
}

// NewEngine creates an engine over loaded obstacle and course catalogs.
func NewEngine(obstacles map[string]*types.ObstacleDef, courses map[string]*types.CourseDef) *Engine {
	return &Engine{obstacles: obstacles, courses: courses}
}

// Obstacle returns a catalog entry by ID.
func (e *Engine) Obstacle(id string) (*types.ObstacleDef, bool) {
	def, ok := e.obstacles[id]
	return def, ok
}

// Course returns a catalog entry by ID.
func (e *Engine) Course(id string) (*types.CourseDef, bool) {
	def, ok := e.courses[id]
	return def, ok
}

// EffectiveFailRate computes the fail chance for an obstacle attempt.
// Below the level requirement the attempt always fails. Above it, each
// level grants a flat 5% relative reduction, capped at 90%, with the
// result floored at 1%.
func EffectiveFailRate(base float64, level, required int) float64 {
	if level < required {
		return 1.0
	}
	reduction := float64(level-required) * reductionPerLevel
	if reduction > maxReduction {
		reduction = maxReduction
	}
	rate := base * (1 - reduction)
	if rate < minFailRate {
		rate = minFailRate
	}
	return rate
}

// MarkChance computes the mark-of-grace chance for a completed lap.
func MarkChance(base float64, level, minLevel, laps int) float64 {
	lapBonus := markLapBonus * float64(laps)
	if lapBonus > markLapCap {
		lapBonus = markLapCap
	}
	chance := base + markLevelBonus*float64(level-minLevel) + lapBonus
	if chance < 0 {
		chance = 0
	}
	if chance > 1 {
		chance = 1
	}
	return chance
}

// Outcome reports what a single obstacle attempt produced.
type Outcome struct {
	Obstacle    string
	Success     bool
	Damage      int     // hitpoint damage on failure, applied by the caller
	XP          float64 // experience awarded
	LeveledTo   int     // new level if the attempt leveled the player, else 0
	LapComplete bool
	Mark        bool // mark of grace rolled on lap completion
	Message     string
}

// StartCourse transitions Idle → OnCourse(0).
func (e *Engine) StartCourse(ag *types.AgilityState, caps skill.Capability, courseID string) error {
	course, ok := e.courses[courseID]
	if !ok {
		return fmt.Errorf("%w: course %q", errs.ErrUnknownCatalogEntry, courseID)
	}
	if ag.Course != "" {
		return fmt.Errorf("%w: already on course %q", errs.ErrAlreadyEngaged, ag.Course)
	}
	if ag.Level < course.MinLevel {
		return fmt.Errorf("%w: %s requires agility %d", errs.ErrLevelTooLow, course.Name, course.MinLevel)
	}
	if err := caps.Check(course.Requirements); err != nil {
		return err
	}
	ag.Course = courseID
	ag.ObstacleIndex = 0
	ag.BusySeconds = 0
	return nil
}

// Abandon transitions back to Idle without granting completion rewards.
// Used on explicit action and on player disconnect.
func (e *Engine) Abandon(ag *types.AgilityState) error {
	if ag.Course == "" {
		return errs.ErrNotEngaged
	}
	ag.Course = ""
	ag.ObstacleIndex = 0
	ag.BusySeconds = 0
	return nil
}

// AttemptObstacle resolves the current course obstacle. On success the
// player advances to the obstacle's destination tile and the next index;
// completing the last obstacle awards the lap bonus, rolls for a mark of
// grace, and returns to Idle. On failure the index is kept and the rolled
// damage is reported for the caller to apply.
func (e *Engine) AttemptObstacle(ag *types.AgilityState, mv *types.MovementState, r *rng.RNG) (Outcome, error) {
	if ag.Course == "" {
		return Outcome{}, errs.ErrNotEngaged
	}
	if ag.BusySeconds > 0 {
		return Outcome{}, fmt.Errorf("%w: still traversing", errs.ErrAlreadyEngaged)
	}
	course, ok := e.courses[ag.Course]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: course %q", errs.ErrUnknownCatalogEntry, ag.Course)
	}
	obstacleID := course.Obstacles[ag.ObstacleIndex]
	def, ok := e.obstacles[obstacleID]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: obstacle %q", errs.ErrUnknownCatalogEntry, obstacleID)
	}

	out := Outcome{Obstacle: def.ID}
	ag.BusySeconds = def.Delay

	failRate := EffectiveFailRate(def.BaseFailRate, ag.Level, def.Level)
	if r.Chance(failRate) {
		out.Damage = r.Between(def.FailDamageMin, def.FailDamageMax)
		out.Message = fmt.Sprintf("You slip on the %s and take %d damage.", def.Name, out.Damage)
		return out, nil
	}

	out.Success = true
	out.XP = def.XP
	out.LeveledTo = e.grantXP(ag, def.XP)
	mv.Area = def.Area
	mv.Pos = def.To
	mv.Path = nil
	mv.StepProgress = 0
	ag.ObstacleIndex++
	out.Message = fmt.Sprintf("You cross the %s. (+%.0f xp)", def.Name, def.XP)

	if ag.ObstacleIndex >= len(course.Obstacles) {
		out.LapComplete = true
		out.XP += course.BonusXP
		if lvl := e.grantXP(ag, course.BonusXP); lvl > 0 {
			out.LeveledTo = lvl
		}
		if ag.LapCounts == nil {
			ag.LapCounts = map[string]int{}
		}
		ag.LapCounts[course.ID]++
		chance := MarkChance(course.MarkChance, ag.Level, course.MinLevel, ag.LapCounts[course.ID])
		if r.Chance(chance) {
			ag.Marks++
			out.Mark = true
		}
		ag.Course = ""
		ag.ObstacleIndex = 0
		out.Message = fmt.Sprintf("Lap of %s complete. (+%.0f xp)", course.Name, course.BonusXP)
	}
	return out, nil
}

// UseShortcut resolves a standalone shortcut obstacle. Success relocates
// the player to the far endpoint; a bidirectional shortcut resolves its
// direction from the player's position.
func (e *Engine) UseShortcut(ag *types.AgilityState, mv *types.MovementState, caps skill.Capability, r *rng.RNG, shortcutID string) (Outcome, error) {
	def, ok := e.obstacles[shortcutID]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: shortcut %q", errs.ErrUnknownCatalogEntry, shortcutID)
	}
	if ag.Course != "" || ag.BusySeconds > 0 {
		return Outcome{}, errs.ErrAlreadyEngaged
	}
	if ag.Level < def.Level {
		return Outcome{}, fmt.Errorf("%w: %s requires agility %d", errs.ErrLevelTooLow, def.Name, def.Level)
	}
	if err := caps.Check(def.Requirements); err != nil {
		return Outcome{}, err
	}

	var dest types.Coord
	switch {
	case adjacent(mv.Pos, def.From):
		dest = def.To
	case def.Bidirectional && adjacent(mv.Pos, def.To):
		dest = def.From
	default:
		return Outcome{}, fmt.Errorf("%w: not at the %s", errs.ErrRequirementsNotMet, def.Name)
	}

	out := Outcome{Obstacle: def.ID}
	ag.BusySeconds = def.Delay

	failRate := EffectiveFailRate(def.BaseFailRate, ag.Level, def.Level)
	if r.Chance(failRate) {
		out.Damage = r.Between(def.FailDamageMin, def.FailDamageMax)
		out.Message = fmt.Sprintf("You fail the %s and take %d damage.", def.Name, out.Damage)
		return out, nil
	}

	out.Success = true
	out.XP = def.XP
	out.LeveledTo = e.grantXP(ag, def.XP)
	mv.Area = def.Area
	mv.Pos = dest
	mv.Path = nil
	mv.StepProgress = 0
	out.Message = fmt.Sprintf("You use the %s. (+%.0f xp)", def.Name, def.XP)
	return out, nil
}

// Advance counts down the obstacle completion delay.
func (e *Engine) Advance(ag *types.AgilityState, dt float64) {
	ag.BusySeconds -= dt
	if ag.BusySeconds < 0 {
		ag.BusySeconds = 0
	}
}

// grantXP adds experience and rederives the level. Returns the new level
// if the award leveled the player, else 0. Level is never assigned
// directly anywhere else.
func (e *Engine) grantXP(ag *types.AgilityState, xp float64) int {
	ag.XP += xp
	level := skill.LevelForXP(ag.XP)
	if level > ag.Level {
		ag.Level = level
		return level
	}
	ag.Level = level
	return 0
}

// adjacent reports whether a is on or orthogonally/diagonally next to b on
// the same plane.
func adjacent(a, b types.Coord) bool {
	if a.Plane != b.Plane {
		return false
	}
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}
