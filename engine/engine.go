// Package engine provides the orchestrator that wires the world model,
// pathfinder, and the movement, agility, prayer, and consumable engines
// into per-player sessions driven by a simulated clock.
package engine

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/nathoo/runesim/engine/agility"
	"github.com/nathoo/runesim/engine/combatcalc"
	"github.com/nathoo/runesim/engine/consume"
	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/engine/movement"
	"github.com/nathoo/runesim/engine/path"
	"github.com/nathoo/runesim/engine/prayer"
	"github.com/nathoo/runesim/engine/rng"
	"github.com/nathoo/runesim/engine/skill"
	"github.com/nathoo/runesim/engine/world"
	"github.com/nathoo/runesim/types"
)

// Engine holds the immutable catalog and all live player sessions.
// Catalog data is safe for concurrent reads; each session is guarded by
// its own lock, so one player's commands never block another's.
type Engine struct {
	defs    *types.Defs
	world   *world.Model
	move    *movement.Controller
	agility *agility.Engine
	prayer  *prayer.Engine
	consume *consume.Engine

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Session is one player's complete state bundle. Single-writer: only the
// owning player's command stream (and the tick pump) mutates it.
type Session struct {
	mu sync.Mutex

	PlayerID     string
	Clock        float64 // simulated seconds since session start
	Hitpoints    int
	MaxHitpoints int
	Stats        map[types.Stat]int // base levels; agility lives in Agility.Level
	Quests       map[string]bool
	Items        map[string]bool

	Move    types.MovementState
	Agility types.AgilityState
	Prayer  types.PrayerState
	Consume types.ConsumableState

	RNG *rng.RNG
}

// New creates an engine over a loaded catalog.
func New(defs *types.Defs) *Engine {
	w := world.New(defs.Areas)
	finder := path.NewFinder(w)
	return &Engine{
		defs:     defs,
		world:    w,
		move:     movement.NewController(w, finder, defs.Obstacles),
		agility:  agility.NewEngine(defs.Obstacles, defs.Courses),
		prayer:   prayer.NewEngine(defs.Prayers),
		consume:  consume.NewEngine(defs.Consumables),
		sessions: map[string]*Session{},
	}
}

// Defs returns the immutable catalog.
func (e *Engine) Defs() *types.Defs { return e.defs }

// World returns the read-only world model.
func (e *Engine) World() *world.Model { return e.world }

// Session returns the player's session, creating a fresh one on first use.
func (e *Engine) Session(playerID string) *Session {
	e.mu.RLock()
	s, ok := e.sessions[playerID]
	e.mu.RUnlock()
	if ok {
		return s
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok = e.sessions[playerID]; ok {
		return s
	}
	s = e.newSession(playerID)
	e.sessions[playerID] = s
	return s
}

// newSession builds the default state bundle for a new player. The RNG
// seed is derived from the world seed and player ID, so a rebuilt engine
// reproduces every roll.
func (e *Engine) newSession(playerID string) *Session {
	h := fnv.New64a()
	h.Write([]byte(playerID))
	seed := e.defs.World.Seed ^ int64(h.Sum64())

	stats := map[types.Stat]int{
		types.StatAttack:    1,
		types.StatStrength:  1,
		types.StatDefence:   1,
		types.StatRanged:    1,
		types.StatMagic:     1,
		types.StatHitpoints: 10,
		types.StatPrayer:    1,
	}
	return &Session{
		PlayerID:     playerID,
		Hitpoints:    10,
		MaxHitpoints: 10,
		Stats:        stats,
		Quests:       map[string]bool{},
		Items:        map[string]bool{},
		Move: types.MovementState{
			Area:      e.defs.World.StartArea,
			Pos:       e.defs.World.Start,
			RunEnergy: 100,
		},
		Agility: types.AgilityState{
			Level:     1,
			LapCounts: map[string]int{},
		},
		Prayer: types.PrayerState{
			Points: float64(stats[types.StatPrayer]),
			Active: map[string]*types.ActivePrayer{},
			Book:   types.BookNormal,
		},
		Consume: types.ConsumableState{
			Effects:      map[string]*types.ActiveEffect{},
			LastConsumed: map[string]float64{},
		},
		RNG: rng.New(seed),
	}
}

// RemoveSession drops a player's session, abandoning any active course
// first so a disconnect never grants completion rewards.
func (e *Engine) RemoveSession(playerID string) {
	e.mu.Lock()
	s, ok := e.sessions[playerID]
	delete(e.sessions, playerID)
	e.mu.Unlock()
	if ok {
		s.mu.Lock()
		_ = e.agility.Abandon(&s.Agility)
		s.mu.Unlock()
	}
}

// caps snapshots the session's gating state for requirement checks.
// Call with the session lock held.
func (e *Engine) caps(s *Session) skill.Capability {
	levels := make(map[types.Stat]int, len(s.Stats)+1)
	for stat, lvl := range s.Stats {
		levels[stat] = lvl
	}
	levels[types.StatAgility] = s.Agility.Level
	return skill.Capability{Levels: levels, Quests: s.Quests, Items: s.Items}
}

// MoveTo plans and begins a move to the destination tile.
func (e *Engine) MoveTo(playerID string, dest types.Coord) error {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Agility.Course != "" {
		return fmt.Errorf("%w: abandon the course first", errs.ErrAlreadyEngaged)
	}
	return e.move.MoveTo(&s.Move, e.caps(s), dest)
}

// CancelMove abandons the current path, leaving the player on the last
// fully arrived tile.
func (e *Engine) CancelMove(playerID string) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	e.move.Cancel(&s.Move)
}

// ToggleRun flips the run flag.
func (e *Engine) ToggleRun(playerID string) (bool, error) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := e.move.ToggleRun(&s.Move); err != nil {
		return s.Move.Running, err
	}
	return s.Move.Running, nil
}

// RestoreRunEnergy adds run energy, clamped to [0, 100].
func (e *Engine) RestoreRunEnergy(playerID string, amount float64) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	e.move.RestoreEnergy(&s.Move, amount)
}

// AvailableShortcuts lists the usable shortcuts orthogonally adjacent to
// the player's position.
func (e *Engine) AvailableShortcuts(playerID string) []types.Shortcut {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.move.AvailableShortcuts(s.Move.Area, s.Move.Pos, e.caps(s))
}

// StartCourse engages an agility course.
func (e *Engine) StartCourse(playerID, courseID string) error {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.agility.StartCourse(&s.Agility, e.caps(s), courseID)
}

// AbandonCourse leaves the active course without completion rewards.
func (e *Engine) AbandonCourse(playerID string) error {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.agility.Abandon(&s.Agility)
}

// AttemptObstacle resolves the current course obstacle, applying any fail
// damage to the player's hitpoints.
func (e *Engine) AttemptObstacle(playerID string) (agility.Outcome, error) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := e.agility.AttemptObstacle(&s.Agility, &s.Move, s.RNG)
	if err == nil && out.Damage > 0 {
		e.applyDamage(s, out.Damage)
	}
	return out, err
}

// UseShortcut resolves a standalone shortcut, applying any fail damage.
func (e *Engine) UseShortcut(playerID, shortcutID string) (agility.Outcome, error) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := e.agility.UseShortcut(&s.Agility, &s.Move, e.caps(s), s.RNG, shortcutID)
	if err == nil && out.Damage > 0 {
		e.applyDamage(s, out.Damage)
	}
	return out, err
}

func (e *Engine) applyDamage(s *Session, damage int) {
	s.Hitpoints -= damage
	if s.Hitpoints < 0 {
		s.Hitpoints = 0
	}
}

// ActivatePrayer turns a prayer on; with flick it counts toward bonuses
// for the flick window without draining points.
func (e *Engine) ActivatePrayer(playerID, prayerID string, flick bool) error {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.prayer.Activate(&s.Prayer, prayerID, s.Stats[types.StatPrayer], flick, s.Clock)
}

// DeactivatePrayer turns a prayer off.
func (e *Engine) DeactivatePrayer(playerID, prayerID string) error {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.prayer.Deactivate(&s.Prayer, prayerID)
}

// SwitchPrayerBook deactivates everything and switches books.
func (e *Engine) SwitchPrayerBook(playerID string, book types.PrayerBook) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	e.prayer.SwitchBook(&s.Prayer, book)
}

// SetQuickPrayers configures the quick-prayer set.
func (e *Engine) SetQuickPrayers(playerID string, prayerIDs []string) error {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.prayer.SetQuickPrayers(&s.Prayer, prayerIDs)
}

// ToggleQuickPrayers toggles the configured set atomically.
func (e *Engine) ToggleQuickPrayers(playerID string) (bool, error) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.prayer.ToggleQuickPrayers(&s.Prayer, s.Stats[types.StatPrayer], s.Clock)
}

// ConsumeFood eats a food item, healing hitpoints and restoring prayer
// points per the effect payload.
func (e *Engine) ConsumeFood(playerID, itemID string) (*types.ConsumableEffect, error) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := e.checkConsumableLevel(s, itemID); err != nil {
		return nil, err
	}
	effect, err := e.consume.ConsumeFood(&s.Consume, itemID, s.Clock)
	if err != nil {
		return nil, err
	}
	e.applyInstant(s, effect)
	return effect, nil
}

// ConsumePotion drinks a potion; timed effects are tracked by the
// consumable engine, instantaneous parts apply immediately.
func (e *Engine) ConsumePotion(playerID, itemID string) (*types.ConsumableEffect, error) {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := e.checkConsumableLevel(s, itemID); err != nil {
		return nil, err
	}
	effect, err := e.consume.ConsumePotion(&s.Consume, itemID, s.Clock)
	if err != nil {
		return nil, err
	}
	e.applyInstant(s, effect)
	return effect, nil
}

// checkConsumableLevel gates an item on the player's combat level.
func (e *Engine) checkConsumableLevel(s *Session, itemID string) error {
	def, ok := e.consume.Item(itemID)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownCatalogEntry, itemID)
	}
	if def.Level <= 1 {
		return nil
	}
	cl := combatcalc.CombatLevel(types.CombatStats{
		Attack:    s.Stats[types.StatAttack],
		Strength:  s.Stats[types.StatStrength],
		Defence:   s.Stats[types.StatDefence],
		Ranged:    s.Stats[types.StatRanged],
		Magic:     s.Stats[types.StatMagic],
		Hitpoints: s.Stats[types.StatHitpoints],
		Prayer:    s.Stats[types.StatPrayer],
	})
	if cl < def.Level {
		return fmt.Errorf("%w: %s requires combat level %d", errs.ErrLevelTooLow, def.Name, def.Level)
	}
	return nil
}

// applyInstant applies the instantaneous parts of a consumable effect.
func (e *Engine) applyInstant(s *Session, effect *types.ConsumableEffect) {
	if effect.Heal > 0 {
		s.Hitpoints += effect.Heal
		if s.Hitpoints > s.MaxHitpoints {
			s.Hitpoints = s.MaxHitpoints
		}
	}
	if effect.PrayerRestore > 0 {
		e.prayer.RestorePoints(&s.Prayer, effect.PrayerRestore)
	}
}

// BonusSnapshot is the current buff state handed to an external combat
// loop: prayer factors plus the strongest consumable boost per stat.
type BonusSnapshot struct {
	Prayer types.PrayerBonus
	Boosts map[types.Stat]int
	Tags   []types.EffectTag
}

// Bonuses snapshots the player's combined prayer and consumable bonuses.
func (e *Engine) Bonuses(playerID string) BonusSnapshot {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	boosts, tags := e.consume.CombinedBoosts(&s.Consume)
	return BonusSnapshot{
		Prayer: e.prayer.CombinedBonuses(&s.Prayer, s.Clock),
		Boosts: boosts,
		Tags:   tags,
	}
}

// Advance moves simulated time forward for every session: in-flight paths
// step tile-by-tile, obstacle delays count down, prayer points drain, and
// consumable effects tick. Sessions advance in player-ID order so a full
// tick is deterministic.
func (e *Engine) Advance(dtSeconds float64) {
	e.mu.RLock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Strings(ids)

	for _, id := range ids {
		e.mu.RLock()
		s, ok := e.sessions[id]
		e.mu.RUnlock()
		if !ok {
			continue
		}
		s.mu.Lock()
		e.advanceSession(s, dtSeconds)
		s.mu.Unlock()
	}
}

func (e *Engine) advanceSession(s *Session, dt float64) {
	s.Clock += dt
	e.move.Advance(&s.Move, dt)
	e.agility.Advance(&s.Agility, dt)
	e.prayer.UpdatePoints(&s.Prayer, dt/60, s.Clock)
	e.consume.UpdateEffects(&s.Consume, dt/60)
}
