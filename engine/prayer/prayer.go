// Package prayer manages the prayer point pool, mutually exclusive buff
// activation, flick timing, and combined bonus aggregation. All timing is
// simulated: callers pass the current sim-time in seconds, never a wall
// clock.
package prayer

import (
	"fmt"
	"strings"

	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/types"
)

const (
	// FlickWindow is how long a flick-activated prayer counts toward
	// bonuses, in seconds. A precision-timing invariant, not a timeout.
	FlickWindow = 0.6

	maxPoints = 99.0
)

// Category is a prayer conflict group. At most one prayer per category may
// be active; overhead prayers form their own mutually exclusive slot on
// top of this.
type Category string

const (
	CatMeleeAccuracy Category = "melee-accuracy"
	CatMeleeStrength Category = "melee-strength"
	CatMeleeAll      Category = "melee-all"
	CatRanged        Category = "ranged"
	CatMagic         Category = "magic"
)

var namedCategories = map[string]Category{
	"clarity of thought":  CatMeleeAccuracy,
	"improved reflexes":   CatMeleeAccuracy,
	"incredible reflexes": CatMeleeAccuracy,
	"burst of strength":   CatMeleeStrength,
	"superhuman strength": CatMeleeStrength,
	"ultimate strength":   CatMeleeStrength,
	"sharp eye":           CatRanged,
	"hawk eye":            CatRanged,
	"eagle eye":           CatRanged,
	"rigour":              CatRanged,
	"mystic will":         CatMagic,
	"mystic lore":         CatMagic,
	"mystic might":        CatMagic,
	"augury":              CatMagic,
	"chivalry":            CatMeleeAll,
	"piety":               CatMeleeAll,
	"turmoil":             CatMeleeAll,
}

// CategoryOf derives a prayer's conflict category from its name. Leech and
// sap prayers conflict per drained stat; unknown prayers fall back to a
// category of their own, conflicting with nothing but themselves.
func CategoryOf(def *types.PrayerDef) Category {
	name := strings.ToLower(def.Name)
	if cat, ok := namedCategories[name]; ok {
		return cat
	}
	if stat, ok := strings.CutPrefix(name, "leech "); ok {
		return Category("leech-" + stat)
	}
	if stat, ok := strings.CutPrefix(name, "sap "); ok {
		return Category("leech-" + stat)
	}
	return Category("solo:" + def.ID)
}

// Engine resolves prayer activation against the immutable catalog.
type Engine struct {
	prayers map[string]*types.PrayerDef
}

// NewEngine creates an engine over the loaded prayer catalog.
func NewEngine(prayers map[string]*types.PrayerDef) *Engine {
	return &Engine{prayers: prayers}
}

// Prayer returns a catalog entry by ID.
func (e *Engine) Prayer(id string) (*types.PrayerDef, bool) {
	def, ok := e.prayers[id]
	return def, ok
}

// conflicts reports whether two prayers cannot be active together:
// overheads conflict with every other overhead, non-overheads within the
// same category.
func conflicts(a, b *types.PrayerDef) bool {
	if a.Overhead && b.Overhead {
		return true
	}
	if !a.Overhead && !b.Overhead {
		return CategoryOf(a) == CategoryOf(b)
	}
	return false
}

// CanActivate checks whether a prayer could be activated right now.
// Activating purely for a flick is allowed on an empty point pool.
func (e *Engine) CanActivate(ps *types.PrayerState, id string, level int, forFlick bool) error {
	def, ok := e.prayers[id]
	if !ok {
		return fmt.Errorf("%w: prayer %q", errs.ErrUnknownCatalogEntry, id)
	}
	if def.Book != ps.Book {
		return fmt.Errorf("%w: %s is not on the active prayer book", errs.ErrRequirementsNotMet, def.Name)
	}
	if level < def.Level {
		return fmt.Errorf("%w: %s requires prayer %d", errs.ErrLevelTooLow, def.Name, def.Level)
	}
	if !forFlick && ps.Points <= 0 {
		return errs.ErrInsufficientPrayerPoints
	}
	for otherID := range ps.Active {
		if otherID == id {
			continue
		}
		other, ok := e.prayers[otherID]
		if ok && conflicts(def, other) {
			return fmt.Errorf("%w: %s conflicts with %s", errs.ErrConflictingEffectActive, def.Name, other.Name)
		}
	}
	return nil
}

// Activate turns a prayer on, deactivating any conflicting prayers first.
// With forFlick the activation records a timestamp and draws no points;
// its bonus counts only while the flick window is open.
func (e *Engine) Activate(ps *types.PrayerState, id string, level int, forFlick bool, now float64) error {
	def, ok := e.prayers[id]
	if !ok {
		return fmt.Errorf("%w: prayer %q", errs.ErrUnknownCatalogEntry, id)
	}
	if def.Book != ps.Book {
		return fmt.Errorf("%w: %s is not on the active prayer book", errs.ErrRequirementsNotMet, def.Name)
	}
	if level < def.Level {
		return fmt.Errorf("%w: %s requires prayer %d", errs.ErrLevelTooLow, def.Name, def.Level)
	}
	if !forFlick && ps.Points <= 0 {
		return errs.ErrInsufficientPrayerPoints
	}
	for otherID := range ps.Active {
		if otherID == id {
			continue
		}
		if other, ok := e.prayers[otherID]; ok && conflicts(def, other) {
			delete(ps.Active, otherID)
		}
	}
	if ps.Active == nil {
		ps.Active = map[string]*types.ActivePrayer{}
	}
	ap := &types.ActivePrayer{}
	if forFlick {
		ap.Flick = true
		ap.FlickedAt = now
	}
	ps.Active[id] = ap
	return nil
}

// Deactivate turns a prayer off. Deactivating an inactive prayer is a
// no-op; an unknown ID is an error.
func (e *Engine) Deactivate(ps *types.PrayerState, id string) error {
	if _, ok := e.prayers[id]; !ok {
		return fmt.Errorf("%w: prayer %q", errs.ErrUnknownCatalogEntry, id)
	}
	delete(ps.Active, id)
	return nil
}

// SwitchBook deactivates every prayer, then switches books. Switching to
// the current book is a no-op that keeps prayers lit.
func (e *Engine) SwitchBook(ps *types.PrayerState, book types.PrayerBook) {
	if ps.Book == book {
		return
	}
	ps.Active = map[string]*types.ActivePrayer{}
	ps.Book = book
}

// SetQuickPrayers configures the quick-prayer set.
func (e *Engine) SetQuickPrayers(ps *types.PrayerState, ids []string) error {
	for _, id := range ids {
		if _, ok := e.prayers[id]; !ok {
			return fmt.Errorf("%w: prayer %q", errs.ErrUnknownCatalogEntry, id)
		}
	}
	ps.QuickSet = append([]string(nil), ids...)
	return nil
}

// ToggleQuickPrayers activates or deactivates the configured set as one
// atomic operation. If any prayer in the set fails its activation check
// the whole toggle fails and every prayer is left off. Returns whether
// the set is on after the call.
func (e *Engine) ToggleQuickPrayers(ps *types.PrayerState, level int, now float64) (bool, error) {
	if len(ps.QuickSet) == 0 {
		return false, fmt.Errorf("%w: no quick prayers configured", errs.ErrRequirementsNotMet)
	}
	for _, id := range ps.QuickSet {
		if _, active := ps.Active[id]; active {
			ps.Active = map[string]*types.ActivePrayer{}
			return false, nil
		}
	}
	ps.Active = map[string]*types.ActivePrayer{}
	for _, id := range ps.QuickSet {
		if err := e.Activate(ps, id, level, false, now); err != nil {
			ps.Active = map[string]*types.ActivePrayer{}
			return false, err
		}
	}
	return true, nil
}

// CombinedBonuses aggregates the active prayers: multiplicative factors
// multiply together, additive protection/leech/smite take the maximum.
// Flicked prayers whose window has expired contribute nothing.
func (e *Engine) CombinedBonuses(ps *types.PrayerState, now float64) types.PrayerBonus {
	out := types.PrayerBonus{Attack: 1, Strength: 1, Defence: 1, Ranged: 1, Magic: 1}
	for id, ap := range ps.Active {
		if ap.Flick && now-ap.FlickedAt > FlickWindow {
			continue
		}
		def, ok := e.prayers[id]
		if !ok {
			continue
		}
		b := def.Bonus
		out.Attack *= factor(b.Attack)
		out.Strength *= factor(b.Strength)
		out.Defence *= factor(b.Defence)
		out.Ranged *= factor(b.Ranged)
		out.Magic *= factor(b.Magic)
		out.Protection = max(out.Protection, b.Protection)
		out.Leech = max(out.Leech, b.Leech)
		out.Smite = max(out.Smite, b.Smite)
	}
	return out
}

// factor treats an unset multiplicative field as neutral.
func factor(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// UpdatePoints advances the drain clock by deltaMinutes. Expired flicks
// are deactivated, the summed drain of non-flicking prayers is subtracted
// (clamped at zero), and an emptied pool deactivates every prayer in the
// same call.
func (e *Engine) UpdatePoints(ps *types.PrayerState, deltaMinutes, now float64) {
	drain := 0.0
	for id, ap := range ps.Active {
		if ap.Flick {
			if now-ap.FlickedAt > FlickWindow {
				delete(ps.Active, id)
			}
			continue
		}
		if def, ok := e.prayers[id]; ok {
			drain += def.DrainRate
		}
	}
	if drain == 0 {
		return
	}
	ps.Points -= drain * deltaMinutes
	if ps.Points <= 0 {
		ps.Points = 0
		ps.Active = map[string]*types.ActivePrayer{}
	}
}

// RestorePoints adds prayer points, clamped to [0, 99].
func (e *Engine) RestorePoints(ps *types.PrayerState, amount float64) {
	ps.Points += amount
	if ps.Points > maxPoints {
		ps.Points = maxPoints
	}
	if ps.Points < 0 {
		ps.Points = 0
	}
}
