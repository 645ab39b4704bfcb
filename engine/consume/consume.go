// Package consume manages food and potion consumption: per-item and global
// cooldowns, timed effect stacking, and the auto-renewing divine effects.
// Catalog entries are shared immutable templates; every timestamp and
// remaining duration lives in the per-player state.
package consume

import (
	"fmt"

	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/types"
)

const (
	// FoodGate is the global cooldown between non-combo foods, seconds.
	FoodGate = 1.8

	// Divine effects recharge on a fixed period instead of expiring.
	divinePeriod = 5.0 // minutes
)

// Engine resolves consumption against the immutable catalog.
type Engine struct {
	items map[string]*types.ConsumableDef
}

// NewEngine creates an engine over the loaded consumable catalog.
func NewEngine(items map[string]*types.ConsumableDef) *Engine {
	return &Engine{items: items}
}

// Item returns a catalog entry by ID.
func (e *Engine) Item(id string) (*types.ConsumableDef, bool) {
	def, ok := e.items[id]
	return def, ok
}

// ConsumeFood eats a food item. The item's own cooldown always applies;
// non-combo food is additionally gated by the global 1.8 s food cooldown.
// On success both gates are stamped and the effect payload is returned.
func (e *Engine) ConsumeFood(cs *types.ConsumableState, id string, now float64) (*types.ConsumableEffect, error) {
	def, ok := e.items[id]
	if !ok || def.Kind != types.KindFood {
		return nil, fmt.Errorf("%w: food %q", errs.ErrUnknownCatalogEntry, id)
	}
	if last, ok := cs.LastConsumed[id]; ok && def.Effect.Cooldown > 0 && now-last < def.Effect.Cooldown {
		return nil, fmt.Errorf("%w: %s", errs.ErrOnCooldown, def.Name)
	}
	if !def.Effect.Combo && cs.AteFood && now-cs.LastFoodAt < FoodGate {
		return nil, fmt.Errorf("%w: you eat too fast", errs.ErrOnCooldown)
	}
	if cs.LastConsumed == nil {
		cs.LastConsumed = map[string]float64{}
	}
	cs.LastConsumed[id] = now
	if !def.Effect.Combo {
		cs.LastFoodAt = now
		cs.AteFood = true
	}
	effect := def.Effect
	return &effect, nil
}

// ConsumePotion drinks a potion. Timed effects are stored keyed by item;
// a divine effect removes any other active divine effect first, since
// divine potions are mutually exclusive with each other. Zero-duration
// effects apply once and are not tracked.
func (e *Engine) ConsumePotion(cs *types.ConsumableState, id string, now float64) (*types.ConsumableEffect, error) {
	def, ok := e.items[id]
	if !ok || def.Kind != types.KindPotion {
		return nil, fmt.Errorf("%w: potion %q", errs.ErrUnknownCatalogEntry, id)
	}
	if last, ok := cs.LastConsumed[id]; ok && def.Effect.Cooldown > 0 && now-last < def.Effect.Cooldown {
		return nil, fmt.Errorf("%w: %s", errs.ErrOnCooldown, def.Name)
	}
	if cs.LastConsumed == nil {
		cs.LastConsumed = map[string]float64{}
	}
	cs.LastConsumed[id] = now

	effect := def.Effect
	if effect.Duration > 0 {
		if hasTag(effect.Tags, types.TagDivine) {
			for otherID, other := range cs.Effects {
				if hasTag(other.Tags, types.TagDivine) {
					delete(cs.Effects, otherID)
				}
			}
		}
		if cs.Effects == nil {
			cs.Effects = map[string]*types.ActiveEffect{}
		}
		cs.Effects[id] = &types.ActiveEffect{
			Item:      id,
			Remaining: effect.Duration,
			Boosts:    effect.Boosts,
			Tags:      effect.Tags,
		}
	}
	return &effect, nil
}

// UpdateEffects advances every active effect by deltaMinutes. Expired
// effects are removed, except divine effects, whose remaining duration
// wraps via modulo instead of disappearing: they recharge rather than
// expire while active.
func (e *Engine) UpdateEffects(cs *types.ConsumableState, deltaMinutes float64) {
	for id, eff := range cs.Effects {
		eff.Remaining -= deltaMinutes
		if eff.Remaining > 0 {
			continue
		}
		if hasTag(eff.Tags, types.TagDivine) {
			eff.Remaining = rechargeWrap(eff.Remaining)
			continue
		}
		delete(cs.Effects, id)
	}
}

// rechargeWrap maps a non-positive remaining duration back into
// (0, divinePeriod] by modulo, matching the observed divine recharge
// behavior.
func rechargeWrap(remaining float64) float64 {
	for remaining <= 0 {
		remaining += divinePeriod
	}
	return remaining
}

// CombinedBoosts aggregates active effects: each stat takes the maximum
// boost across sources (boosts do not stack additively), and the special
// tags form a union.
func (e *Engine) CombinedBoosts(cs *types.ConsumableState) (map[types.Stat]int, []types.EffectTag) {
	boosts := map[types.Stat]int{}
	seen := map[types.EffectTag]bool{}
	var tags []types.EffectTag
	for _, eff := range cs.Effects {
		for stat, boost := range eff.Boosts {
			if boost > boosts[stat] {
				boosts[stat] = boost
			}
		}
		for _, t := range eff.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return boosts, tags
}

func hasTag(tags []types.EffectTag, want types.EffectTag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
