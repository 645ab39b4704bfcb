package engine

import (
	"github.com/nathoo/runesim/engine/rng"
	"github.com/nathoo/runesim/engine/save"
	"github.com/nathoo/runesim/types"
)

// Capture snapshots a player session for persistence. The snapshot owns
// its maps; mutating the live session afterwards cannot corrupt it.
func (e *Engine) Capture(playerID string) *save.Snapshot {
	s := e.Session(playerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &save.Snapshot{
		Version:      save.Version,
		Player:       s.PlayerID,
		Clock:        s.Clock,
		Hitpoints:    s.Hitpoints,
		MaxHitpoints: s.MaxHitpoints,
		Stats:        copyMap(s.Stats),
		Quests:       copyMap(s.Quests),
		Items:        copyMap(s.Items),
		Move:         s.Move,
		Agility:      s.Agility,
		Prayer:       s.Prayer,
		Consume:      s.Consume,
		RNGSeed:      s.RNG.Seed(),
		RNGPosition:  s.RNG.Position(),
	}
	snap.Move.Path = append([]types.Coord(nil), s.Move.Path...)
	snap.Agility.LapCounts = copyMap(s.Agility.LapCounts)
	snap.Prayer.Active = copyPrayers(s.Prayer.Active)
	snap.Prayer.QuickSet = append([]string(nil), s.Prayer.QuickSet...)
	snap.Consume.Effects = copyEffects(s.Consume.Effects)
	snap.Consume.LastConsumed = copyMap(s.Consume.LastConsumed)
	return snap
}

// Restore replaces (or creates) a session from a snapshot, reseeding the
// RNG to the saved position so the roll stream continues exactly where it
// stopped.
func (e *Engine) Restore(snap *save.Snapshot) {
	s := e.Session(snap.Player)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Clock = snap.Clock
	s.Hitpoints = snap.Hitpoints
	s.MaxHitpoints = snap.MaxHitpoints
	s.Stats = copyMap(snap.Stats)
	s.Quests = copyMap(snap.Quests)
	s.Items = copyMap(snap.Items)
	s.Move = snap.Move
	s.Move.Path = append([]types.Coord(nil), snap.Move.Path...)
	s.Agility = snap.Agility
	s.Agility.LapCounts = copyMap(snap.Agility.LapCounts)
	s.Prayer = snap.Prayer
	s.Prayer.Active = copyPrayers(snap.Prayer.Active)
	s.Prayer.QuickSet = append([]string(nil), snap.Prayer.QuickSet...)
	s.Consume = snap.Consume
	s.Consume.Effects = copyEffects(snap.Consume.Effects)
	s.Consume.LastConsumed = copyMap(snap.Consume.LastConsumed)
	s.RNG = rng.Restore(snap.RNGSeed, snap.RNGPosition)
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPrayers(m map[string]*types.ActivePrayer) map[string]*types.ActivePrayer {
	out := make(map[string]*types.ActivePrayer, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func copyEffects(m map[string]*types.ActiveEffect) map[string]*types.ActiveEffect {
	out := make(map[string]*types.ActiveEffect, len(m))
	for k, v := range m {
		cp := *v
		cp.Boosts = copyMap(v.Boosts)
		cp.Tags = append([]types.EffectTag(nil), v.Tags...)
		out[k] = &cp
	}
	return out
}
