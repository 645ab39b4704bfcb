// Package save implements JSON serialization and deserialization of a
// player's simulation state bundle.
package save

import (
	"encoding/json"

	"github.com/nathoo/runesim/types"
)

// Version is the current snapshot format version.
const Version = 1

// Snapshot is the JSON-serializable state of one player session.
type Snapshot struct {
	Version      int                   `json:"version"`
	Player       string                `json:"player"`
	Clock        float64               `json:"clock"`
	Hitpoints    int                   `json:"hitpoints"`
	MaxHitpoints int                   `json:"max_hitpoints"`
	Stats        map[types.Stat]int    `json:"stats"`
	Quests       map[string]bool       `json:"quests"`
	Items        map[string]bool       `json:"items"`
	Move         types.MovementState   `json:"move"`
	Agility      types.AgilityState    `json:"agility"`
	Prayer       types.PrayerState     `json:"prayer"`
	Consume      types.ConsumableState `json:"consume"`
	RNGSeed      int64                 `json:"rng_seed"`
	RNGPosition  int64                 `json:"rng_position"`
}

// Encode serializes a snapshot to JSON bytes.
func Encode(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode deserializes JSON bytes into a Snapshot, normalizing nil maps so
// restored state is always usable.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Stats == nil {
		s.Stats = map[types.Stat]int{}
	}
	if s.Quests == nil {
		s.Quests = map[string]bool{}
	}
	if s.Items == nil {
		s.Items = map[string]bool{}
	}
	if s.Agility.LapCounts == nil {
		s.Agility.LapCounts = map[string]int{}
	}
	if s.Prayer.Active == nil {
		s.Prayer.Active = map[string]*types.ActivePrayer{}
	}
	if s.Consume.Effects == nil {
		s.Consume.Effects = map[string]*types.ActiveEffect{}
	}
	if s.Consume.LastConsumed == nil {
		s.Consume.LastConsumed = map[string]float64{}
	}
	return &s, nil
}
