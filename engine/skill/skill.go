// Package skill implements the experience curve, level derivation, and the
// requirement gates attached to connections, obstacles, and courses.
package skill

import (
	"fmt"
	"math"

	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/types"
)

// MaxLevel is the skill level cap.
const MaxLevel = 99

// xpTable[l] is the cumulative experience required to reach level l.
// xpTable[1] == 0.
var xpTable [MaxLevel + 1]float64

func init() {
	points := 0.0
	for l := 1; l <= MaxLevel; l++ {
		xpTable[l] = math.Floor(points / 4)
		points += math.Floor(float64(l) + 300*math.Pow(2, float64(l)/7))
	}
}

// XPForLevel returns the cumulative experience required for a level.
// Levels are clamped to [1, MaxLevel].
func XPForLevel(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return xpTable[level]
}

// LevelForXP derives the level for a cumulative experience total.
// The result is always in [1, MaxLevel]; level is never stored, only derived.
func LevelForXP(xp float64) int {
	for l := MaxLevel; l > 1; l-- {
		if xp >= xpTable[l] {
			return l
		}
	}
	return 1
}

// Capability is the snapshot of a player's gating state used when
// evaluating requirements. It is read-only to the evaluator.
type Capability struct {
	Levels map[types.Stat]int
	Quests map[string]bool
	Items  map[string]bool
}

// Level returns the player's level in a stat, defaulting to 1.
func (c Capability) Level(s types.Stat) int {
	if l, ok := c.Levels[s]; ok {
		return l
	}
	return 1
}

// Check evaluates a requirement list. Skill gates fail with ErrLevelTooLow,
// quest and item gates with ErrRequirementsNotMet. An empty list passes.
func (c Capability) Check(reqs []types.Requirement) error {
	for _, r := range reqs {
		switch r.Kind {
		case types.ReqSkill:
			if c.Level(r.Skill) < r.Level {
				return fmt.Errorf("%w: requires level %d", errs.ErrLevelTooLow, r.Level)
			}
		case types.ReqQuest:
			if !c.Quests[r.Quest] {
				return fmt.Errorf("%w: requires quest %q", errs.ErrRequirementsNotMet, r.Quest)
			}
		case types.ReqItem:
			if !c.Items[r.Item] {
				return fmt.Errorf("%w: requires item %q", errs.ErrRequirementsNotMet, r.Item)
			}
		}
	}
	return nil
}

// Meets reports whether every requirement passes.
func (c Capability) Meets(reqs []types.Requirement) bool {
	return c.Check(reqs) == nil
}
