// Package combatcalc provides the combat formula primitives: combat level,
// max hit, accuracy, and damage reduction. Everything here is a pure
// function over snapshots of stats and bonuses; the turn loop that calls
// them lives outside the engine.
package combatcalc

import (
	"math"

	"github.com/nathoo/runesim/types"
)

// Style selects the attack style for max-hit calculation.
type Style int

const (
	StyleMelee Style = iota
	StyleRanged
	StyleMagic
)

// CombatLevel computes the composite combat level from a stat block:
// a base from defence, hitpoints, and half of prayer, plus the best of
// the melee, ranged, and magic terms.
func CombatLevel(stats types.CombatStats) int {
	base := 0.25 * float64(stats.Defence+stats.Hitpoints+int(math.Floor(float64(stats.Prayer)/2)))
	melee := 0.325 * float64(stats.Attack+stats.Strength)
	ranged := 0.325 * math.Floor(1.5*float64(stats.Ranged))
	magic := 0.325 * math.Floor(1.5*float64(stats.Magic))
	return int(math.Floor(base + math.Max(melee, math.Max(ranged, magic))))
}

// MaxHit computes the maximum possible hit for a style. Magic max hits
// scale directly with the (prayer-boosted) level; melee and ranged use
// the standard effective-level formula against the equipment bonus.
func MaxHit(style Style, level int, equipmentBonus int, prayerMultiplier float64, stanceBonus int) int {
	if style == StyleMagic {
		return int(math.Floor(float64(level) * prayerMultiplier))
	}
	effective := float64(level)*prayerMultiplier + float64(stanceBonus)
	return int(math.Floor(0.5 + effective*float64(64+equipmentBonus)/640))
}

// Accuracy computes the chance to hit from the attacker's and defender's
// rolls.
func Accuracy(attackLevel, attackBonus, defenceLevel, defenceBonus int) float64 {
	attackRoll := math.Floor(float64(attackLevel+8) * float64(64+attackBonus) / 64)
	defenceRoll := math.Floor(float64(defenceLevel+8) * float64(64+defenceBonus) / 64)
	if attackRoll > defenceRoll {
		return 1 - (defenceRoll+2)/(2*(attackRoll+1))
	}
	return attackRoll / (2 * defenceRoll)
}

// DamageReduction applies a protection prayer's percentage first, then a
// defence/armor-derived percentage, flooring after each step and clamping
// at zero. protection is the prayer's damage-reduction percentage (0–100);
// pass 0 when no protection prayer is active.
func DamageReduction(damage int, protection float64, defenceLevel, armorBonus int) int {
	reduced := float64(damage)
	if protection > 0 {
		reduced = math.Floor(reduced * (1 - protection/100))
	}
	armorPct := math.Floor(float64(defenceLevel)*0.3) + math.Floor(float64(armorBonus)*0.7)
	reduced = math.Floor(reduced * (1 - armorPct/100))
	if reduced < 0 {
		return 0
	}
	return int(reduced)
}
