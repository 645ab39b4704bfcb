package combatcalc

import (
	"math"
	"testing"

	"github.com/nathoo/runesim/types"
)

func TestCombatLevel_KnownBuilds(t *testing.T) {
	tests := []struct {
		name  string
		stats types.CombatStats
		want  int
	}{
		{
			"fresh account",
			types.CombatStats{Attack: 1, Strength: 1, Defence: 1, Ranged: 1, Magic: 1, Hitpoints: 10, Prayer: 1},
			3,
		},
		{
			"maxed melee",
			types.CombatStats{Attack: 99, Strength: 99, Defence: 99, Ranged: 1, Magic: 1, Hitpoints: 99, Prayer: 99},
			126,
		},
		{
			"maxed everything",
			types.CombatStats{Attack: 99, Strength: 99, Defence: 99, Ranged: 99, Magic: 99, Hitpoints: 99, Prayer: 99},
			126,
		},
		{
			"ranged tank",
			types.CombatStats{Attack: 1, Strength: 1, Defence: 99, Ranged: 99, Magic: 1, Hitpoints: 99, Prayer: 99},
			109,
		},
	}
	for _, tt := range tests {
		if got := CombatLevel(tt.stats); got != tt.want {
			t.Errorf("%s: CombatLevel = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCombatLevel_BestStyleWins(t *testing.T) {
	fresh := types.CombatStats{Attack: 1, Strength: 1, Defence: 1, Ranged: 1, Magic: 1, Hitpoints: 10, Prayer: 1}
	mage := fresh
	mage.Magic = 94
	if CombatLevel(mage) <= CombatLevel(fresh) {
		t.Error("magic term did not raise the combat level")
	}
	ranger := fresh
	ranger.Ranged = 94
	if CombatLevel(ranger) != CombatLevel(mage) {
		t.Errorf("symmetric ranged/magic builds differ: %d vs %d", CombatLevel(ranger), CombatLevel(mage))
	}
}

func TestMaxHit_Melee(t *testing.T) {
	if got := MaxHit(StyleMelee, 99, 0, 1.0, 0); got != 10 {
		t.Errorf("bare-handed 99 strength max hit = %d, want 10", got)
	}
	if got := MaxHit(StyleMelee, 99, 100, 1.23, 3); got != 32 {
		t.Errorf("geared pious max hit = %d, want 32", got)
	}
	// Prayer multiplies the level before the stance bonus is added.
	withPrayer := MaxHit(StyleMelee, 80, 80, 1.1, 0)
	without := MaxHit(StyleMelee, 80, 80, 1.0, 0)
	if withPrayer <= without {
		t.Errorf("prayer multiplier had no effect: %d vs %d", withPrayer, without)
	}
}

func TestMaxHit_Magic(t *testing.T) {
	if got := MaxHit(StyleMagic, 99, 0, 1.25, 0); got != 123 {
		t.Errorf("boosted magic max hit = %d, want floor(99*1.25)", got)
	}
	// Magic ignores equipment and stance entirely.
	if MaxHit(StyleMagic, 70, 200, 1.0, 50) != 70 {
		t.Error("magic max hit used equipment or stance bonus")
	}
}

func TestAccuracy_Behavior(t *testing.T) {
	// Equal rolls give exactly 50%.
	if got := Accuracy(50, 0, 50, 0); got != 0.5 {
		t.Errorf("equal rolls accuracy = %v, want 0.5", got)
	}

	strong := Accuracy(99, 0, 1, 0)
	if want := 1 - 11.0/216.0; math.Abs(strong-want) > 1e-12 {
		t.Errorf("overwhelming attacker accuracy = %v, want %v", strong, want)
	}

	weak := Accuracy(1, 0, 99, 0)
	if want := 9.0 / 214.0; math.Abs(weak-want) > 1e-12 {
		t.Errorf("overwhelmed attacker accuracy = %v, want %v", weak, want)
	}

	if strong <= weak {
		t.Error("accuracy not monotonic in attacker strength")
	}
}

func TestAccuracy_BonusesCount(t *testing.T) {
	base := Accuracy(50, 0, 50, 0)
	if got := Accuracy(50, 60, 50, 0); got <= base {
		t.Errorf("attack bonus lowered accuracy: %v <= %v", got, base)
	}
	if got := Accuracy(50, 0, 50, 60); got >= base {
		t.Errorf("defence bonus raised accuracy: %v >= %v", got, base)
	}
}

func TestDamageReduction_Behavior(t *testing.T) {
	tests := []struct {
		name       string
		damage     int
		protection float64
		defence    int
		armor      int
		want       int
	}{
		{"no mitigation", 30, 0, 0, 0, 30},
		{"full protection zeroes", 30, 100, 50, 50, 0},
		{"armor only", 30, 0, 50, 20, 21},
		{"protection only", 30, 25, 0, 0, 22},
		{"protection then armor", 40, 50, 10, 10, 18},
		{"zero damage stays zero", 0, 50, 99, 99, 0},
	}
	for _, tt := range tests {
		got := DamageReduction(tt.damage, tt.protection, tt.defence, tt.armor)
		if got != tt.want {
			t.Errorf("%s: DamageReduction(%d, %v, %d, %d) = %d, want %d",
				tt.name, tt.damage, tt.protection, tt.defence, tt.armor, got, tt.want)
		}
	}
}
