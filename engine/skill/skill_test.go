package skill

import (
	"errors"
	"testing"

	"github.com/nathoo/runesim/engine/errs"
	"github.com/nathoo/runesim/types"
)

func TestXPForLevel_KnownValues(t *testing.T) {
	tests := []struct {
		level int
		xp    float64
	}{
		{1, 0},
		{2, 83},
		{3, 174},
		{10, 1154},
		{50, 101333},
		{92, 6517253},
		{99, 13034431},
	}
	for _, tt := range tests {
		if got := XPForLevel(tt.level); got != tt.xp {
			t.Errorf("XPForLevel(%d) = %v, want %v", tt.level, got, tt.xp)
		}
	}
}

func TestXPForLevel_ClampsOutOfRange(t *testing.T) {
	if got := XPForLevel(0); got != 0 {
		t.Errorf("XPForLevel(0) = %v, want 0", got)
	}
	if got := XPForLevel(120); got != XPForLevel(99) {
		t.Errorf("XPForLevel(120) = %v, want level-99 xp", got)
	}
}

func TestLevelForXP_RoundTrip(t *testing.T) {
	for l := 1; l <= MaxLevel; l++ {
		if got := LevelForXP(XPForLevel(l)); got != l {
			t.Errorf("LevelForXP(XPForLevel(%d)) = %d", l, got)
		}
	}
}

func TestLevelForXP_JustBelowThreshold(t *testing.T) {
	for l := 2; l <= MaxLevel; l++ {
		if got := LevelForXP(XPForLevel(l) - 1); got != l-1 {
			t.Errorf("LevelForXP(xp(%d)-1) = %d, want %d", l, got, l-1)
		}
	}
}

func TestLevelForXP_NegativeAndHuge(t *testing.T) {
	if got := LevelForXP(-50); got != 1 {
		t.Errorf("LevelForXP(-50) = %d, want 1", got)
	}
	if got := LevelForXP(200_000_000); got != MaxLevel {
		t.Errorf("LevelForXP(huge) = %d, want %d", got, MaxLevel)
	}
}

func TestCapability_LevelDefaultsToOne(t *testing.T) {
	var c Capability
	if got := c.Level(types.StatAgility); got != 1 {
		t.Errorf("empty capability level = %d, want 1", got)
	}
}

func TestCheck_SkillGate(t *testing.T) {
	c := Capability{Levels: map[types.Stat]int{types.StatAgility: 40}}
	reqs := []types.Requirement{{Kind: types.ReqSkill, Skill: types.StatAgility, Level: 60}}

	err := c.Check(reqs)
	if !errors.Is(err, errs.ErrLevelTooLow) {
		t.Errorf("skill gate error = %v, want ErrLevelTooLow", err)
	}

	c.Levels[types.StatAgility] = 60
	if err := c.Check(reqs); err != nil {
		t.Errorf("met skill gate returned %v", err)
	}
}

func TestCheck_QuestAndItemGates(t *testing.T) {
	c := Capability{
		Quests: map[string]bool{"kings_ransom": true},
		Items:  map[string]bool{"rope": true},
	}

	if err := c.Check([]types.Requirement{{Kind: types.ReqQuest, Quest: "kings_ransom"}}); err != nil {
		t.Errorf("completed quest gate returned %v", err)
	}
	if err := c.Check([]types.Requirement{{Kind: types.ReqQuest, Quest: "regicide"}}); !errors.Is(err, errs.ErrRequirementsNotMet) {
		t.Errorf("missing quest gate error = %v, want ErrRequirementsNotMet", err)
	}
	if err := c.Check([]types.Requirement{{Kind: types.ReqItem, Item: "rope"}}); err != nil {
		t.Errorf("held item gate returned %v", err)
	}
	if err := c.Check([]types.Requirement{{Kind: types.ReqItem, Item: "mith_grapple"}}); !errors.Is(err, errs.ErrRequirementsNotMet) {
		t.Errorf("missing item gate error = %v, want ErrRequirementsNotMet", err)
	}
}

func TestCheck_EmptyListPasses(t *testing.T) {
	var c Capability
	if err := c.Check(nil); err != nil {
		t.Errorf("empty requirement list returned %v", err)
	}
	if !c.Meets(nil) {
		t.Error("Meets(nil) = false")
	}
}
