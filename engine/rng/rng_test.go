package rng

import "testing"

func TestNew_SameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("streams diverged at roll %d: %v != %v", i, av, bv)
		}
	}
}

func TestNew_DifferentSeedDifferentStream(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 20 {
		t.Fatal("different seeds produced identical streams")
	}
}

func TestPosition_IncrementsPerRoll(t *testing.T) {
	r := New(7)
	if r.Position() != 0 {
		t.Fatalf("fresh RNG position = %d, want 0", r.Position())
	}
	r.Chance(0.5)
	r.Roll(6)
	r.Between(1, 10)
	r.Float64()
	if r.Position() != 4 {
		t.Errorf("position after 4 rolls = %d, want 4", r.Position())
	}
}

func TestBetween_DegenerateRangeConsumesNoRoll(t *testing.T) {
	r := New(7)
	if got := r.Between(5, 5); got != 5 {
		t.Errorf("Between(5,5) = %d, want 5", got)
	}
	if got := r.Between(5, 3); got != 5 {
		t.Errorf("Between(5,3) = %d, want 5", got)
	}
	if r.Position() != 0 {
		t.Errorf("degenerate ranges consumed %d rolls, want 0", r.Position())
	}
}

func TestBetween_WithinBounds(t *testing.T) {
	r := New(99)
	for i := 0; i < 200; i++ {
		got := r.Between(3, 9)
		if got < 3 || got > 9 {
			t.Fatalf("Between(3,9) = %d, out of range", got)
		}
	}
}

func TestChance_Extremes(t *testing.T) {
	r := New(11)
	for i := 0; i < 50; i++ {
		if r.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !r.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
	}
}

func TestRestore_ReproducesStream(t *testing.T) {
	r := New(1234)
	for i := 0; i < 17; i++ {
		r.Float64()
	}
	restored := Restore(r.Seed(), r.Position())
	if restored.Position() != r.Position() {
		t.Fatalf("restored position = %d, want %d", restored.Position(), r.Position())
	}
	for i := 0; i < 50; i++ {
		if a, b := r.Float64(), restored.Float64(); a != b {
			t.Fatalf("restored stream diverged at roll %d: %v != %v", i, a, b)
		}
	}
}
