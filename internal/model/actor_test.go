package model

import "testing"

func TestApplyHPDelta_Clamps(t *testing.T) {
	a := NewActor(1, "golem", FactionHostile, NewPoint(0, 0), 1000)

	a.ApplyHPDelta(-400)
	if hp := a.CurrentHP(); hp != 600 {
		t.Fatalf("CurrentHP = %d, want 600", hp)
	}

	// Below zero clamps to zero.
	a.ApplyHPDelta(-5000)
	if hp := a.CurrentHP(); hp != 0 {
		t.Fatalf("CurrentHP = %d, want 0", hp)
	}
	if !a.IsDead() {
		t.Error("actor with 0 HP should be dead")
	}

	// Above max clamps to max.
	a.ApplyHPDelta(99999)
	if hp := a.CurrentHP(); hp != 1000 {
		t.Fatalf("CurrentHP = %d, want 1000", hp)
	}
}

func TestIsValid(t *testing.T) {
	a := NewActor(2, "golem", FactionHostile, NewPoint(0, 0), 100)
	if !a.IsValid() {
		t.Fatal("fresh actor should be valid")
	}

	a.ApplyHPDelta(-100)
	if a.IsValid() {
		t.Error("dead actor should be invalid")
	}

	b := NewActor(3, "golem", FactionHostile, NewPoint(0, 0), 100)
	b.SetRemoved()
	if b.IsValid() {
		t.Error("removed actor should be invalid")
	}
}

func TestParseDefenseKind(t *testing.T) {
	for _, name := range []string{"Reflex", "Fortitude", "Will"} {
		kind, ok := ParseDefenseKind(name)
		if !ok {
			t.Fatalf("ParseDefenseKind(%q) failed", name)
		}
		if kind.String() != name {
			t.Errorf("round trip %q -> %q", name, kind.String())
		}
	}
	if _, ok := ParseDefenseKind("Dodge"); ok {
		t.Error("unknown defense kind should fail")
	}
}

func TestObjectIDGenerator_Unique(t *testing.T) {
	g := NewObjectIDGenerator()
	seen := make(map[ObjectID]bool)
	for i := 0; i < 100; i++ {
		id := g.Next()
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
