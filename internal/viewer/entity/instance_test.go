package entity

import "testing"

func TestIdentityIfInteractive_Stable(t *testing.T) {
	p := NewPath("boxes")
	idx := IndexHashFromUint(3)

	a := IdentityIfInteractive(p, idx, true)
	b := IdentityIfInteractive(p, idx, true)
	if a != b {
		t.Errorf("identity not stable: %v != %v", a, b)
	}
	if !a.IsSome() {
		t.Error("interactive identity should be some")
	}
}

func TestIdentityIfInteractive_DistinctPerRow(t *testing.T) {
	p := NewPath("boxes")
	seen := make(map[InstanceIDHash]uint64)
	for i := uint64(0); i < 1000; i++ {
		h := IdentityIfInteractive(p, IndexHashFromUint(i), true)
		if prev, dup := seen[h]; dup {
			t.Fatalf("rows %d and %d share identity %v", prev, i, h)
		}
		seen[h] = i
	}
	if IdentityIfInteractive(NewPath("other"), IndexHashFromUint(0), true) == IdentityIfInteractive(p, IndexHashFromUint(0), true) {
		t.Error("same row id in different entities should not collide")
	}
}

func TestIdentityIfInteractive_NotInteractive(t *testing.T) {
	for _, idx := range []IndexHash{NoIndex, IndexHashFromUint(0), IndexHashFromString("x")} {
		h := IdentityIfInteractive(NewPath("boxes"), idx, false)
		if h != NoInstance {
			t.Errorf("non-interactive identity = %v, want NoInstance", h)
		}
		if h.IsSome() {
			t.Error("NoInstance.IsSome() = true")
		}
	}
}

func TestInstanceIDHash_Matches(t *testing.T) {
	p := NewPath("boxes")
	h := NewInstanceIDHash(p, IndexHashFromUint(1))

	if !h.Matches(h) {
		t.Error("identity should match itself")
	}
	if h.Matches(NewInstanceIDHash(p, IndexHashFromUint(2))) {
		t.Error("different rows should not match")
	}
	if NoInstance.Matches(NoInstance) {
		t.Error("NoInstance must never match, even itself")
	}

	whole := NewInstanceIDHash(p, NoIndex)
	if !whole.IsSome() {
		t.Error("entity-level identity without a row id should still be some")
	}
	if NoInstance.String() != "none" {
		t.Errorf("NoInstance.String() = %q", NoInstance.String())
	}
}

func TestIndexHash_KindsDoNotCollide(t *testing.T) {
	if IndexHashFromUint(1) == IndexHashFromString("1") {
		t.Error("integer and string index hashes collide")
	}
	if IndexHashFromUint(0) == NoIndex {
		t.Error("index 0 must not hash to NoIndex")
	}
}
