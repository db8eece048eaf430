package ejsval

import "testing"

func TestNamesTableLinearLookup(t *testing.T) {
	nt := NewNamesTable()
	slotX := nt.Add(Name{Name: "x", Namespace: "public"})
	slotY := nt.Add(Name{Name: "y", Namespace: "public"})

	if got := nt.Lookup("x", "public"); got != slotX {
		t.Errorf("Lookup(x) = %d, want %d", got, slotX)
	}
	if got := nt.Lookup("y", "public"); got != slotY {
		t.Errorf("Lookup(y) = %d, want %d", got, slotY)
	}
	if got := nt.Lookup("z", "public"); got != -1 {
		t.Errorf("Lookup(missing) = %d, want -1", got)
	}
}

func TestNamesTableRehashesAboveThreshold(t *testing.T) {
	nt := NewNamesTable()
	var slots []int
	for i := 0; i < HashMinProp+4; i++ {
		slots = append(slots, nt.Add(Name{Name: name(i), Namespace: "public"}))
	}

	// Once property count crosses HashMinProp, a real bucket table exists.
	if nt.Len() <= HashMinProp {
		t.Fatalf("test setup: only added %d entries, want > %d", nt.Len(), HashMinProp)
	}

	for i, slot := range slots {
		if got := nt.Lookup(name(i), "public"); got != slot {
			t.Errorf("Lookup(%s) after rehash = %d, want %d", name(i), got, slot)
		}
	}
}

func TestNamesTableCloneIsIndependent(t *testing.T) {
	nt := NewNamesTable()
	nt.Add(Name{Name: "x", Namespace: "public"})

	clone := nt.Clone()
	clone.Add(Name{Name: "y", Namespace: "public"})

	if nt.Len() != 1 {
		t.Errorf("original table mutated by clone: Len() = %d, want 1", nt.Len())
	}
	if clone.Len() != 2 {
		t.Errorf("clone.Len() = %d, want 2", clone.Len())
	}
}

func TestNamesTableInsertAtShiftsSlots(t *testing.T) {
	nt := NewNamesTable()
	nt.Add(Name{Name: "a", Namespace: "public"})
	nt.Add(Name{Name: "c", Namespace: "public"})
	nt.InsertAt(1, Name{Name: "b", Namespace: "public"})

	if got := nt.NameAt(0).Name; got != "a" {
		t.Errorf("slot 0 = %q, want %q", got, "a")
	}
	if got := nt.NameAt(1).Name; got != "b" {
		t.Errorf("slot 1 = %q, want %q", got, "b")
	}
	if got := nt.NameAt(2).Name; got != "c" {
		t.Errorf("slot 2 = %q, want %q", got, "c")
	}
}

func name(i int) string {
	return string(rune('a' + i%26))
}
