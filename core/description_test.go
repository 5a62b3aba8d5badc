package core

import "testing"

func TestDescriptionEqualIgnoresMailbox(t *testing.T) {
	taskID := NewULID()
	ch1 := make(chan Message, 1)
	ch2 := make(chan Message, 1)

	a := NewDescription("A", "hap1", taskID, ch1)
	b := NewDescription("A", "hap1", taskID, ch2)

	if !a.Equal(b) {
		t.Fatalf("expected descriptions with the same (name, hap, task id) to be equal")
	}
	if a.Key() != b.Key() {
		t.Fatalf("expected keys to match: %+v vs %+v", a.Key(), b.Key())
	}
}

func TestDescriptionEqualDistinctTaskID(t *testing.T) {
	ch := make(chan Message, 1)
	a := NewDescription("A", "hap1", NewULID(), ch)
	b := NewDescription("A", "hap1", NewULID(), ch)

	if a.Equal(b) {
		t.Fatalf("expected descriptions with different task ids to be distinct")
	}
}

func TestDescriptionAsMapKey(t *testing.T) {
	ch := make(chan Message, 1)
	taskID := NewULID()
	a := NewDescription("A", "hap1", taskID, ch)

	m := map[DescriptionKey]bool{}
	m[a.Key()] = true

	reconstructed := NewDescription("A", "hap1", taskID, nil)
	if !m[reconstructed.Key()] {
		t.Fatalf("expected reconstructed description to hit the same map key")
	}
}

func TestDescriptionString(t *testing.T) {
	d := NewDescription("A", "hap1", NewULID(), nil)
	if got, want := d.String(), "A@hap1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHasMailbox(t *testing.T) {
	withMailbox := NewDescription("A", "hap1", NewULID(), make(chan Message, 1))
	withoutMailbox := NewDescription("B", "hap1", NewULID(), nil)

	if !withMailbox.HasMailbox() {
		t.Errorf("expected HasMailbox true")
	}
	if withoutMailbox.HasMailbox() {
		t.Errorf("expected HasMailbox false")
	}
}
