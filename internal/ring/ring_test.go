package ring

import "testing"

func TestRing_PushAndWrap(t *testing.T) {
	r := New[int](3)

	r.Push(1)
	r.Push(2)
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	r.Push(3)
	r.Push(4) // evicts 1

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	want := []int{2, 3, 4}
	got := r.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	last, ok := r.Last()
	if !ok || last != 4 {
		t.Errorf("Last() = %d, %v, want 4, true", last, ok)
	}
}

func TestRing_At(t *testing.T) {
	r := New[string](2)
	r.Push("a")
	r.Push("b")
	r.Push("c") // evicts "a"

	if got := r.At(0); got != "b" {
		t.Errorf("At(0) = %q, want %q", got, "b")
	}
	if got := r.At(1); got != "c" {
		t.Errorf("At(1) = %q, want %q", got, "c")
	}
}

func TestRing_Clear(t *testing.T) {
	r := New[float64](4)
	r.Push(1.5)
	r.Push(2.5)

	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", r.Len())
	}
	if _, ok := r.Last(); ok {
		t.Error("Last() after Clear should report empty")
	}
	if r.Cap() != 4 {
		t.Errorf("Cap() after Clear = %d, want 4", r.Cap())
	}
}

func TestRing_ClampedCapacity(t *testing.T) {
	r := New[int](0)
	r.Push(7)
	r.Push(8)
	if r.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1", r.Cap())
	}
	if last, _ := r.Last(); last != 8 {
		t.Errorf("Last() = %d, want 8", last)
	}
}
