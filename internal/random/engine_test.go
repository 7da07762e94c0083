package random

import "testing"

func TestEngineIsDeterministic(t *testing.T) {
	a := New()
	b := New()

	for i := 0; i < 100; i++ {
		va := a.Float("Int")
		vb := b.Float("Int")
		if va != vb {
			t.Fatalf("draw %d differs: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of range: %v", i, va)
		}
	}
}

func TestEngineScopesAreIndependent(t *testing.T) {
	mixed := New()
	plain := New()

	var want []float64
	for i := 0; i < 5; i++ {
		want = append(want, plain.Float("String"))
	}

	for i := 0; i < 5; i++ {
		mixed.Float("Guid")
		mixed.Float("Guid")
		if got := mixed.Float("String"); got != want[i] {
			t.Errorf("draw %d: got %v, want %v", i, got, want[i])
		}
	}
}

func TestEngineIntn(t *testing.T) {
	e := New()
	for i := 0; i < 1000; i++ {
		v := e.Intn("Byte", 10)
		if v < 0 || v >= 10 {
			t.Fatalf("Intn out of range: %d", v)
		}
	}
	if got := e.Intn("Byte", 0); got != 0 {
		t.Errorf("Intn(0) = %d, want 0", got)
	}
}

func TestEnginePick(t *testing.T) {
	e := New()
	values := []any{"a", "b", "c"}
	seen := map[any]bool{}
	for i := 0; i < 200; i++ {
		seen[e.Pick("$predefined", values)] = true
	}
	for _, v := range values {
		if !seen[v] {
			t.Errorf("value %v never picked", v)
		}
	}

	if got := e.Pick("$predefined", nil); got != nil {
		t.Errorf("Pick(nil) = %v, want nil", got)
	}
}

func TestEngineReset(t *testing.T) {
	e := New()
	first := e.Float("Double")
	e.Float("Double")
	e.Reset()
	if got := e.Float("Double"); got != first {
		t.Errorf("after Reset got %v, want %v", got, first)
	}
}
