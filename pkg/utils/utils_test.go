package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("got %v", v)
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Error("zero vector should be unchanged")
	}
}

func TestSquaredL2(t *testing.T) {
	if d := SquaredL2([]float32{0, 0}, []float32{3, 4}); d != 25 {
		t.Errorf("SquaredL2=%f, want 25", d)
	}
	if d := SquaredL2([]float32{1, 1}, []float32{1, 1}); d != 0 {
		t.Errorf("identical vectors should have distance 0, got %f", d)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 3); got != "hel..." {
		t.Errorf("got %q", got)
	}
	if got := Truncate("hi", 10); got != "hi" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("hi", 0); got != "hi" {
		t.Errorf("maxLen 0 should be a no-op, got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		l, err := NewLogger(debug)
		if err != nil {
			t.Fatalf("NewLogger(%v): %v", debug, err)
		}
		if l == nil {
			t.Fatal("nil logger")
		}
	}
}
