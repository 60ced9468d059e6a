package jmath

import (
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float32
		want      float32
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -3, 0, 1, 0},
		{"above", 7, 0, 1, 1},
		{"at lower bound", 0, 0, 1, 0},
		{"at upper bound", 1, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}

	if got := Clamp(17, 0, 10); got != 10 {
		t.Errorf("Clamp(17, 0, 10) = %d, want 10", got)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		len, alignment, want int
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 4, 8},
		{17, 16, 32},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.len, tt.alignment); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.len, tt.alignment, got, tt.want)
		}
	}
}

func TestVec2(t *testing.T) {
	a := Vec2{3, 4}
	if got := a.Length(); got != 5 {
		t.Errorf("Length() = %v, want 5", got)
	}
	if got := a.LengthSquared(); got != 25 {
		t.Errorf("LengthSquared() = %v, want 25", got)
	}
	if got := a.Distance(Vec2{0, 0}); got != 5 {
		t.Errorf("Distance(origin) = %v, want 5", got)
	}
	if got := a.Sub(Vec2{1, 1}); got != (Vec2{2, 3}) {
		t.Errorf("Sub = %v, want {2 3}", got)
	}
	if got := a.Mul(Vec2{2, 0.5}); got != (Vec2{6, 2}) {
		t.Errorf("Mul = %v, want {6 2}", got)
	}
	if got := a.Dot(Vec2{-4, 3}); got != 0 {
		t.Errorf("Dot = %v, want 0", got)
	}
}

func TestMat4Identity(t *testing.T) {
	v := [4]float32{1, 2, 3, 1}
	if got := Identity.MulVec4(v); got != v {
		t.Errorf("Identity.MulVec4(%v) = %v", v, got)
	}
	if got := Identity.Mul(Identity); got != Identity {
		t.Errorf("Identity.Mul(Identity) = %v", got)
	}
}

func TestMat4Translate(t *testing.T) {
	m := Translate(10, -5, 2)
	got := m.MulVec4([4]float32{1, 1, 1, 1})
	want := [4]float32{11, -4, 3, 1}
	if got != want {
		t.Errorf("Translate.MulVec4 = %v, want %v", got, want)
	}

	// Direction vectors (w == 0) must be unaffected by translation.
	dir := [4]float32{1, 2, 3, 0}
	if got := m.MulVec4(dir); got != dir {
		t.Errorf("Translate.MulVec4(%v) = %v, want unchanged", dir, got)
	}
}

func TestMat4MulComposition(t *testing.T) {
	a := Translate(1, 2, 3)
	b := Translate(-4, 0, 7)
	got := a.Mul(b).MulVec4([4]float32{0, 0, 0, 1})
	want := [4]float32{-3, 2, 10, 1}
	if got != want {
		t.Errorf("composed translation moves origin to %v, want %v", got, want)
	}
}
