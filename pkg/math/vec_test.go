package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}
	if got, want := a.Min(b), (Vec3{1, -1, -2}); got != want {
		t.Errorf("Vec3.Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, 0}); got != want {
		t.Errorf("Vec3.Max() = %v, want %v", got, want)
	}
}

func TestVec3dMaxComponent(t *testing.T) {
	tests := []struct {
		v    Vec3d
		want int
	}{
		{Vec3d{3, 1, 2}, 0},
		{Vec3d{1, 3, 2}, 1},
		{Vec3d{1, 2, 3}, 2},
		{Vec3d{2, 2, 2}, 0},
	}
	for _, tt := range tests {
		if _, got := tt.v.MaxComponent(); got != tt.want {
			t.Errorf("%v.MaxComponent() index = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestVec3dAnyPerpendicular(t *testing.T) {
	for _, v := range []Vec3d{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}} {
		p := v.AnyPerpendicular()
		if math.Abs(p.Dot(v)) > 1e-12 {
			t.Errorf("AnyPerpendicular(%v) = %v is not orthogonal", v, p)
		}
		if math.Abs(p.Length()-1) > 1e-12 {
			t.Errorf("AnyPerpendicular(%v) length = %v, want 1", v, p.Length())
		}
	}
}
