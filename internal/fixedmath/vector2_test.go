package fixedmath

import "testing"

func TestVec2DotCross(t *testing.T) {
	a := NewVec2(FromInt(1), FromInt(0))
	b := NewVec2(FromInt(0), FromInt(1))

	if got := a.Dot(b); got != Zero {
		t.Errorf("perpendicular dot = %v, want 0", got)
	}
	if got := a.Cross(b); got != One {
		t.Errorf("cross((1,0),(0,1)) = %v, want 1", got)
	}
}

func TestVec2NormalizeZero(t *testing.T) {
	got := Vec2Zero.Normalize()
	if !got.Equal(Vec2Zero) {
		t.Errorf("normalize(zero) = %v, want zero", got)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := NewVec2(FromInt(3), FromInt(4))
	n := v.Normalize()
	mag := n.Magnitude()
	diff := (mag - One).Abs()
	if diff > FromRaw(1<<20) {
		t.Errorf("normalized magnitude = %v, want ~1", mag)
	}
}

func TestVec2ClampMagnitude(t *testing.T) {
	v := NewVec2(FromInt(10), Zero)
	clamped := v.ClampMagnitude(FromInt(5))
	if diff := (clamped.Magnitude() - FromInt(5)).Abs(); diff > FromRaw(1<<20) {
		t.Errorf("clamped magnitude = %v, want ~5", clamped.Magnitude())
	}

	within := NewVec2(FromInt(2), Zero)
	same := within.ClampMagnitude(FromInt(5))
	if !same.Equal(within) {
		t.Errorf("ClampMagnitude modified a vector already within bound: %v", same)
	}
}

func TestVec2Lerp(t *testing.T) {
	a := NewVec2(Zero, Zero)
	b := NewVec2(FromInt(10), FromInt(10))
	mid := Lerp2(a, b, One.Div(Two))
	if mid.X != FromInt(5) || mid.Y != FromInt(5) {
		t.Errorf("lerp midpoint = %v, want (5,5)", mid)
	}
}

func TestVec2EqualityExact(t *testing.T) {
	a := NewVec2(FromInt(1), FromInt(2))
	b := NewVec2(FromInt(1), FromInt(2))
	if !a.Equal(b) {
		t.Errorf("identical vectors not equal: %v vs %v", a, b)
	}
}
