package fixedmath

import "testing"

func TestAddSub(t *testing.T) {
	a := FromInt(3)
	b := FromInt(2)
	if got := a.Add(b); got != FromInt(5) {
		t.Errorf("3+2 = %v, want 5", got)
	}
	if got := a.Sub(b); got != FromInt(1) {
		t.Errorf("3-2 = %v, want 1", got)
	}
}

func TestMul(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{3, 4, 12},
		{-3, 4, -12},
		{-3, -4, 12},
		{0, 100, 0},
	}
	for _, c := range cases {
		got := FromInt(c.a).Mul(FromInt(c.b))
		if got != FromInt(c.want) {
			t.Errorf("%d*%d = %v, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMulFraction(t *testing.T) {
	half := One.Div(Two)
	got := half.Mul(FromInt(10))
	if got != FromInt(5) {
		t.Errorf("0.5*10 = %v, want 5", got)
	}
}

func TestDivByZeroReturnsZero(t *testing.T) {
	if got := FromInt(5).Div(Zero); got != Zero {
		t.Errorf("5/0 = %v, want 0 (no-fault contract)", got)
	}
}

func TestDivRoundTrip(t *testing.T) {
	a := FromInt(17)
	b := FromInt(5)
	q := a.Div(b)
	back := q.Mul(b)
	diff := (a - back).Abs()
	if diff > FromRaw(2) {
		t.Errorf("17/5*5 = %v, want ~17 (diff %v)", back, diff)
	}
}

func TestOverflowWraps(t *testing.T) {
	// MaxValue + 1 must wrap to MinValue (two's complement wraparound,
	// matching the source contract rather than saturating or panicking).
	got := MaxValue.Add(Epsilon)
	if got != MinValue {
		t.Errorf("MaxValue+epsilon = %v, want MinValue", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(FromInt(15), Zero, FromInt(10)); got != FromInt(10) {
		t.Errorf("clamp(15,0,10) = %v, want 10", got)
	}
	if got := Clamp(FromInt(-5), Zero, FromInt(10)); got != Zero {
		t.Errorf("clamp(-5,0,10) = %v, want 0", got)
	}
}

func TestSqrt(t *testing.T) {
	got := Sqrt(FromInt(4))
	diff := (got - FromInt(2)).Abs()
	if diff > FromRaw(4) {
		t.Errorf("sqrt(4) = %v, want ~2", got)
	}

	got9 := Sqrt(FromInt(9))
	diff9 := (got9 - FromInt(3)).Abs()
	if diff9 > FromRaw(4) {
		t.Errorf("sqrt(9) = %v, want ~3", got9)
	}
}

func TestSqrtNegativeIsZero(t *testing.T) {
	if got := Sqrt(FromInt(-4)); got != Zero {
		t.Errorf("sqrt(-4) = %v, want 0", got)
	}
}

func TestDeterministicAcrossCalls(t *testing.T) {
	a := FromInt(123).Div(FromInt(7))
	b := FromInt(123).Div(FromInt(7))
	if a != b {
		t.Errorf("same op produced different results: %v vs %v", a, b)
	}
}

func TestSinCosBasics(t *testing.T) {
	tol := FromRaw(1 << 22) // coarse tolerance for the polynomial approximation
	if diff := Sin(Zero).Abs(); diff > tol {
		t.Errorf("sin(0) = %v, want ~0", Sin(Zero))
	}
	if diff := (Cos(Zero) - One).Abs(); diff > tol {
		t.Errorf("cos(0) = %v, want ~1", Cos(Zero))
	}
	if diff := (Sin(HalfPi) - One).Abs(); diff > tol {
		t.Errorf("sin(pi/2) = %v, want ~1", Sin(HalfPi))
	}
}

func TestAtan2Quadrants(t *testing.T) {
	tol := FromRaw(1 << 24)
	if diff := Atan2(Zero, One).Abs(); diff > tol {
		t.Errorf("atan2(0,1) = %v, want ~0", Atan2(Zero, One))
	}
	got := Atan2(One, Zero)
	if diff := (got - HalfPi).Abs(); diff > tol {
		t.Errorf("atan2(1,0) = %v, want ~pi/2", got)
	}
}
