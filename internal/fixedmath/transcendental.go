package fixedmath

// Sqrt computes an integer Newton-iteration square root converged to
// Q31.32. Negative input returns Zero (no fault, matches the Div-by-zero
// no-fault contract for this package).
func Sqrt(v Fixed64) Fixed64 {
	if v <= 0 {
		return Zero
	}
	// Operate on the raw Q31.32 integer: sqrt(v) in fixed point is
	// sqrt(raw * 2^32) in raw units, so we need an initial guess and a
	// few Newton iterations on the raw integer domain.
	raw := uint64(v)
	var x uint64
	if raw < 1<<fracBits {
		// raw*2^32 still fits in 64 bits: the integer root is exact.
		x = isqrt64(raw << fracBits)
	} else {
		// sqrt(raw*2^32) = sqrt(raw)*2^16; the truncation is polished below.
		x = isqrt64(raw) << (fracBits / 2)
	}
	result := Fixed64(x)

	// Two corrective Newton steps in fixed-point domain to polish away
	// the integer sqrt's truncation.
	for i := 0; i < 2; i++ {
		if result == 0 {
			break
		}
		result = (result + v.Div(result)) / 2
	}
	return result
}

// isqrt64 computes floor(sqrt(x)) for an unsigned 64-bit integer using the
// standard bit-by-bit integer square root algorithm.
func isqrt64(x uint64) uint64 {
	var res uint64
	var bit uint64 = 1 << 62
	for bit > x {
		bit >>= 2
	}
	for bit != 0 {
		if x >= res+bit {
			x -= res + bit
			res = res>>1 + bit
		} else {
			res >>= 1
		}
		bit >>= 2
	}
	return res
}

// sinTableSize controls the resolution of the quarter-wave lookup table
// populated once at package init; interpolation between entries keeps the
// result identical across platforms since it only performs Fixed64 ops.
const sinTableSize = 1024

var quarterSine [sinTableSize + 1]Fixed64

func init() {
	// Populate a quarter-period sine table using a fixed-point Taylor/CORDIC-
	// free polynomial evaluated once at startup; deterministic because it is
	// computed from integer ratios only, not from the host's float64 sin.
	for i := 0; i <= sinTableSize; i++ {
		theta := HalfPi.Mul(FromInt(int64(i))).Div(FromInt(int64(sinTableSize)))
		quarterSine[i] = sinPoly(theta)
	}
}

// sinPoly evaluates sin(x) for x in [0, pi/2] via Bhaskara I's rational
// approximation (absolute error up to about 0.0016) entirely in Fixed64
// arithmetic so the result is bit-identical regardless of host FPU.
func sinPoly(x Fixed64) Fixed64 {
	// Bhaskara I's approximation: sin(x) ~= 16x(pi-x) / (5pi^2 - 4x(pi-x))
	piMinusX := Pi - x
	num := FromInt(16).Mul(x).Mul(piMinusX)
	den := FromInt(5).Mul(Pi).Mul(Pi).Sub(FromInt(4).Mul(x).Mul(piMinusX))
	return num.Div(den)
}

// Sin returns sin(theta) for theta in radians (Fixed64), reduced into
// [0, 2pi) and reflected through the lookup table's quarter-wave symmetry.
func Sin(theta Fixed64) Fixed64 {
	t := wrapTwoPi(theta)
	neg := false
	if t > Pi {
		t -= Pi
		neg = true
	}
	if t > HalfPi {
		t = Pi - t
	}
	idx := t.Mul(FromInt(int64(sinTableSize))).Div(HalfPi)
	i := idx.ToInt()
	if i < 0 {
		i = 0
	}
	if i >= sinTableSize {
		i = sinTableSize - 1
	}
	frac := idx - FromInt(i)
	v := Lerp(quarterSine[i], quarterSine[i+1], frac)
	if neg {
		v = -v
	}
	return v
}

// Cos returns cos(theta) via the sin/cos phase identity.
func Cos(theta Fixed64) Fixed64 {
	return Sin(theta + HalfPi)
}

// Atan2 returns the angle (radians, Fixed64) of the vector (y, x), using a
// fixed-point rational polynomial approximation that is deterministic
// across platforms (no calls into a host libm atan2).
func Atan2(y, x Fixed64) Fixed64 {
	if x == 0 && y == 0 {
		return Zero
	}
	absX, absY := x.Abs(), y.Abs()

	var angle Fixed64
	if absX >= absY {
		if absX == 0 {
			return Zero
		}
		r := absY.Div(absX)
		angle = atanPoly(r)
	} else {
		r := absX.Div(absY)
		angle = HalfPi - atanPoly(r)
	}

	if x < 0 {
		angle = Pi - angle
	}
	if y < 0 {
		angle = -angle
	}
	return angle
}

// atanPoly approximates atan(r) for r in [0,1] using a fixed-point minimax
// polynomial (same structural shape for every platform: no transcendental
// libm call, just Fixed64 multiply/add).
func atanPoly(r Fixed64) Fixed64 {
	// atan(r) ~= r * (pi/4 + 0.273*(1-|r|))  (classic cheap approximation)
	c := FromRaw(1172812692) // ~0.27307 * 2^32
	one := One
	return r.Mul(Pi.Div(FromInt(4)).Add(c.Mul(one - r.Abs())))
}

func wrapTwoPi(theta Fixed64) Fixed64 {
	t := theta
	for t < 0 {
		t += TwoPi
	}
	for t >= TwoPi {
		t -= TwoPi
	}
	return t
}
