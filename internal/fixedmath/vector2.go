package fixedmath

// Vec2 is a pair of Fixed64 components. Equality is exact on the raw
// integers; there is no epsilon comparison inside the simulation.
type Vec2 struct {
	X, Y Fixed64
}

var Vec2Zero = Vec2{}

func NewVec2(x, y Fixed64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Neg() Vec2       { return Vec2{-a.X, -a.Y} }

func (a Vec2) Scale(s Fixed64) Vec2 { return Vec2{a.X.Mul(s), a.Y.Mul(s)} }

func (a Vec2) Dot(b Vec2) Fixed64 { return a.X.Mul(b.X) + a.Y.Mul(b.Y) }

// Cross returns the scalar z-component of the 3D cross product of two 2D
// vectors; positive means b is counter-clockwise from a.
func (a Vec2) Cross(b Vec2) Fixed64 { return a.X.Mul(b.Y) - a.Y.Mul(b.X) }

func (a Vec2) SqrMagnitude() Fixed64 { return a.Dot(a) }

func (a Vec2) Magnitude() Fixed64 { return Sqrt(a.SqrMagnitude()) }

// Normalize returns the zero vector when a is the zero vector, rather than
// faulting on the division.
func (a Vec2) Normalize() Vec2 {
	m := a.Magnitude()
	if m == Zero {
		return Vec2Zero
	}
	return Vec2{a.X.Div(m), a.Y.Div(m)}
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (a Vec2) Perp() Vec2 { return Vec2{-a.Y, a.X} }

func Lerp2(a, b Vec2, t Fixed64) Vec2 {
	return Vec2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// ClampMagnitude shortens a to maxLen if it exceeds it; leaves a untouched
// (including the zero vector) otherwise.
func (a Vec2) ClampMagnitude(maxLen Fixed64) Vec2 {
	sqr := a.SqrMagnitude()
	maxSqr := maxLen.Mul(maxLen)
	if sqr <= maxSqr || sqr == Zero {
		return a
	}
	return a.Normalize().Scale(maxLen)
}

func (a Vec2) Equal(b Vec2) bool { return a.X == b.X && a.Y == b.Y }

// Rotate returns a rotated by theta radians counter-clockwise.
func (a Vec2) Rotate(theta Fixed64) Vec2 {
	s, c := Sin(theta), Cos(theta)
	return Vec2{
		X: a.X.Mul(c) - a.Y.Mul(s),
		Y: a.X.Mul(s) + a.Y.Mul(c),
	}
}
