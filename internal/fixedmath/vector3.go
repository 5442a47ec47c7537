package fixedmath

// Vec3 mirrors Vec2 for the 3D (BVH) domain.
type Vec3 struct {
	X, Y, Z Fixed64
}

var Vec3Zero = Vec3{}

func NewVec3(x, y, z Fixed64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Neg() Vec3       { return Vec3{-a.X, -a.Y, -a.Z} }

func (a Vec3) Scale(s Fixed64) Vec3 {
	return Vec3{a.X.Mul(s), a.Y.Mul(s), a.Z.Mul(s)}
}

func (a Vec3) Dot(b Vec3) Fixed64 {
	return a.X.Mul(b.X) + a.Y.Mul(b.Y) + a.Z.Mul(b.Z)
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y.Mul(b.Z) - a.Z.Mul(b.Y),
		Y: a.Z.Mul(b.X) - a.X.Mul(b.Z),
		Z: a.X.Mul(b.Y) - a.Y.Mul(b.X),
	}
}

func (a Vec3) SqrMagnitude() Fixed64 { return a.Dot(a) }
func (a Vec3) Magnitude() Fixed64    { return Sqrt(a.SqrMagnitude()) }

func (a Vec3) Normalize() Vec3 {
	m := a.Magnitude()
	if m == Zero {
		return Vec3Zero
	}
	return Vec3{a.X.Div(m), a.Y.Div(m), a.Z.Div(m)}
}

func Lerp3(a, b Vec3, t Fixed64) Vec3 {
	return Vec3{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t), Lerp(a.Z, b.Z, t)}
}

func (a Vec3) ClampMagnitude(maxLen Fixed64) Vec3 {
	sqr := a.SqrMagnitude()
	maxSqr := maxLen.Mul(maxLen)
	if sqr <= maxSqr || sqr == Zero {
		return a
	}
	return a.Normalize().Scale(maxLen)
}

func (a Vec3) Equal(b Vec3) bool { return a.X == b.X && a.Y == b.Y && a.Z == b.Z }

// Component returns the axis value (0=X,1=Y,2=Z); used by the BVH's
// longest-axis split policy to index into a vector generically.
func (a Vec3) Component(axis int) Fixed64 {
	switch axis {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}
