package physics

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// Contact3D is one 3D narrow-phase collision result. Normal points from A
// toward B, mirroring Contact.
type Contact3D struct {
	A, B        ecs.Entity
	Normal      fixedmath.Vec3
	Penetration fixedmath.Fixed64
}

// Body3D is the 3D narrow phase's view of one entity, mirroring Body.
type Body3D struct {
	Entity ecs.Entity
	Pos    fixedmath.Vec3
	Shape  components.CollisionShape3D
	Layer  uint32
}

// Test3D dispatches on the tagged 3D shape kinds, mirroring Test's
// structure one dimension up.
func Test3D(a, b Body3D) (Contact3D, bool) {
	switch {
	case a.Shape.Kind == components.Shape3DSphere && b.Shape.Kind == components.Shape3DSphere:
		return sphereSphere(a, b)
	case a.Shape.Kind == components.Shape3DSphere && b.Shape.Kind == components.Shape3DBox:
		c, ok := sphereBox(b, a)
		return flip3(c), ok
	case a.Shape.Kind == components.Shape3DBox && b.Shape.Kind == components.Shape3DSphere:
		return sphereBox(a, b)
	default:
		return boxBoxSAT3D(a, b)
	}
}

func flip3(c Contact3D) Contact3D {
	c.A, c.B = c.B, c.A
	c.Normal = c.Normal.Neg()
	return c
}

func sphereSphere(a, b Body3D) (Contact3D, bool) {
	delta := b.Pos.Sub(a.Pos)
	dist := delta.Magnitude()
	radiusSum := a.Shape.Radius.Add(b.Shape.Radius)
	if dist.Cmp(radiusSum) >= 0 {
		return Contact3D{}, false
	}
	normal := fixedmath.NewVec3(fixedmath.One, fixedmath.Zero, fixedmath.Zero)
	if dist.Sign() != 0 {
		normal = delta.Scale(fixedmath.One.Div(dist))
	}
	return Contact3D{A: a.Entity, B: b.Entity, Normal: normal, Penetration: radiusSum.Sub(dist)}, true
}

// sphereBox tests box (boxBody) against sphere (sphereBody), returning a
// contact ordered (box, sphere), mirroring circleBox one dimension up.
func sphereBox(boxBody, sphereBody Body3D) (Contact3D, bool) {
	half := boxBody.Shape.HalfExtents()
	local := rotateY(sphereBody.Pos.Sub(boxBody.Pos), boxBody.Shape.RotationY.Neg())

	clamped := fixedmath.NewVec3(
		fixedmath.Clamp(local.X, half.X.Neg(), half.X),
		fixedmath.Clamp(local.Y, half.Y.Neg(), half.Y),
		fixedmath.Clamp(local.Z, half.Z.Neg(), half.Z),
	)

	delta := local.Sub(clamped)
	dist := delta.Magnitude()
	if dist.Cmp(sphereBody.Shape.Radius) >= 0 {
		return Contact3D{}, false
	}

	var localNormal fixedmath.Vec3
	if dist.Sign() != 0 {
		localNormal = delta.Scale(fixedmath.One.Div(dist))
	} else {
		localNormal = leastPenetrationAxis3D(local, half)
	}

	worldNormal := rotateY(localNormal, boxBody.Shape.RotationY)
	return Contact3D{
		A:           boxBody.Entity,
		B:           sphereBody.Entity,
		Normal:      worldNormal,
		Penetration: sphereBody.Shape.Radius.Sub(dist),
	}, true
}

func leastPenetrationAxis3D(local, half fixedmath.Vec3) fixedmath.Vec3 {
	dx := half.X.Sub(local.X.Abs())
	dy := half.Y.Sub(local.Y.Abs())
	dz := half.Z.Sub(local.Z.Abs())

	axis, sign := 0, local.X.Sign()
	best := dx
	if dy.Cmp(best) < 0 {
		axis, sign, best = 1, local.Y.Sign(), dy
	}
	if dz.Cmp(best) < 0 {
		axis, sign = 2, local.Z.Sign()
	}

	v := fixedmath.One
	if sign < 0 {
		v = fixedmath.One.Neg()
	}
	switch axis {
	case 0:
		return fixedmath.NewVec3(v, fixedmath.Zero, fixedmath.Zero)
	case 1:
		return fixedmath.NewVec3(fixedmath.Zero, v, fixedmath.Zero)
	default:
		return fixedmath.NewVec3(fixedmath.Zero, fixedmath.Zero, v)
	}
}

// boxBoxSAT3D runs the full 15-axis 3D separating-axis test: 3 face
// normals of a, 3 of b, and the 9 pairwise cross products of their edge
// directions. Rotation is constrained to a single axis (Y) by
// CollisionShape3D, but the SAT itself is the general 3D form.
func boxBoxSAT3D(a, b Body3D) (Contact3D, bool) {
	axesA := boxAxes3D(a.Shape.RotationY)
	axesB := boxAxes3D(b.Shape.RotationY)

	cornersA := boxCorners3D(a.Pos, a.Shape, axesA)
	cornersB := boxCorners3D(b.Pos, b.Shape, axesB)

	var candidates []fixedmath.Vec3
	candidates = append(candidates, axesA[0], axesA[1], axesA[2], axesB[0], axesB[1], axesB[2])
	for _, ea := range axesA {
		for _, eb := range axesB {
			cross := ea.Cross(eb)
			if cross.SqrMagnitude().Sign() != 0 {
				candidates = append(candidates, cross.Normalize())
			}
		}
	}

	minPen := fixedmath.Zero
	var minAxis fixedmath.Vec3
	first := true

	for _, axis := range candidates {
		minA, maxA := projectOnto3D(cornersA, axis)
		minB, maxB := projectOnto3D(cornersB, axis)

		overlap := fixedmath.Min(maxA, maxB).Sub(fixedmath.Max(minA, minB))
		if overlap.Sign() <= 0 {
			return Contact3D{}, false
		}
		if first || overlap.Cmp(minPen) < 0 {
			minPen = overlap
			minAxis = axis
			first = false
		}
	}

	centerDelta := b.Pos.Sub(a.Pos)
	if centerDelta.Dot(minAxis).Sign() < 0 {
		minAxis = minAxis.Neg()
	}

	return Contact3D{A: a.Entity, B: b.Entity, Normal: minAxis, Penetration: minPen}, true
}

func boxAxes3D(rotationY fixedmath.Fixed64) [3]fixedmath.Vec3 {
	ux := rotateY(fixedmath.NewVec3(fixedmath.One, fixedmath.Zero, fixedmath.Zero), rotationY)
	uy := fixedmath.NewVec3(fixedmath.Zero, fixedmath.One, fixedmath.Zero)
	uz := rotateY(fixedmath.NewVec3(fixedmath.Zero, fixedmath.Zero, fixedmath.One), rotationY)
	return [3]fixedmath.Vec3{ux, uy, uz}
}

func boxCorners3D(center fixedmath.Vec3, shape components.CollisionShape3D, axes [3]fixedmath.Vec3) [8]fixedmath.Vec3 {
	half := shape.HalfExtents()
	ex := axes[0].Scale(half.X)
	ey := axes[1].Scale(half.Y)
	ez := axes[2].Scale(half.Z)

	var out [8]fixedmath.Vec3
	i := 0
	for _, sx := range [2]fixedmath.Fixed64{fixedmath.One, fixedmath.One.Neg()} {
		for _, sy := range [2]fixedmath.Fixed64{fixedmath.One, fixedmath.One.Neg()} {
			for _, sz := range [2]fixedmath.Fixed64{fixedmath.One, fixedmath.One.Neg()} {
				out[i] = center.Add(ex.Scale(sx)).Add(ey.Scale(sy)).Add(ez.Scale(sz))
				i++
			}
		}
	}
	return out
}

func projectOnto3D(corners [8]fixedmath.Vec3, axis fixedmath.Vec3) (min, max fixedmath.Fixed64) {
	min = corners[0].Dot(axis)
	max = min
	for _, c := range corners[1:] {
		p := c.Dot(axis)
		if p.Cmp(min) < 0 {
			min = p
		}
		if p.Cmp(max) > 0 {
			max = p
		}
	}
	return min, max
}

// rotateY rotates v by theta radians about the Y axis.
func rotateY(v fixedmath.Vec3, theta fixedmath.Fixed64) fixedmath.Vec3 {
	c := fixedmath.Cos(theta)
	s := fixedmath.Sin(theta)
	return fixedmath.NewVec3(
		v.X.Mul(c).Add(v.Z.Mul(s)),
		v.Y,
		v.X.Mul(s).Neg().Add(v.Z.Mul(c)),
	)
}
