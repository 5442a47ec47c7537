package physics

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// Test runs the narrow phase for a single pair, dispatching on the tagged
// shape kinds. Order of a/b in the returned Contact always matches the
// order passed in.
func Test(a, b Body) (Contact, bool) {
	switch {
	case a.Shape.Kind == components.ShapeCircle && b.Shape.Kind == components.ShapeCircle:
		return circleCircle(a, b)
	case a.Shape.Kind == components.ShapeCircle && b.Shape.Kind == components.ShapeBox:
		c, ok := circleBox(b, a)
		return flip(c), ok
	case a.Shape.Kind == components.ShapeBox && b.Shape.Kind == components.ShapeCircle:
		return circleBox(a, b)
	default:
		return boxBoxSAT(a, b)
	}
}

func flip(c Contact) Contact {
	c.A, c.B = c.B, c.A
	c.Normal = c.Normal.Neg()
	return c
}

func circleCircle(a, b Body) (Contact, bool) {
	delta := b.Pos.Sub(a.Pos)
	dist := delta.Magnitude()
	radiusSum := a.Shape.Radius.Add(b.Shape.Radius)
	if dist.Cmp(radiusSum) >= 0 {
		return Contact{}, false
	}
	normal := fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
	if dist.Sign() != 0 {
		normal = delta.Scale(fixedmath.One.Div(dist))
	}
	return Contact{
		A:           a.Entity,
		B:           b.Entity,
		Normal:      normal,
		Penetration: radiusSum.Sub(dist),
	}, true
}

// circleBox tests box (boxBody) against circle (circleBody), returning a
// contact ordered (box, circle).
func circleBox(boxBody, circleBody Body) (Contact, bool) {
	half := boxBody.Shape.HalfExtents()
	// Transform circle center into the box's local (unrotated) frame.
	local := circleBody.Pos.Sub(boxBody.Pos).Rotate(boxBody.Shape.Rotation.Neg())

	clampedX := fixedmath.Clamp(local.X, half.X.Neg(), half.X)
	clampedY := fixedmath.Clamp(local.Y, half.Y.Neg(), half.Y)
	closest := fixedmath.NewVec2(clampedX, clampedY)

	delta := local.Sub(closest)
	dist := delta.Magnitude()
	if dist.Cmp(circleBody.Shape.Radius) >= 0 {
		return Contact{}, false
	}

	var localNormal fixedmath.Vec2
	if dist.Sign() != 0 {
		localNormal = delta.Scale(fixedmath.One.Div(dist))
	} else {
		// Circle center is inside the box: push out along the axis of
		// least penetration.
		localNormal = leastPenetrationAxis(local, half)
	}

	worldNormal := localNormal.Rotate(boxBody.Shape.Rotation)
	return Contact{
		A:           boxBody.Entity,
		B:           circleBody.Entity,
		Normal:      worldNormal,
		Penetration: circleBody.Shape.Radius.Sub(dist),
	}, true
}

func leastPenetrationAxis(local, half fixedmath.Vec2) fixedmath.Vec2 {
	dx := half.X.Sub(local.X.Abs())
	dy := half.Y.Sub(local.Y.Abs())
	if dx.Cmp(dy) < 0 {
		if local.X.Sign() < 0 {
			return fixedmath.NewVec2(fixedmath.One.Neg(), fixedmath.Zero)
		}
		return fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
	}
	if local.Y.Sign() < 0 {
		return fixedmath.NewVec2(fixedmath.Zero, fixedmath.One.Neg())
	}
	return fixedmath.NewVec2(fixedmath.Zero, fixedmath.One)
}

// boxBoxSAT runs the separating-axis test across the 4 candidate axes (2
// per box, from each box's own rotation). It returns the axis of minimum
// penetration as the contact normal, oriented from a toward b.
func boxBoxSAT(a, b Body) (Contact, bool) {
	axesA := boxAxes(a.Shape.Rotation)
	axesB := boxAxes(b.Shape.Rotation)
	axes := [4]fixedmath.Vec2{axesA[0], axesA[1], axesB[0], axesB[1]}

	cornersA := boxCorners(a.Pos, a.Shape, axesA)
	cornersB := boxCorners(b.Pos, b.Shape, axesB)

	minPen := fixedmath.Zero
	var minAxis fixedmath.Vec2
	first := true

	for _, axis := range axes {
		minA, maxA := projectOnto(cornersA, axis)
		minB, maxB := projectOnto(cornersB, axis)

		overlap := fixedmath.Min(maxA, maxB).Sub(fixedmath.Max(minA, minB))
		if overlap.Sign() <= 0 {
			return Contact{}, false
		}
		if first || overlap.Cmp(minPen) < 0 {
			minPen = overlap
			minAxis = axis
			first = false
		}
	}

	// Orient the normal from a's center toward b's center.
	centerDelta := b.Pos.Sub(a.Pos)
	if centerDelta.Dot(minAxis).Sign() < 0 {
		minAxis = minAxis.Neg()
	}

	return Contact{A: a.Entity, B: b.Entity, Normal: minAxis, Penetration: minPen}, true
}

func boxAxes(rotation fixedmath.Fixed64) [2]fixedmath.Vec2 {
	ux := fixedmath.NewVec2(fixedmath.One, fixedmath.Zero).Rotate(rotation)
	uy := fixedmath.NewVec2(fixedmath.Zero, fixedmath.One).Rotate(rotation)
	// The table-based sin/cos are approximate, so re-normalize to keep the
	// SAT projections (and the contact normal) unit-scaled.
	return [2]fixedmath.Vec2{ux.Normalize(), uy.Normalize()}
}

func boxCorners(center fixedmath.Vec2, shape components.CollisionShape, axes [2]fixedmath.Vec2) [4]fixedmath.Vec2 {
	half := shape.HalfExtents()
	ex := axes[0].Scale(half.X)
	ey := axes[1].Scale(half.Y)
	return [4]fixedmath.Vec2{
		center.Add(ex).Add(ey),
		center.Sub(ex).Add(ey),
		center.Sub(ex).Sub(ey),
		center.Add(ex).Sub(ey),
	}
}

func projectOnto(corners [4]fixedmath.Vec2, axis fixedmath.Vec2) (min, max fixedmath.Fixed64) {
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
