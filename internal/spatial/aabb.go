// Package spatial implements the broad-phase acceleration structures the
// physics step uses to cut down candidate pairs before narrow-phase SAT:
// a 2D Quadtree and a 3D BVH, both built on axis-aligned bounding boxes.
package spatial

import "github.com/fight-club/lockstep/internal/fixedmath"

// AABB2 is a 2D axis-aligned bounding box.
type AABB2 struct {
	Min, Max fixedmath.Vec2
}

func (b AABB2) Intersects(o AABB2) bool {
	return b.Min.X.Cmp(o.Max.X) <= 0 && b.Max.X.Cmp(o.Min.X) >= 0 &&
		b.Min.Y.Cmp(o.Max.Y) <= 0 && b.Max.Y.Cmp(o.Min.Y) >= 0
}

func (b AABB2) Contains(o AABB2) bool {
	return b.Min.X.Cmp(o.Min.X) <= 0 && b.Min.Y.Cmp(o.Min.Y) <= 0 &&
		b.Max.X.Cmp(o.Max.X) >= 0 && b.Max.Y.Cmp(o.Max.Y) >= 0
}

func (b AABB2) Union(o AABB2) AABB2 {
	return AABB2{
		Min: fixedmath.NewVec2(fixedmath.Min(b.Min.X, o.Min.X), fixedmath.Min(b.Min.Y, o.Min.Y)),
		Max: fixedmath.NewVec2(fixedmath.Max(b.Max.X, o.Max.X), fixedmath.Max(b.Max.Y, o.Max.Y)),
	}
}

// Center and HalfExtents are used by the split-by-quadrant logic.
func (b AABB2) Center() fixedmath.Vec2 {
	return fixedmath.NewVec2(
		b.Min.X.Add(b.Max.X).Div(fixedmath.Two),
		b.Min.Y.Add(b.Max.Y).Div(fixedmath.Two),
	)
}

// AABB3 is a 3D axis-aligned bounding box, used by the BVH.
type AABB3 struct {
	Min, Max fixedmath.Vec3
}

func (b AABB3) Contains(o AABB3) bool {
	return b.Min.X.Cmp(o.Min.X) <= 0 && b.Min.Y.Cmp(o.Min.Y) <= 0 && b.Min.Z.Cmp(o.Min.Z) <= 0 &&
		b.Max.X.Cmp(o.Max.X) >= 0 && b.Max.Y.Cmp(o.Max.Y) >= 0 && b.Max.Z.Cmp(o.Max.Z) >= 0
}

func (b AABB3) Intersects(o AABB3) bool {
	return b.Min.X.Cmp(o.Max.X) <= 0 && b.Max.X.Cmp(o.Min.X) >= 0 &&
		b.Min.Y.Cmp(o.Max.Y) <= 0 && b.Max.Y.Cmp(o.Min.Y) >= 0 &&
		b.Min.Z.Cmp(o.Max.Z) <= 0 && b.Max.Z.Cmp(o.Min.Z) >= 0
}

func (b AABB3) Union(o AABB3) AABB3 {
	return AABB3{
		Min: fixedmath.NewVec3(fixedmath.Min(b.Min.X, o.Min.X), fixedmath.Min(b.Min.Y, o.Min.Y), fixedmath.Min(b.Min.Z, o.Min.Z)),
		Max: fixedmath.NewVec3(fixedmath.Max(b.Max.X, o.Max.X), fixedmath.Max(b.Max.Y, o.Max.Y), fixedmath.Max(b.Max.Z, o.Max.Z)),
	}
}

func (b AABB3) Center() fixedmath.Vec3 {
	return fixedmath.NewVec3(
		b.Min.X.Add(b.Max.X).Div(fixedmath.Two),
		b.Min.Y.Add(b.Max.Y).Div(fixedmath.Two),
		b.Min.Z.Add(b.Max.Z).Div(fixedmath.Two),
	)
}

func (b AABB3) SurfaceArea() fixedmath.Fixed64 {
	d := b.Max.Sub(b.Min)
	dx, dy, dz := d.X, d.Y, d.Z
	if dx.Sign() < 0 {
		dx = fixedmath.Zero
	}
	if dy.Sign() < 0 {
		dy = fixedmath.Zero
	}
	if dz.Sign() < 0 {
		dz = fixedmath.Zero
	}
	return fixedmath.Two.Mul(dx.Mul(dy).Add(dy.Mul(dz)).Add(dz.Mul(dx)))
}
