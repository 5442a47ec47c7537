package physics

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// Config3D mirrors Config for the 3D (grenade) physics pass.
type Config3D struct {
	Gravity    fixedmath.Vec3
	SubSteps   int
	Iterations int
}

// BroadPhase3D mirrors BroadPhase, backed by the caller's BVH (internal/
// spatial). Unlike the 2D quadtree broad phase, which the simulation
// package rebuilds from scratch every substep, a BroadPhase3D
// implementation is expected to Update its tree incrementally (§4.6 step
// 4) rather than discard and rebuild it.
type BroadPhase3D func(world *ecs.World) [][2]ecs.Entity

// Step3D runs one tick's worth of 3D physics, structurally identical to
// Step one dimension up: SubSteps rounds of integrate → broad phase →
// Iterations passes of impulse resolution → positional correction.
func Step3D(world *ecs.World, cfg Config3D, dt fixedmath.Fixed64, layers *LayerMatrix, broadPhase BroadPhase3D) {
	if cfg.SubSteps <= 0 {
		cfg.SubSteps = 1
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1
	}
	subDt := dt.Div(fixedmath.FromInt(int64(cfg.SubSteps)))

	for i := 0; i < cfg.SubSteps; i++ {
		integrate3D(world, cfg.Gravity, subDt)
		pairs := broadPhase(world)
		for iter := 0; iter < cfg.Iterations; iter++ {
			resolvePairs3D(world, pairs, layers)
		}
	}
}

func integrate3D(world *ecs.World, gravity fixedmath.Vec3, dt fixedmath.Fixed64) {
	ecs.Iter3(world, func(e ecs.Entity, t *components.Transform3D, v *components.Velocity3D, b *components.PhysicsBody) bool {
		if b.Static {
			return true
		}
		if b.GravityOn {
			v.Linear = v.Linear.Add(gravity.Scale(dt))
		}
		if b.Damping.Sign() > 0 {
			dampFactor := fixedmath.One.Sub(b.Damping.Mul(dt))
			if dampFactor.Sign() < 0 {
				dampFactor = fixedmath.Zero
			}
			v.Linear = v.Linear.Scale(dampFactor)
		}
		t.Position = t.Position.Add(v.Linear.Scale(dt))
		return true
	})
}

func resolvePairs3D(world *ecs.World, pairs [][2]ecs.Entity, layers *LayerMatrix) {
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		ta, okA := ecs.Get[components.Transform3D](world, a)
		tb, okB := ecs.Get[components.Transform3D](world, b)
		sa, okSA := ecs.Get[components.CollisionShape3D](world, a)
		sb, okSB := ecs.Get[components.CollisionShape3D](world, b)
		if !okA || !okB || !okSA || !okSB {
			continue
		}
		ba, okBA := ecs.Get[components.PhysicsBody](world, a)
		bodyB, okBB := ecs.Get[components.PhysicsBody](world, b)
		if !okBA || !okBB {
			continue
		}
		if layers != nil && layers.Ignored(ba.Layer, bodyB.Layer) {
			continue
		}

		bodyA := Body3D{Entity: a, Pos: ta.Position, Shape: sa, Layer: ba.Layer}
		bodyBVal := Body3D{Entity: b, Pos: tb.Position, Shape: sb, Layer: bodyB.Layer}
		contact, hit := Test3D(bodyA, bodyBVal)
		if !hit {
			continue
		}

		recordContact(world, a, b)

		if ba.Trigger || bodyB.Trigger {
			continue
		}

		va, _ := ecs.GetPtr[components.Velocity3D](world, a)
		vb, _ := ecs.GetPtr[components.Velocity3D](world, b)
		if va == nil || vb == nil {
			continue
		}

		mat := MaterialPair3D{
			InvMassA:     ba.InvMass(),
			InvMassB:     bodyB.InvMass(),
			RestitutionA: ba.Restitution,
			RestitutionB: bodyB.Restitution,
			FrictionA:    ba.Friction,
			FrictionB:    bodyB.Friction,
			VelA:         va.Linear,
			VelB:         vb.Linear,
		}
		deltaA, deltaB := ResolveImpulse3D(contact, mat)
		va.Linear = va.Linear.Add(deltaA)
		vb.Linear = vb.Linear.Add(deltaB)

		corrA, corrB := PositionalCorrection3D(contact, ba.InvMass(), bodyB.InvMass())
		if tp, ok := ecs.GetPtr[components.Transform3D](world, a); ok {
			tp.Position = tp.Position.Add(corrA)
		}
		if tp, ok := ecs.GetPtr[components.Transform3D](world, b); ok {
			tp.Position = tp.Position.Add(corrB)
		}
	}
}
