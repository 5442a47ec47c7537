package physics

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// Config holds the per-room physics tuning the Step pipeline needs.
type Config struct {
	Gravity    fixedmath.Vec2
	SubSteps   int
	Iterations int
}

// BroadPhase returns candidate pairs to test in the narrow phase; it is
// supplied by the caller (the simulation package, backed by a Quadtree) so
// this package never depends on internal/spatial.
type BroadPhase func(world *ecs.World) [][2]ecs.Entity

// Step runs one tick's worth of physics: SubSteps rounds of integrate →
// broad phase → narrow phase → Iterations passes of impulse resolution →
// positional correction. Collision components accumulate contacts across
// every substep of the tick; callers reset them beforehand via the
// Cleanup system, not here.
func Step(world *ecs.World, cfg Config, dt fixedmath.Fixed64, layers *LayerMatrix, broadPhase BroadPhase) {
	if cfg.SubSteps <= 0 {
		cfg.SubSteps = 1
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1
	}
	subDt := dt.Div(fixedmath.FromInt(int64(cfg.SubSteps)))

	for i := 0; i < cfg.SubSteps; i++ {
		integrate(world, cfg.Gravity, subDt)
		pairs := broadPhase(world)
		for iter := 0; iter < cfg.Iterations; iter++ {
			resolvePairs(world, pairs, layers)
		}
	}
	clearForces(world)
}

// ApplyForce queues a user force on e for the current tick; it is
// integrated across every substep and cleared when Step finishes.
func ApplyForce(world *ecs.World, e ecs.Entity, f fixedmath.Vec2) {
	if acc, ok := ecs.GetPtr[components.Force](world, e); ok {
		acc.Accum = acc.Accum.Add(f)
		return
	}
	ecs.Add(world, e, components.Force{Accum: f})
}

func clearForces(world *ecs.World) {
	ecs.Each[components.Force](world, func(e ecs.Entity, f *components.Force) bool {
		f.Accum = fixedmath.Vec2{}
		return true
	})
}

// integrate applies semi-implicit Euler: velocity updates from
// acceleration first, then position updates from the new velocity. Damping
// is applied multiplicatively per substep.
func integrate(world *ecs.World, gravity fixedmath.Vec2, dt fixedmath.Fixed64) {
	ecs.Iter3(world, func(e ecs.Entity, t *components.Transform2D, v *components.Velocity, b *components.PhysicsBody) bool {
		if b.Static {
			return true
		}
		if b.GravityOn {
			v.Linear = v.Linear.Add(gravity.Scale(dt))
		}
		if f, ok := ecs.Get[components.Force](world, e); ok {
			v.Linear = v.Linear.Add(f.Accum.Scale(b.InvMass()).Scale(dt))
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

func resolvePairs(world *ecs.World, pairs [][2]ecs.Entity, layers *LayerMatrix) {
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		ta, okA := ecs.Get[components.Transform2D](world, a)
		tb, okB := ecs.Get[components.Transform2D](world, b)
		sa, okSA := ecs.Get[components.CollisionShape](world, a)
		sb, okSB := ecs.Get[components.CollisionShape](world, b)
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

		bodyA := Body{Entity: a, Pos: ta.Position, Shape: sa, Layer: ba.Layer}
		bodyBVal := Body{Entity: b, Pos: tb.Position, Shape: sb, Layer: bodyB.Layer}
		contact, hit := Test(bodyA, bodyBVal)
		if !hit {
			continue
		}

		recordContact(world, a, b)

		if ba.Trigger || bodyB.Trigger {
			continue
		}

		va, _ := ecs.GetPtr[components.Velocity](world, a)
		vb, _ := ecs.GetPtr[components.Velocity](world, b)
		if va == nil || vb == nil {
			continue
		}

		mat := MaterialPair{
			InvMassA:     ba.InvMass(),
			InvMassB:     bodyB.InvMass(),
			RestitutionA: ba.Restitution,
			RestitutionB: bodyB.Restitution,
			FrictionA:    ba.Friction,
			FrictionB:    bodyB.Friction,
			VelA:         va.Linear,
			VelB:         vb.Linear,
		}
		deltaA, deltaB := ResolveImpulse(contact, mat)
		va.Linear = va.Linear.Add(deltaA)
		vb.Linear = vb.Linear.Add(deltaB)

		corrA, corrB := PositionalCorrection(contact, ba.InvMass(), bodyB.InvMass())
		if tp, ok := ecs.GetPtr[components.Transform2D](world, a); ok {
			tp.Position = tp.Position.Add(corrA)
		}
		if tp, ok := ecs.GetPtr[components.Transform2D](world, b); ok {
			tp.Position = tp.Position.Add(corrB)
		}
	}
}

func recordContact(world *ecs.World, a, b ecs.Entity) {
	if c, ok := ecs.GetPtr[components.Collision](world, a); ok {
		c.Add(b)
	}
	if c, ok := ecs.GetPtr[components.Collision](world, b); ok {
		c.Add(a)
	}
}
