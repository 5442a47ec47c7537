package physics

import (
	"testing"

	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

func allPairsBroadPhase(world *ecs.World) [][2]ecs.Entity {
	var entities []ecs.Entity
	ecs.Each[components.CollisionShape](world, func(e ecs.Entity, _ *components.CollisionShape) bool {
		entities = append(entities, e)
		return true
	})
	var pairs [][2]ecs.Entity
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			pairs = append(pairs, [2]ecs.Entity{entities[i], entities[j]})
		}
	}
	return pairs
}

func TestStepIntegratesGravity(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	ecs.Add(w, e, components.Transform2D{Position: vec(0, 100)})
	ecs.Add(w, e, components.Velocity{})
	ecs.Add(w, e, components.PhysicsBody{Mass: fixedmath.One, GravityOn: true})
	ecs.Add(w, e, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.One})

	cfg := Config{Gravity: vec(0, -10), SubSteps: 1, Iterations: 1}
	Step(w, cfg, fixedmath.One, nil, allPairsBroadPhase)

	v, _ := ecs.Get[components.Velocity](w, e)
	if v.Linear.Y.Sign() >= 0 {
		t.Fatalf("expected downward velocity after one tick of gravity, got %v", v.Linear)
	}
}

func TestStepIntegratesQueuedForceThenClearsIt(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	ecs.Add(w, e, components.Transform2D{})
	ecs.Add(w, e, components.Velocity{})
	ecs.Add(w, e, components.PhysicsBody{Mass: fixedmath.One})
	ecs.Add(w, e, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.One})

	ApplyForce(w, e, vec(10, 0))
	Step(w, Config{SubSteps: 2, Iterations: 1}, fixedmath.One, nil, allPairsBroadPhase)

	v, _ := ecs.Get[components.Velocity](w, e)
	if v.Linear.X.Sign() <= 0 {
		t.Fatalf("queued force should accelerate the body, got %v", v.Linear)
	}

	f, _ := ecs.Get[components.Force](w, e)
	if f.Accum != (fixedmath.Vec2{}) {
		t.Fatalf("force accumulator should be cleared after the tick, got %v", f.Accum)
	}

	before := v.Linear
	Step(w, Config{SubSteps: 2, Iterations: 1}, fixedmath.One, nil, allPairsBroadPhase)
	after, _ := ecs.Get[components.Velocity](w, e)
	if after.Linear != before {
		t.Fatalf("cleared force should not keep accelerating: %v -> %v", before, after.Linear)
	}
}

func TestStepResolvesOverlapAndRecordsCollision(t *testing.T) {
	w := ecs.NewWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()

	ecs.Add(w, a, components.Transform2D{Position: vec(0, 0)})
	ecs.Add(w, a, components.Velocity{Linear: vec(1, 0)})
	ecs.Add(w, a, components.PhysicsBody{Mass: fixedmath.One, Restitution: fixedmath.Half, Friction: fixedmath.Zero})
	ecs.Add(w, a, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.FromInt(5)})
	ecs.Add(w, a, components.Collision{})

	ecs.Add(w, b, components.Transform2D{Position: vec(8, 0)})
	ecs.Add(w, b, components.Velocity{Linear: vec(-1, 0)})
	ecs.Add(w, b, components.PhysicsBody{Mass: fixedmath.One, Restitution: fixedmath.Half, Friction: fixedmath.Zero})
	ecs.Add(w, b, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.FromInt(5)})
	ecs.Add(w, b, components.Collision{})

	cfg := Config{SubSteps: 1, Iterations: 2}
	Step(w, cfg, fixedmath.One, nil, allPairsBroadPhase)

	ca, _ := ecs.Get[components.Collision](w, a)
	cb, _ := ecs.Get[components.Collision](w, b)
	if !ca.Contains(b) || !cb.Contains(a) {
		t.Fatalf("expected mutual collision record, got a=%+v b=%+v", ca, cb)
	}
}

// TestStepFullySeparatesStaticDynamicPair checks that a dynamic body
// overlapping a static one is pushed out to zero residual penetration
// within the configured Iterations passes, per §4.6's full-separation
// (not Baumgarte-softened) positional correction contract.
func TestStepFullySeparatesStaticDynamicPair(t *testing.T) {
	w := ecs.NewWorld()
	static := w.CreateEntity()
	dyn := w.CreateEntity()

	ecs.Add(w, static, components.Transform2D{Position: vec(0, 0)})
	ecs.Add(w, static, components.Velocity{})
	ecs.Add(w, static, components.PhysicsBody{Static: true})
	ecs.Add(w, static, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.FromInt(5)})
	ecs.Add(w, static, components.Collision{})

	ecs.Add(w, dyn, components.Transform2D{Position: vec(8, 0)})
	ecs.Add(w, dyn, components.Velocity{})
	ecs.Add(w, dyn, components.PhysicsBody{Mass: fixedmath.One})
	ecs.Add(w, dyn, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.FromInt(5)})
	ecs.Add(w, dyn, components.Collision{})

	Step(w, Config{SubSteps: 1, Iterations: 4}, fixedmath.One, nil, allPairsBroadPhase)

	ts, _ := ecs.Get[components.Transform2D](w, static)
	if ts.Position != vec(0, 0) {
		t.Fatalf("static body must not move, got %v", ts.Position)
	}
	td, _ := ecs.Get[components.Transform2D](w, dyn)
	dist := td.Position.Sub(ts.Position).Magnitude()
	wantMin := fixedmath.FromInt(10) // sum of radii
	if dist.Cmp(wantMin) < 0 {
		t.Fatalf("expected residual penetration ~0 after iterations, center distance %v < sum-of-radii %v", dist, wantMin)
	}
}

func TestStepSkipsIgnoredLayers(t *testing.T) {
	w := ecs.NewWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()

	ecs.Add(w, a, components.Transform2D{Position: vec(0, 0)})
	ecs.Add(w, a, components.Velocity{})
	ecs.Add(w, a, components.PhysicsBody{Mass: fixedmath.One, Layer: 1})
	ecs.Add(w, a, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.FromInt(5)})
	ecs.Add(w, a, components.Collision{})

	ecs.Add(w, b, components.Transform2D{Position: vec(5, 0)})
	ecs.Add(w, b, components.Velocity{})
	ecs.Add(w, b, components.PhysicsBody{Mass: fixedmath.One, Layer: 2})
	ecs.Add(w, b, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.FromInt(5)})
	ecs.Add(w, b, components.Collision{})

	layers := NewLayerMatrix()
	layers.SetIgnored(1, 2, true)

	Step(w, Config{SubSteps: 1, Iterations: 1}, fixedmath.One, layers, allPairsBroadPhase)

	ca, _ := ecs.Get[components.Collision](w, a)
	if ca.Count != 0 {
		t.Fatalf("ignored layer pair should not record a collision, got %+v", ca)
	}
}
