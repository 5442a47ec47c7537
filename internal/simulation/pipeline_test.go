package simulation

import (
	"testing"

	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

func newTestWorld() *World {
	return NewWorld(emptyGrid(20, 20))
}

func spawnPlayer(w *World, id uint32, pos fixedmath.Vec2) ecs.Entity {
	e := w.ECS.CreateEntity()
	ecs.Add(w.ECS, e, components.Transform2D{Position: pos})
	ecs.Add(w.ECS, e, components.Velocity{})
	ecs.Add(w.ECS, e, components.PhysicsBody{Mass: fixedmath.One})
	ecs.Add(w.ECS, e, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.One})
	ecs.Add(w.ECS, e, components.Player{PlayerID: id})
	ecs.Add(w.ECS, e, components.HP{Current: 100, Max: 100})
	ecs.Add(w.ECS, e, components.Collision{})
	return e
}

func TestExecuteMovesPlayerByInput(t *testing.T) {
	w := newTestWorld()
	e := spawnPlayer(w, 1, fixedmath.Vec2{})
	cfg := DefaultConfig()

	Execute(w, []FrameInput{{PlayerID: 1, Direction: fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)}}, cfg)

	t2, _ := ecs.Get[components.Transform2D](w.ECS, e)
	if t2.Position.X.Sign() <= 0 {
		t.Fatalf("expected player to move in +X after one tick, got %v", t2.Position)
	}
}

func TestExecuteIsDeterministicGivenSameInputs(t *testing.T) {
	w1 := newTestWorld()
	w2 := newTestWorld()
	spawnPlayer(w1, 1, fixedmath.Vec2{})
	spawnPlayer(w2, 1, fixedmath.Vec2{})
	cfg := DefaultConfig()

	inputs := []FrameInput{{PlayerID: 1, Direction: fixedmath.NewVec2(fixedmath.One, fixedmath.One)}}
	for i := 0; i < 10; i++ {
		Execute(w1, inputs, cfg)
		Execute(w2, inputs, cfg)
	}

	var positions1, positions2 []fixedmath.Vec2
	ecs.Each[components.Transform2D](w1.ECS, func(e ecs.Entity, t *components.Transform2D) bool {
		positions1 = append(positions1, t.Position)
		return true
	})
	ecs.Each[components.Transform2D](w2.ECS, func(e ecs.Entity, t *components.Transform2D) bool {
		positions2 = append(positions2, t.Position)
		return true
	})
	if len(positions1) != len(positions2) {
		t.Fatalf("entity counts diverged: %d vs %d", len(positions1), len(positions2))
	}
	for i := range positions1 {
		if positions1[i] != positions2[i] {
			t.Fatalf("position %d diverged: %v vs %v", i, positions1[i], positions2[i])
		}
	}
}

func TestExecuteCleanupResetsCollisionsEachTick(t *testing.T) {
	w := newTestWorld()
	a := spawnPlayer(w, 1, fixedmath.Vec2{})
	b := spawnPlayer(w, 2, fixedmath.NewVec2(fixedmath.FromInt(5), fixedmath.Zero))
	cfg := DefaultConfig()

	Execute(w, nil, cfg)

	ca, _ := ecs.Get[components.Collision](w.ECS, a)
	cb, _ := ecs.Get[components.Collision](w.ECS, b)
	_ = ca
	_ = cb
	// After a tick with no further overlap forcing inputs, Cleanup must
	// have run: Dropped counters reset to zero even if contacts existed.
	if ca.Dropped != 0 || cb.Dropped != 0 {
		t.Fatalf("Cleanup should reset Dropped counters: %+v %+v", ca, cb)
	}
}

func TestDeathSystemDownsPlayerInsteadOfDestroying(t *testing.T) {
	w := newTestWorld()
	e := spawnPlayer(w, 1, fixedmath.Vec2{})
	ecs.Add(w.ECS, e, components.Death{Cause: components.DeathBulletHit})

	DeathSystem(w.ECS)

	if !w.ECS.Alive(e) {
		t.Fatal("a downed player should not be destroyed")
	}
	p, _ := ecs.Get[components.Player](w.ECS, e)
	if p.Mode != components.PlayerModeDowned {
		t.Fatalf("expected player mode Downed, got %v", p.Mode)
	}
	if ecs.Has[components.Death](w.ECS, e) {
		t.Fatal("Death tag should be cleared after being processed for a player")
	}
}

func TestDeathSystemDestroysNonPlayerEntities(t *testing.T) {
	w := newTestWorld()
	e := w.ECS.CreateEntity()
	ecs.Add(w.ECS, e, components.Transform2D{})
	ecs.Add(w.ECS, e, components.Death{Cause: components.DeathExplosion})

	DeathSystem(w.ECS)

	if w.ECS.Alive(e) {
		t.Fatal("a non-player entity with a Death tag should be destroyed")
	}
}
