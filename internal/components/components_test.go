package components

import (
	"testing"

	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

func TestCollisionAddAndOverflow(t *testing.T) {
	var c Collision
	for i := ecs.Entity(1); i <= 8; i++ {
		if !c.Add(i) {
			t.Fatalf("slot %d should have been free", i)
		}
	}
	if c.Add(ecs.Entity(99)) {
		t.Fatal("9th Add should have been rejected")
	}
	if c.Dropped != 1 {
		t.Fatalf("expected Dropped=1, got %d", c.Dropped)
	}
	if !c.Contains(ecs.Entity(3)) {
		t.Fatal("Contains should find an entity that was added")
	}
	if c.Contains(ecs.Entity(99)) {
		t.Fatal("Contains should not find the dropped entity")
	}
}

func TestCollisionReset(t *testing.T) {
	var c Collision
	c.Add(ecs.Entity(1))
	c.Reset()
	if c.Count != 0 || c.Dropped != 0 {
		t.Fatalf("Reset did not clear state: %+v", c)
	}
	if c.Contains(ecs.Entity(1)) {
		t.Fatal("Reset should forget prior contacts")
	}
}

func TestZombieAICloneComponentDeepCopiesPath(t *testing.T) {
	z := ZombieAI{Path: []GridCell{{X: 1, Y: 1}, {X: 2, Y: 2}}}
	clone := z.CloneComponent()
	clone.Path[0] = GridCell{X: 99, Y: 99}

	if z.Path[0] != (GridCell{X: 1, Y: 1}) {
		t.Fatalf("clone mutation leaked into original: %v", z.Path)
	}
}

func TestGridMapCloneComponentDeepCopiesObstacles(t *testing.T) {
	g := GridMap{Obstacles: map[GridCell]bool{{X: 1, Y: 1}: true}}
	clone := g.CloneComponent()
	clone.Obstacles[GridCell{X: 2, Y: 2}] = true

	if len(g.Obstacles) != 1 {
		t.Fatalf("clone mutation leaked into original obstacles: %v", g.Obstacles)
	}
}

func TestFlowFieldCloneComponentDeepCopiesGradient(t *testing.T) {
	f := FlowField{Gradient: []fixedmath.Vec2{fixedmath.NewVec2(fixedmath.One, fixedmath.One)}}
	clone := f.CloneComponent()
	clone.Gradient[0] = fixedmath.NewVec2(fixedmath.Two, fixedmath.Two)

	if f.Gradient[0] == clone.Gradient[0] {
		t.Fatal("clone mutation leaked into original gradient")
	}
}

func TestPhysicsBodyInvMass(t *testing.T) {
	static := PhysicsBody{Static: true, Mass: fixedmath.One}
	if static.InvMass() != fixedmath.Zero {
		t.Fatalf("static body should have zero inverse mass, got %v", static.InvMass())
	}
}
