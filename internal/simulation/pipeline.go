package simulation

import (
	"sort"

	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
	"github.com/fight-club/lockstep/internal/physics"
	"github.com/fight-club/lockstep/internal/spatial"
)

// World is the per-room simulation context: the ECS world plus the static
// navigation grid and cached flow field the AI systems consult. It is
// what gets deep-cloned by the rollback controller's snapshot ring.
type World struct {
	ECS       *ecs.World
	Grid      components.GridMap
	FlowField *components.FlowField
	Layers    *physics.LayerMatrix

	// Rand is the world's deterministic RNG. It is simulation state: it
	// participates in snapshots, and two worlds with equal Rand state draw
	// identical sequences forever after.
	Rand *fixedmath.FixRand

	// FlowFieldTimer counts down to the next flow-field recompute; like
	// Rand it is simulation state and must survive snapshot round-trips,
	// or replayed frames would recompute the field on different ticks.
	FlowFieldTimer fixedmath.Fixed64

	// BVH3D is the incremental 3D broad-phase index grenades are tracked
	// in. It is derived data (§3): never snapshotted, only rebuilt empty
	// and repopulated on Clone.
	BVH3D *spatial.BVH
}

// NewWorld creates an empty simulation World; callers add gameplay
// entities and layer ignore rules afterward.
func NewWorld(grid components.GridMap) *World {
	return &World{
		ECS:    ecs.NewWorld(),
		Grid:   grid,
		Layers: physics.NewLayerMatrix(),
		Rand:   fixedmath.NewFixRand(0),
		BVH3D:  spatial.NewBVH(spatial.BVHConfig{}),
	}
}

// Clone deep-copies the simulation World, matching the rollback
// controller's snapshot contract: identical future evolution under
// identical inputs. BVH3D is spatial-index state, not simulation state
// (§3), so the clone gets an empty tree at the same tuning rather than a
// copy of the live one; bvhBroadPhase3D repopulates it from Transform3D/
// CollisionShape3D on its first call against the clone.
func (w *World) Clone() *World {
	out := &World{
		ECS:            w.ECS.Clone(),
		Grid:           w.Grid.CloneComponent(),
		Layers:         w.Layers,
		Rand:           w.Rand.Clone(),
		FlowFieldTimer: w.FlowFieldTimer,
		BVH3D:          spatial.NewBVH(w.BVH3D.Config()),
	}
	if w.FlowField != nil {
		cloned := w.FlowField.CloneComponent()
		out.FlowField = &cloned
	}
	return out
}

// quadtreeBroadPhase builds a fresh Quadtree from current Transform2D +
// CollisionShape pairs and returns every overlapping-AABB pair as physics
// candidates. Rebuilding each substep keeps the index trivially correct at
// the cost of throwing away incremental updates — acceptable at the
// per-room entity counts this simulation targets.
func quadtreeBroadPhase(world *ecs.World, worldBounds spatial.AABB2, qtCfg spatial.QuadtreeConfig) [][2]ecs.Entity {
	qt := spatial.NewQuadtree(worldBounds, qtCfg)

	var entities []ecs.Entity
	bounds := make(map[ecs.Entity]spatial.AABB2)

	ecs.Iter2(world, func(e ecs.Entity, t *components.Transform2D, s *components.CollisionShape) bool {
		aabb := shapeAABB(t.Position, *s)
		qt.Insert(e, aabb)
		entities = append(entities, e)
		bounds[e] = aabb
		return true
	})

	seen := make(map[[2]ecs.Entity]struct{})
	var pairs [][2]ecs.Entity
	for _, e := range entities {
		for _, other := range qt.Query(bounds[e]) {
			if other == e {
				continue
			}
			key := pairKey(e, other)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pairs = append(pairs, key)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func pairKey(a, b ecs.Entity) [2]ecs.Entity {
	if a > b {
		a, b = b, a
	}
	return [2]ecs.Entity{a, b}
}

// bvhBroadPhase3D synchronizes bvh incrementally with the current
// Transform3D + CollisionShape3D entities (Insert treats an already-
// tracked id as an Update, §4.5) rather than rebuilding it, then queries
// every entity's own bounds to form the candidate pair list. Entities
// removed from the ECS since the last call are pruned from the index
// explicitly, since the BVH has no way to observe destruction on its own.
func bvhBroadPhase3D(world *ecs.World, bvh *spatial.BVH) [][2]ecs.Entity {
	live := make(map[ecs.Entity]struct{})
	var entities []ecs.Entity
	bounds := make(map[ecs.Entity]spatial.AABB3)

	ecs.Iter2(world, func(e ecs.Entity, t *components.Transform3D, s *components.CollisionShape3D) bool {
		aabb := shapeAABB3(t.Position, *s)
		bvh.Insert(e, aabb)
		entities = append(entities, e)
		bounds[e] = aabb
		live[e] = struct{}{}
		return true
	})

	for _, id := range bvh.Entities() {
		if _, ok := live[id]; !ok {
			bvh.Remove(id)
		}
	}

	seen := make(map[[2]ecs.Entity]struct{})
	var pairs [][2]ecs.Entity
	for _, e := range entities {
		for _, other := range bvh.Query(bounds[e]) {
			if other == e {
				continue
			}
			key := pairKey(e, other)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pairs = append(pairs, key)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func shapeAABB3(pos fixedmath.Vec3, s components.CollisionShape3D) spatial.AABB3 {
	var half fixedmath.Vec3
	if s.Kind == components.Shape3DSphere {
		half = fixedmath.NewVec3(s.Radius, s.Radius, s.Radius)
	} else {
		half = s.HalfExtents()
		diag := fixedmath.Sqrt(half.X.Mul(half.X).Add(half.Y.Mul(half.Y)).Add(half.Z.Mul(half.Z)))
		half = fixedmath.NewVec3(diag, diag, diag)
	}
	return spatial.AABB3{Min: pos.Sub(half), Max: pos.Add(half)}
}

func shapeAABB(pos fixedmath.Vec2, s components.CollisionShape) spatial.AABB2 {
	var half fixedmath.Vec2
	if s.Kind == components.ShapeCircle {
		half = fixedmath.NewVec2(s.Radius, s.Radius)
	} else {
		half = s.HalfExtents()
		diag := fixedmath.Sqrt(half.X.Mul(half.X).Add(half.Y.Mul(half.Y)))
		half = fixedmath.NewVec2(diag, diag)
	}
	return spatial.AABB2{Min: pos.Sub(half), Max: pos.Add(half)}
}

// Execute runs the full ordered system pipeline for one tick: InputApply,
// PlayerAction, ZombieAI, FlowFieldRefresh, Pathfinding, Movement,
// PhysicsStep (2D, then 3D), CollisionEffects, Explosion lifetime,
// GrenadeFuse, StiffTimers, DeathSystem, Cleanup.
func Execute(world *World, frameInputs []FrameInput, cfg Config) {
	dt := cfg.TickInterval

	InputApply(world.ECS, frameInputs, cfg)
	PlayerAction(world.ECS, cfg, dt)
	ZombieAISystem(world.ECS, cfg, dt)
	FlowFieldRefresh(world, cfg, dt)
	Pathfinding(world.ECS, world.Grid, world.FlowField, cfg.PlayerSpeed)
	Movement(world.ECS)
	broadPhase := func(ecsWorld *ecs.World) [][2]ecs.Entity {
		return quadtreeBroadPhase(ecsWorld, cfg.WorldBounds, cfg.Quadtree)
	}
	physics.Step(world.ECS, cfg.Physics, dt, world.Layers, broadPhase)
	broadPhase3D := func(ecsWorld *ecs.World) [][2]ecs.Entity {
		return bvhBroadPhase3D(ecsWorld, world.BVH3D)
	}
	physics.Step3D(world.ECS, cfg.Physics3D, dt, world.Layers, broadPhase3D)
	CollisionEffects(world.ECS)
	ExplosionLifetime(world.ECS, dt)
	GrenadeFuse(world.ECS, dt)
	StiffTimers(world.ECS, dt)
	DeathSystem(world.ECS)
	Cleanup(world.ECS)
}
