package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
	"github.com/fight-club/lockstep/internal/spatial"
)

// RoomGridCells is the default navigation grid a room's world starts with:
// a 40x40 cell grid at one world-unit per cell, covering world coordinates
// 0 to 40 on each axis. The spawn ring computed below is centred on the
// origin, so spawn points with a negative coordinate lie outside the grid.
const RoomGridCells = 40

// NewRoomWorld builds the authoritative world a GAME_START seeds for every
// member of a room: one Player entity per ID in playerIDs, arranged on a
// deterministic ring around the origin so no two players ever spawn
// overlapping. The room's seed becomes the world's FixRand state, so every
// client that replays GAME_START constructs byte-identical starting state
// and draws the same random sequence forever after.
func NewRoomWorld(seed int64, playerIDs []uint32, cfg Config) *World {
	grid := components.GridMap{
		Width:    RoomGridCells,
		Height:   RoomGridCells,
		CellSize: fixedmath.One,
	}
	world := NewWorld(grid)
	world.BVH3D = spatial.NewBVH(cfg.BVH)
	world.Rand = fixedmath.NewFixRand(seed)

	// Bullets never collide with each other; grenades fly over everything
	// in the 2D plane, only the ground interaction matters.
	world.Layers.SetIgnored(LayerBullet, LayerBullet, true)
	world.Layers.SetIgnored(LayerGrenade, LayerBullet, true)

	radius := fixedmath.FromInt(6)
	n := len(playerIDs)
	for i, pid := range playerIDs {
		angle := fixedmath.Zero
		if n > 0 {
			step := fixedmath.Two.Mul(fixedmath.Pi).Div(fixedmath.FromInt(int64(n)))
			angle = step.Mul(fixedmath.FromInt(int64(i)))
		}
		pos := fixedmath.NewVec2(fixedmath.Cos(angle), fixedmath.Sin(angle)).Scale(radius)

		e := world.ECS.CreateEntity()
		ecs.Add(world.ECS, e, components.Transform2D{Position: pos})
		ecs.Add(world.ECS, e, components.Velocity{})
		ecs.Add(world.ECS, e, components.PhysicsBody{
			Mass:        fixedmath.One,
			Restitution: fixedmath.Half,
			Friction:    fixedmath.Half,
			Damping:     fixedmath.FromRaw(fixedmath.One.Raw() / 10),
			Layer:       LayerPlayer,
		})
		ecs.Add(world.ECS, e, components.NewCircleShape(fixedmath.Half))
		ecs.Add(world.ECS, e, components.HP{Current: 100, Max: 100})
		ecs.Add(world.ECS, e, components.Player{PlayerID: pid})
		ecs.Add(world.ECS, e, components.Team{TeamID: "players"})
		ecs.Add(world.ECS, e, components.Collision{})
	}

	// Reserve the first draw for spawn-layout jitter, matching the source's
	// convention; rooms that never use it still advance the state once so
	// seeds can't collide with a raw-seed room.
	_ = world.Rand.NextInt(1 << 16)

	return world
}

// Layer bit values the ignore matrix and collision shapes key off.
const (
	LayerPlayer uint32 = 1 << iota
	LayerBullet
	LayerWall
	LayerBarrel
	LayerZombie
	LayerGrenade
)
