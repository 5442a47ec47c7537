// Package simulation wires the component stores, physics step, and AI/
// gameplay rules into the fixed-order system pipeline that runs once per
// tick, both on the authoritative server and speculatively on the client.
package simulation

import (
	"github.com/fight-club/lockstep/internal/config"
	"github.com/fight-club/lockstep/internal/fixedmath"
	"github.com/fight-club/lockstep/internal/physics"
	"github.com/fight-club/lockstep/internal/spatial"
)

// Config bundles every tunable the pipeline's systems read. Defaults mirror
// the values named in the design: 20 Hz tick, 4 physics substeps, 4
// resolution iterations per substep.
type Config struct {
	Physics   physics.Config
	Physics3D physics.Config3D

	// Quadtree and WorldBounds tune the 2D broad phase rebuilt each substep
	// (§4.4); WorldBounds is the root rectangle before any auto-resize.
	Quadtree    spatial.QuadtreeConfig
	WorldBounds spatial.AABB2

	// BVH tunes the incremental 3D broad phase grenades are tracked in
	// (§4.5); unlike Quadtree it is never rebuilt wholesale from this
	// config after NewRoomWorld constructs it.
	BVH spatial.BVHConfig

	TickInterval fixedmath.Fixed64

	PlayerSpeed       fixedmath.Fixed64
	ShootCooldown     fixedmath.Fixed64
	PlaceCooldown     fixedmath.Fixed64
	BulletSpeed       fixedmath.Fixed64
	BulletDamage      int
	BulletLifetime    fixedmath.Fixed64

	GrenadeCooldown     fixedmath.Fixed64
	GrenadeThrowSpeed   fixedmath.Fixed64
	GrenadeFuseDuration fixedmath.Fixed64
	GrenadeRadius       fixedmath.Fixed64
	GrenadeDamage       int

	ZombieAttackRange       fixedmath.Fixed64
	ZombieAttackWindup      fixedmath.Fixed64
	ZombieAttackCooldown    fixedmath.Fixed64
	ZombieAttackDamage      int
	FlowFieldCooldown       fixedmath.Fixed64

	StiffDuration fixedmath.Fixed64
}

// DefaultConfig returns the stock tuning used when a room doesn't override
// it, matching the server's 50ms/20Hz tick.
func DefaultConfig() Config {
	return Config{
		Physics: physics.Config{
			Gravity:    fixedmath.Vec2{},
			SubSteps:   4,
			Iterations: 4,
		},
		Physics3D: physics.Config3D{
			Gravity:    fixedmath.NewVec3(fixedmath.Zero, fixedmath.FromInt(-10), fixedmath.Zero),
			SubSteps:   4,
			Iterations: 4,
		},
		Quadtree: spatial.QuadtreeConfig{MaxObjectsPerNode: 8, MaxDepth: 8},
		WorldBounds: spatial.AABB2{
			Min: fixedmath.NewVec2(fixedmath.FromInt(-1000), fixedmath.FromInt(-1000)),
			Max: fixedmath.NewVec2(fixedmath.FromInt(1000), fixedmath.FromInt(1000)),
		},
		BVH:                  spatial.BVHConfig{LeafCapacity: 4, MaxDepth: 12},
		TickInterval:         fixedmath.FromRaw(fixedmath.One.Raw() / 20), // 0.05
		PlayerSpeed:          fixedmath.FromInt(5),
		ShootCooldown:        fixedmath.FromRaw(fixedmath.One.Raw() / 4),
		PlaceCooldown:        fixedmath.One,
		BulletSpeed:          fixedmath.FromInt(20),
		BulletDamage:         10,
		BulletLifetime:       fixedmath.FromInt(2),
		GrenadeCooldown:      fixedmath.FromInt(3),
		GrenadeThrowSpeed:    fixedmath.FromInt(10),
		GrenadeFuseDuration:  fixedmath.FromInt(3),
		GrenadeRadius:        fixedmath.FromInt(4),
		GrenadeDamage:        60,
		ZombieAttackRange:    fixedmath.FromInt(2),
		ZombieAttackWindup:   fixedmath.FromRaw(fixedmath.One.Raw() / 2),
		ZombieAttackCooldown: fixedmath.One,
		ZombieAttackDamage:   15,
		FlowFieldCooldown:    fixedmath.FromInt(2),
		StiffDuration:        fixedmath.FromRaw(fixedmath.One.Raw() / 3),
	}
}

// FromAppConfig overlays the env-overridable startup configuration (§6:
// "gravity vector, integration iterations, sub_steps, quadtree
// max_objects_per_node/max_depth") onto DefaultConfig's gameplay tuning,
// which has no equivalent in config.AppConfig and is left untouched.
func FromAppConfig(app config.AppConfig) Config {
	cfg := DefaultConfig()
	cfg.Physics.Gravity = fixedmath.NewVec2(
		fixedmath.FromConfigFloat(app.Physics.GravityX),
		fixedmath.FromConfigFloat(app.Physics.GravityY),
	)
	cfg.Physics.SubSteps = app.Physics.SubSteps
	cfg.Physics.Iterations = app.Physics.Iterations
	cfg.Quadtree = spatial.QuadtreeConfig{
		MaxObjectsPerNode: app.Spatial.QuadtreeMaxObjectsPerNode,
		MaxDepth:          app.Spatial.QuadtreeMaxDepth,
	}
	cfg.BVH = spatial.BVHConfig{
		LeafCapacity: app.Spatial.BVHLeafCapacity,
		MaxDepth:     app.Spatial.BVHMaxDepth,
	}
	return cfg
}
