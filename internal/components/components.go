// Package components declares the value-typed component variants the
// simulation step reads and writes (§3/§4 of the design). Each type is
// plain data; dispatch on behavior happens in the simulation package via
// explicit system functions, never via methods that branch on a type tag
// (the "no virtual calls" re-architecture called out in DESIGN NOTES).
package components

import (
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// Transform2D is an entity's position and facing.
type Transform2D struct {
	Position fixedmath.Vec2
	Rotation fixedmath.Fixed64
}

// Velocity is an entity's current linear velocity, consumed and produced by
// Movement/PhysicsStep.
type Velocity struct {
	Linear fixedmath.Vec2
}

// PhysicsBody holds the material properties PhysicsStep needs to integrate
// and resolve collisions for a dynamic (or static) body.
type PhysicsBody struct {
	Mass         fixedmath.Fixed64
	Static       bool
	Trigger      bool
	GravityOn    bool
	Restitution  fixedmath.Fixed64
	Friction     fixedmath.Fixed64
	Damping      fixedmath.Fixed64
	Layer        uint32
}

// InvMass returns 1/Mass, or zero for static bodies (treated as infinite
// mass), matching the impulse-resolution formulas in §4.6.
func (b PhysicsBody) InvMass() fixedmath.Fixed64 {
	if b.Static || b.Mass == fixedmath.Zero {
		return fixedmath.Zero
	}
	return fixedmath.One.Div(b.Mass)
}

// ShapeKind tags which case of the Circle|Box sum a CollisionShape holds.
// Dispatch in the narrow phase is an explicit switch on this tag — no
// virtual calls (DESIGN NOTES §9).
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

// CollisionShape is the tagged-sum shape a body presents to the narrow
// phase. Box width/height are full extents (not half-extents); Rotation is
// radians and is only meaningful for ShapeBox.
type CollisionShape struct {
	Kind     ShapeKind
	Radius   fixedmath.Fixed64 // Circle
	Width    fixedmath.Fixed64 // Box
	Height   fixedmath.Fixed64 // Box
	Rotation fixedmath.Fixed64 // Box, radians
}

func NewCircleShape(radius fixedmath.Fixed64) CollisionShape {
	return CollisionShape{Kind: ShapeCircle, Radius: radius}
}

func NewBoxShape(w, h, rotation fixedmath.Fixed64) CollisionShape {
	return CollisionShape{Kind: ShapeBox, Width: w, Height: h, Rotation: rotation}
}

// HalfExtents returns the box's half-width/half-height; meaningless for
// circles.
func (s CollisionShape) HalfExtents() fixedmath.Vec2 {
	return fixedmath.NewVec2(s.Width.Div(fixedmath.Two), s.Height.Div(fixedmath.Two))
}

// Shape3DKind tags which case of the Sphere|Box3D sum a CollisionShape3D
// holds, mirroring ShapeKind's explicit-switch-dispatch discipline for the
// BVH's 3D narrow phase.
type Shape3DKind int

const (
	Shape3DSphere Shape3DKind = iota
	Shape3DBox
)

// CollisionShape3D is the tagged-sum shape a 3D body presents to the BVH
// narrow phase. Box width/height/length are full extents; RotationY is
// radians about the vertical axis only — a single static orientation
// value, not continuous angular dynamics (Non-goal), kept just expressive
// enough for the 3D SAT test to exercise a rotated case.
type CollisionShape3D struct {
	Kind      Shape3DKind
	Radius    fixedmath.Fixed64 // Sphere
	Width     fixedmath.Fixed64 // Box3D, X extent
	Height    fixedmath.Fixed64 // Box3D, Y extent
	Length    fixedmath.Fixed64 // Box3D, Z extent
	RotationY fixedmath.Fixed64 // Box3D, radians about Y
}

func NewSphereShape(radius fixedmath.Fixed64) CollisionShape3D {
	return CollisionShape3D{Kind: Shape3DSphere, Radius: radius}
}

func NewBox3DShape(w, h, l, rotationY fixedmath.Fixed64) CollisionShape3D {
	return CollisionShape3D{Kind: Shape3DBox, Width: w, Height: h, Length: l, RotationY: rotationY}
}

// HalfExtents returns the box's half-extents along its own local axes;
// meaningless for spheres.
func (s CollisionShape3D) HalfExtents() fixedmath.Vec3 {
	return fixedmath.NewVec3(s.Width.Div(fixedmath.Two), s.Height.Div(fixedmath.Two), s.Length.Div(fixedmath.Two))
}

// Transform3D is a 3D entity's position, used by the grenade subsystem —
// the one gameplay feature with a real need for a third spatial dimension
// (an arced throw, bouncing off walls, detonating on the ground plane).
type Transform3D struct {
	Position fixedmath.Vec3
}

// Velocity3D is a 3D entity's current linear velocity, consumed and
// produced by Physics3DStep exactly as Velocity is for the 2D step.
type Velocity3D struct {
	Linear fixedmath.Vec3
}

// Grenade is a thrown, fused explosive: it falls and bounces under 3D
// physics until its fuse runs out, at which point DeathSystem spawns the
// same 2D Explosion a Barrel would, projected onto the ground plane
// (X, Z) it detonates on.
type Grenade struct {
	Owner         ecs.Entity
	FuseRemaining fixedmath.Fixed64
	Radius        fixedmath.Fixed64
	Damage        int
}

// maxCollisionSlots is the fixed per-entity Collision capacity (§4.6):
// overflow beyond this is dropped and logged once per tick, never
// reallocated.
const maxCollisionSlots = 8

// Collision records up to 8 entities touched this tick. It resets every
// tick (Cleanup system, §4.7 step 11) and is a plain value type (no owned
// collection), so it needs no deep-clone registration.
type Collision struct {
	Contacts [maxCollisionSlots]ecs.Entity
	Count    int
	Dropped  int
}

// Add records id if there is a free slot, returning false (and bumping
// Dropped) if the buffer is already full.
func (c *Collision) Add(id ecs.Entity) bool {
	if c.Count >= maxCollisionSlots {
		c.Dropped++
		return false
	}
	c.Contacts[c.Count] = id
	c.Count++
	return true
}

// Contains reports whether id was recorded this tick.
func (c Collision) Contains(id ecs.Entity) bool {
	for i := 0; i < c.Count; i++ {
		if c.Contacts[i] == id {
			return true
		}
	}
	return false
}

// Reset clears the collision list in place for the Cleanup system.
func (c *Collision) Reset() {
	c.Count = 0
	c.Dropped = 0
}

// Force is the per-tick user-force accumulator: systems queue impulses
// here (explosion knockback, future wind/conveyor effects) and the physics
// step integrates then clears it at the end of the tick.
type Force struct {
	Accum fixedmath.Vec2
}

// HP is current/max hit points, a component distinct from Player per the
// Open Question resolution in SPEC_FULL.md §9.
type HP struct {
	Current int
	Max     int
}

// Stiff tracks a hit-stun timer separately from HP so StiffTimers can
// decrement it independent of damage application ordering.
type Stiff struct {
	Timer    fixedmath.Fixed64
	Duration fixedmath.Fixed64
}

// Death is a tag component: its mere presence marks an entity for
// DeathSystem to process this tick.
type Death struct {
	Cause DeathCause
}

type DeathCause int

const (
	DeathUnknown DeathCause = iota
	DeathBulletHit
	DeathExplosion
	DeathZombieAttack
)

// PlayerMode distinguishes the player's current action-availability state.
type PlayerMode int

const (
	PlayerModeNormal PlayerMode = iota
	PlayerModeDowned
)

// Player holds per-player action cooldowns and identity. HP lives in the
// separate HP component (Open Question resolution).
type Player struct {
	PlayerID          uint32
	Mode              PlayerMode
	ShootCooldown     fixedmath.Fixed64
	PlaceCooldown     fixedmath.Fixed64
	GrenadeCooldown   fixedmath.Fixed64
	SpawnProtection   fixedmath.Fixed64
	TeamID            string
	ComboCount        int
	ComboWindow       fixedmath.Fixed64
	Stamina           fixedmath.Fixed64
}

// Bullet is a projectile fired by a player.
type Bullet struct {
	Owner    ecs.Entity
	Velocity fixedmath.Vec2
	Damage   int
	Lifetime fixedmath.Fixed64
}

// Wall is a player-placed obstacle.
type Wall struct {
	HP int
}

// WallPlacement marks a wall pending the placement-trigger flip
// CollisionEffects applies when something first touches it (§4.7 step 7).
type WallPlacement struct {
	Triggered bool
}

// Barrel explodes into an Explosion entity when destroyed (DeathSystem,
// §4.7 step 10).
type Barrel struct {
	HP              int
	ExplosionRadius fixedmath.Fixed64
	ExplosionDamage int
}

// Explosion is a transient area-damage hazard; it advances its own timer
// and, on expiry, queues damage to everything within Radius before
// destroying itself (§4.7 step 8).
type Explosion struct {
	Radius          fixedmath.Fixed64
	Damage          int
	TimerRemaining  fixedmath.Fixed64
	Owner           ecs.Entity
	DamageApplied   bool
}

// ZombieState is the Chase -> AttackWindup -> Attack -> AttackCooldown
// state machine named in §4.7 step 3.
type ZombieState int

const (
	ZombieChase ZombieState = iota
	ZombieAttackWindup
	ZombieAttack
	ZombieAttackCooldown
)

// GridCell is an integer grid coordinate, used by GridMap/FlowField and by
// the A*/flow-field pathfinding tie-breaker (f-value, then x, then y).
type GridCell struct {
	X, Y int
}

// ZombieAI drives one zombie's pathfinding and attack state. Path is an
// owned collection and therefore requires CloneComponent.
type ZombieAI struct {
	Target            ecs.Entity
	State             ZombieState
	StateTimer        fixedmath.Fixed64
	AttackRange       fixedmath.Fixed64
	AttackDamage      int
	AttackWindupDur   fixedmath.Fixed64
	AttackCooldownDur fixedmath.Fixed64
	FlowFieldCooldown fixedmath.Fixed64
	Path              []GridCell
}

// CloneComponent deep-copies Path so snapshot clones never alias the
// original's backing array.
func (z ZombieAI) CloneComponent() ZombieAI {
	out := z
	if z.Path != nil {
		out.Path = make([]GridCell, len(z.Path))
		copy(out.Path, z.Path)
	}
	return out
}

// GridMap is the static navigation grid; Obstacles is an owned collection
// and requires CloneComponent.
type GridMap struct {
	Width, Height int
	CellSize      fixedmath.Fixed64
	Obstacles     map[GridCell]bool
}

func (g GridMap) CloneComponent() GridMap {
	out := g
	if g.Obstacles != nil {
		out.Obstacles = make(map[GridCell]bool, len(g.Obstacles))
		for k, v := range g.Obstacles {
			out.Obstacles[k] = v
		}
	}
	return out
}

// FlowField is a precomputed per-cell gradient toward a target; Gradient is
// an owned collection and requires CloneComponent.
type FlowField struct {
	Width, Height int
	TargetCell    GridCell
	Gradient      []fixedmath.Vec2
}

func (f FlowField) CloneComponent() FlowField {
	out := f
	if f.Gradient != nil {
		out.Gradient = make([]fixedmath.Vec2, len(f.Gradient))
		copy(out.Gradient, f.Gradient)
	}
	return out
}

// Intent holds the per-tick translation of a player's raw directional
// input into the form downstream systems consume: a target velocity and
// the action requests InputApply derived from it (§4.7 step 1). It is
// overwritten every tick and never persists across frames.
type Intent struct {
	Move         fixedmath.Vec2
	Shoot        bool
	PlaceWall    bool
	ThrowGrenade bool
	AimDir       fixedmath.Vec2
}

// Team is an additive expansion component (SPEC_FULL.md §3) grounding the
// teacher's team.go leaderboard concept in the deterministic domain:
// friendly-fire checks and team kill tallies key off TeamID, not this
// component, which only carries the running kill count for leaderboards.
type Team struct {
	TeamID string
	Kills  int
}
