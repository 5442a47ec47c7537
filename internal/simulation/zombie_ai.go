package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// ZombieAISystem is pipeline step 3: the Chase → AttackWindup → Attack →
// AttackCooldown state machine. Attack hitboxes are applied as immediate
// damage to the locked target while in the Attack state, since a zombie
// has exactly one target and no area effect.
func ZombieAISystem(world *ecs.World, cfg Config, dt fixedmath.Fixed64) {
	ecs.Iter2(world, func(e ecs.Entity, ai *components.ZombieAI, t *components.Transform2D) bool {
		if ai.StateTimer.Sign() > 0 {
			ai.StateTimer = fixedmath.Max(fixedmath.Zero, ai.StateTimer.Sub(dt))
		}
		if ai.FlowFieldCooldown.Sign() > 0 {
			ai.FlowFieldCooldown = fixedmath.Max(fixedmath.Zero, ai.FlowFieldCooldown.Sub(dt))
		}

		if ai.Target == ecs.Invalid || !world.Alive(ai.Target) {
			return true
		}
		targetTransform, ok := ecs.Get[components.Transform2D](world, ai.Target)
		if !ok {
			return true
		}
		dist := targetTransform.Position.Sub(t.Position).Magnitude()

		switch ai.State {
		case components.ZombieChase:
			if dist.Cmp(ai.AttackRange) <= 0 {
				ai.State = components.ZombieAttackWindup
				ai.StateTimer = ai.AttackWindupDur
			}
		case components.ZombieAttackWindup:
			if dist.Cmp(ai.AttackRange) > 0 {
				ai.State = components.ZombieChase
				break
			}
			if ai.StateTimer.Sign() == 0 {
				ai.State = components.ZombieAttack
				applyZombieAttack(world, ai, cfg)
				ai.State = components.ZombieAttackCooldown
				ai.StateTimer = ai.AttackCooldownDur
			}
		case components.ZombieAttackCooldown:
			if ai.StateTimer.Sign() == 0 {
				ai.State = components.ZombieChase
			}
		}
		return true
	})
}

func applyZombieAttack(world *ecs.World, ai *components.ZombieAI, cfg Config) {
	hp, ok := ecs.GetPtr[components.HP](world, ai.Target)
	if !ok {
		return
	}
	hp.Current -= ai.AttackDamage
	ecs.Add(world, ai.Target, components.Stiff{Timer: cfg.StiffDuration, Duration: cfg.StiffDuration})
	if hp.Current <= 0 {
		ecs.Add(world, ai.Target, components.Death{Cause: components.DeathZombieAttack})
	}
}

// Pathfinding is pipeline step 4: for every zombie still chasing, steer it
// via the room's flow field when one covers its cell, falling back to a
// direct A* search otherwise. The result is written into the zombie's
// Velocity so Movement/PhysicsStep need no AI awareness.
func Pathfinding(world *ecs.World, grid components.GridMap, field *components.FlowField, speed fixedmath.Fixed64) {
	ecs.Iter3(world, func(e ecs.Entity, ai *components.ZombieAI, t *components.Transform2D, v *components.Velocity) bool {
		if ai.State != components.ZombieChase {
			v.Linear = fixedmath.Vec2{}
			return true
		}
		if ai.Target == ecs.Invalid || !world.Alive(ai.Target) {
			v.Linear = fixedmath.Vec2{}
			return true
		}
		targetTransform, ok := ecs.Get[components.Transform2D](world, ai.Target)
		if !ok {
			return true
		}

		cell := worldToCell(grid, t.Position)
		if field != nil && inBounds(grid, cell) {
			idx := cell.Y*grid.Width + cell.X
			if idx >= 0 && idx < len(field.Gradient) {
				dir := field.Gradient[idx]
				if dir.SqrMagnitude().Sign() != 0 {
					v.Linear = dir.Scale(speed)
					return true
				}
			}
		}

		goal := worldToCell(grid, targetTransform.Position)
		if len(ai.Path) == 0 {
			ai.Path = FindPath(grid, cell, goal)
		}
		if len(ai.Path) == 0 {
			v.Linear = fixedmath.Vec2{}
			return true
		}
		next := ai.Path[0]
		dir := cellToWorld(grid, next).Sub(t.Position)
		if dir.SqrMagnitude().Sign() == 0 {
			ai.Path = ai.Path[1:]
			v.Linear = fixedmath.Vec2{}
			return true
		}
		v.Linear = dir.Normalize().Scale(speed)
		return true
	})
}

func worldToCell(grid components.GridMap, pos fixedmath.Vec2) components.GridCell {
	return components.GridCell{
		X: int(pos.X.Div(grid.CellSize).ToInt()),
		Y: int(pos.Y.Div(grid.CellSize).ToInt()),
	}
}

func cellToWorld(grid components.GridMap, cell components.GridCell) fixedmath.Vec2 {
	return fixedmath.NewVec2(
		fixedmath.FromInt(int64(cell.X)).Mul(grid.CellSize),
		fixedmath.FromInt(int64(cell.Y)).Mul(grid.CellSize),
	)
}
