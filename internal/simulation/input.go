package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// ActionFlags are the discrete action requests carried alongside a
// player's directional input.
type ActionFlags uint8

const (
	ActionShoot ActionFlags = 1 << iota
	ActionPlaceWall
	ActionThrowGrenade
)

// FrameInput is one player's input for a single tick, the in-process form
// of the wire protocol's FRAME_DATA payload.
type FrameInput struct {
	PlayerID  uint32
	Direction fixedmath.Vec2
	Actions   ActionFlags
}

// playerEntities indexes live Player components by PlayerID so systems can
// go from a wire player_id straight to an Entity without a linear scan.
func playerEntities(world *ecs.World) map[uint32]ecs.Entity {
	out := make(map[uint32]ecs.Entity)
	ecs.Each[components.Player](world, func(e ecs.Entity, p *components.Player) bool {
		out[p.PlayerID] = e
		return true
	})
	return out
}

// InputApply is pipeline step 1: translate each player's raw directional
// input into an Intent component. Players absent from frameInputs this
// tick keep no residual intent (their Intent is reset to zero), matching
// lockstep's "silence means no input" contract.
func InputApply(world *ecs.World, frameInputs []FrameInput, cfg Config) {
	byPlayer := playerEntities(world)

	requested := make(map[uint32]struct{}, len(frameInputs))
	for _, in := range frameInputs {
		requested[in.PlayerID] = struct{}{}
		e, ok := byPlayer[in.PlayerID]
		if !ok {
			continue
		}
		move := in.Direction
		if move.SqrMagnitude().Sign() != 0 {
			move = move.Normalize().Scale(cfg.PlayerSpeed)
		}
		intent := components.Intent{
			Move:          move,
			Shoot:         in.Actions&ActionShoot != 0,
			PlaceWall:     in.Actions&ActionPlaceWall != 0,
			ThrowGrenade:  in.Actions&ActionThrowGrenade != 0,
			AimDir:        in.Direction,
		}
		ecs.Add(world, e, intent)
	}

	for pid, e := range byPlayer {
		if _, ok := requested[pid]; !ok {
			ecs.Add(world, e, components.Intent{})
		}
	}
}
