package simulation

import (
	"sort"

	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/container"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// FlowFieldRefresh recomputes the world's shared flow field on a cooldown
// rather than every tick. The target is the first player in store order —
// deterministic because component iteration order is — so every client
// recomputes the same field on the same frame. Worlds with no zombies skip
// the recompute entirely (the field is only ever read by Pathfinding).
func FlowFieldRefresh(world *World, cfg Config, dt fixedmath.Fixed64) {
	if ecs.Count[components.ZombieAI](world.ECS) == 0 {
		return
	}
	if world.FlowFieldTimer.Sign() > 0 {
		world.FlowFieldTimer = fixedmath.Max(fixedmath.Zero, world.FlowFieldTimer.Sub(dt))
		if world.FlowField != nil {
			return
		}
	}

	var target components.GridCell
	found := false
	ecs.Iter2(world.ECS, func(e ecs.Entity, p *components.Player, t *components.Transform2D) bool {
		target = worldToCell(world.Grid, t.Position)
		found = true
		return false
	})
	if !found {
		return
	}

	field := RecomputeFlowField(world.Grid, target)
	world.FlowField = &field
	world.FlowFieldTimer = cfg.FlowFieldCooldown
}

var gridNeighbors = [4]components.GridCell{
	{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0},
}

// RecomputeFlowField runs a breadth-first fill outward from target across
// every walkable cell of grid, producing a per-cell direction pointing
// toward the neighbor one step closer to the target. BFS on a uniform-cost
// grid is equivalent to Dijkstra and needs no open-set tie-breaking: every
// cell is visited exactly once, in the order its distance class is
// discovered.
func RecomputeFlowField(grid components.GridMap, target components.GridCell) components.FlowField {
	dist := make(map[components.GridCell]int)
	dist[target] = 0
	queue := []components.GridCell{target}

	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		for _, d := range gridNeighbors {
			next := components.GridCell{X: cur.X + d.X, Y: cur.Y + d.Y}
			if !inBounds(grid, next) || grid.Obstacles[next] {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}

	gradient := make([]fixedmath.Vec2, grid.Width*grid.Height)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			cell := components.GridCell{X: x, Y: y}
			idx := y*grid.Width + x
			d0, ok := dist[cell]
			if !ok {
				continue
			}
			best := cell
			bestDist := d0
			for _, n := range gridNeighbors {
				cand := components.GridCell{X: cell.X + n.X, Y: cell.Y + n.Y}
				if cd, ok := dist[cand]; ok && cd < bestDist {
					bestDist = cd
					best = cand
				}
			}
			if best == cell {
				continue
			}
			gradient[idx] = fixedmath.NewVec2(
				fixedmath.FromInt(int64(best.X-cell.X)),
				fixedmath.FromInt(int64(best.Y-cell.Y)),
			).Normalize()
		}
	}

	return components.FlowField{Width: grid.Width, Height: grid.Height, TargetCell: target, Gradient: gradient}
}

func inBounds(grid components.GridMap, c components.GridCell) bool {
	return c.X >= 0 && c.X < grid.Width && c.Y >= 0 && c.Y < grid.Height
}

// astarNode is the open-set payload; ties are broken by f-value then x
// then y, per the deterministic tie-break rule.
type astarNode struct {
	cell components.GridCell
	g, f int
}

// FindPath runs A* from start to goal over grid's walkable cells,
// returning the path (excluding start, including goal) or nil if
// unreachable. The open set is an insertion-ordered map so that equal-f
// candidates are still visited in a reproducible order before the
// explicit tie-breaker even applies.
func FindPath(grid components.GridMap, start, goal components.GridCell) []components.GridCell {
	if start == goal {
		return nil
	}
	open := container.NewOrderedMap[components.GridCell, astarNode]()
	open.Set(start, astarNode{cell: start, g: 0, f: heuristic(start, goal)})
	cameFrom := make(map[components.GridCell]components.GridCell)
	closed := make(map[components.GridCell]struct{})
	gScore := map[components.GridCell]int{start: 0}

	for open.Count() > 0 {
		current := popBest(open)
		if current.cell == goal {
			return reconstruct(cameFrom, start, goal)
		}
		closed[current.cell] = struct{}{}
		open.Remove(current.cell)

		for _, d := range gridNeighbors {
			next := components.GridCell{X: current.cell.X + d.X, Y: current.cell.Y + d.Y}
			if !inBounds(grid, next) || grid.Obstacles[next] {
				continue
			}
			if _, done := closed[next]; done {
				continue
			}
			tentativeG := current.g + 1
			if prev, ok := gScore[next]; ok && tentativeG >= prev {
				continue
			}
			gScore[next] = tentativeG
			cameFrom[next] = current.cell
			open.Set(next, astarNode{cell: next, g: tentativeG, f: tentativeG + heuristic(next, goal)})
		}
	}
	return nil
}

// popBest scans the open set for the lowest f, breaking ties by x then y,
// and returns it without removing it (callers remove explicitly).
func popBest(open *container.OrderedMap[components.GridCell, astarNode]) astarNode {
	var candidates []astarNode
	open.Each(func(_ components.GridCell, v astarNode) bool {
		candidates = append(candidates, v)
		return true
	})
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.f != b.f {
			return a.f < b.f
		}
		if a.cell.X != b.cell.X {
			return a.cell.X < b.cell.X
		}
		return a.cell.Y < b.cell.Y
	})
	return candidates[0]
}

func heuristic(a, b components.GridCell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func reconstruct(cameFrom map[components.GridCell]components.GridCell, start, goal components.GridCell) []components.GridCell {
	var path []components.GridCell
	cur := goal
	for cur != start {
		path = append([]components.GridCell{cur}, path...)
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	return path
}
