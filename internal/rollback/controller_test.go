package rollback

import (
	"testing"

	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
	"github.com/fight-club/lockstep/internal/simulation"
)

func freshWorld() *simulation.World {
	grid := components.GridMap{Width: 10, Height: 10, CellSize: fixedmath.One, Obstacles: map[components.GridCell]bool{}}
	w := simulation.NewWorld(grid)
	e := w.ECS.CreateEntity()
	ecs.Add(w.ECS, e, components.Transform2D{})
	ecs.Add(w.ECS, e, components.Velocity{})
	ecs.Add(w.ECS, e, components.PhysicsBody{Mass: fixedmath.One})
	ecs.Add(w.ECS, e, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.One})
	ecs.Add(w.ECS, e, components.Player{PlayerID: 1})
	ecs.Add(w.ECS, e, components.Collision{})
	return w
}

func TestPredictAdvancesPredictedFrame(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 100)
	f := c.Predict(1, simulation.FrameInput{PlayerID: 1, Direction: fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)})
	if f != 1 {
		t.Fatalf("expected first predicted frame to be 1, got %d", f)
	}
	if c.PredictedFrame() != 1 {
		t.Fatalf("expected PredictedFrame()=1, got %d", c.PredictedFrame())
	}
}

func TestOnServerFrameRepeatForOldFrame(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 100)
	c.Predict(1, simulation.FrameInput{PlayerID: 1})
	result, err := c.OnServerFrame(0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != Repeat {
		t.Fatalf("expected Repeat, got %v", result.Label)
	}
}

func TestOnServerFrameNoPredictOK(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 100)
	result, err := c.OnServerFrame(1, []simulation.FrameInput{{PlayerID: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != NoPredictOK {
		t.Fatalf("expected NoPredict-OK, got %v", result.Label)
	}
	if c.ConfirmedFrame() != 1 {
		t.Fatalf("expected ConfirmedFrame()=1, got %d", c.ConfirmedFrame())
	}
}

func TestOnServerFrameNoPredictLostRequestsMissingRange(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 100)
	result, err := c.OnServerFrame(5, []simulation.FrameInput{{PlayerID: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != NoPredictLost {
		t.Fatalf("expected NoPredict-Lost, got %v", result.Label)
	}
	if result.MissingFromInc != 1 || result.MissingToInc != 4 {
		t.Fatalf("expected missing range [1,4], got [%d,%d]", result.MissingFromInc, result.MissingToInc)
	}
}

func TestOnServerFramePredictOKWhenInputsMatch(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 100)
	dir := fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
	c.Predict(1, simulation.FrameInput{PlayerID: 1, Direction: dir})

	result, err := c.OnServerFrame(1, []simulation.FrameInput{{PlayerID: 1, Direction: dir}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != PredictOK {
		t.Fatalf("expected Predict-OK, got %v", result.Label)
	}
	if c.ConfirmedFrame() != 1 {
		t.Fatalf("expected ConfirmedFrame()=1, got %d", c.ConfirmedFrame())
	}
}

func TestOnServerFramePredictMismatchReplays(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 100)
	localDir := fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
	serverDir := fixedmath.NewVec2(fixedmath.Zero, fixedmath.One)

	c.Predict(1, simulation.FrameInput{PlayerID: 1, Direction: localDir})
	c.Predict(1, simulation.FrameInput{PlayerID: 1, Direction: localDir})

	result, err := c.OnServerFrame(1, []simulation.FrameInput{{PlayerID: 1, Direction: serverDir}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != PredictMismatch {
		t.Fatalf("expected Predict-Mismatch, got %v", result.Label)
	}
	if c.ConfirmedFrame() != 1 {
		t.Fatalf("expected ConfirmedFrame()=1 after reconciliation, got %d", c.ConfirmedFrame())
	}
}

func worldPositions(w *simulation.World) []fixedmath.Vec2 {
	var out []fixedmath.Vec2
	ecs.Each[components.Transform2D](w.ECS, func(e ecs.Entity, tr *components.Transform2D) bool {
		out = append(out, tr.Position)
		return true
	})
	return out
}

// TestReplayReproducesSnapshots is the replay-equivalence property:
// re-running ExecuteFrame over the recorded input history must land on
// exactly the same world state the original prediction pass produced.
func TestReplayReproducesSnapshots(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 100)
	dirs := []fixedmath.Vec2{
		fixedmath.NewVec2(fixedmath.One, fixedmath.Zero),
		fixedmath.NewVec2(fixedmath.Zero, fixedmath.One),
		fixedmath.NewVec2(fixedmath.One.Neg(), fixedmath.Zero),
	}
	for _, d := range dirs {
		c.Predict(1, simulation.FrameInput{PlayerID: 1, Direction: d})
	}
	want := worldPositions(c.CurrentWorld())

	for f := uint64(1); f <= 3; f++ {
		c.ExecuteFrame(f)
	}
	got := worldPositions(c.CurrentWorld())

	if len(got) != len(want) {
		t.Fatalf("entity counts diverged after replay: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("replayed position %d diverged: %v vs %v", i, got[i], want[i])
		}
	}
}

func TestOnServerFramePredictMismatchFailsWhenSnapshotEvicted(t *testing.T) {
	c := NewController(freshWorld(), simulation.DefaultConfig(), 2)
	localDir := fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
	for i := 0; i < 5; i++ {
		c.Predict(1, simulation.FrameInput{PlayerID: 1, Direction: localDir})
	}

	serverDir := fixedmath.NewVec2(fixedmath.Zero, fixedmath.One)
	_, err := c.OnServerFrame(1, []simulation.FrameInput{{PlayerID: 1, Direction: serverDir}})
	if err != ErrUnrecoverableDivergence {
		t.Fatalf("expected ErrUnrecoverableDivergence, got %v", err)
	}
}
