// Package rollback implements the client-side predict/rollback controller:
// a snapshot ring buffer, input history, and the exhaustive classification
// matrix that reconciles speculative execution against authoritative
// server frames.
package rollback

import (
	"errors"
	"sort"

	"github.com/fight-club/lockstep/internal/simulation"
)

// ErrUnrecoverableDivergence is reported when the snapshot a Predict-Mismatch
// replay needs has already been evicted from the ring buffer. There is no
// recovery path for this case; the caller must reconcile, typically by
// resyncing with zero prediction from the next authoritative frame.
var ErrUnrecoverableDivergence = errors.New("rollback: required snapshot evicted, cannot replay")

// Label is the exhaustive classification of an incoming server frame.
type Label int

const (
	Repeat Label = iota
	NoPredictLost
	NoPredictOK
	PredictLost
	PredictOK
	PredictMismatch
)

func (l Label) String() string {
	switch l {
	case Repeat:
		return "Repeat"
	case NoPredictLost:
		return "NoPredict-Lost"
	case NoPredictOK:
		return "NoPredict-OK"
	case PredictLost:
		return "Predict-Lost"
	case PredictOK:
		return "Predict-OK"
	case PredictMismatch:
		return "Predict-Mismatch"
	default:
		return "Unknown"
	}
}

// Controller owns the rollback state for one client's simulation.
type Controller struct {
	confirmedFrame uint64
	predictedFrame uint64
	predictIndex   uint64

	maxSnapshots int
	snapshots    map[uint64]*simulation.World
	inputs       map[uint64]map[uint32]simulation.FrameInput

	cfg  simulation.Config
	base *simulation.World
}

// NewController creates a controller seeded with the initial world state
// at frame 0.
func NewController(initial *simulation.World, cfg simulation.Config, maxSnapshots int) *Controller {
	if maxSnapshots <= 0 {
		maxSnapshots = 100
	}
	c := &Controller{
		maxSnapshots: maxSnapshots,
		snapshots:    make(map[uint64]*simulation.World),
		inputs:       make(map[uint64]map[uint32]simulation.FrameInput),
		cfg:          cfg,
		base:         initial,
		predictIndex: 1,
	}
	c.snapshots[0] = initial.Clone()
	return c
}

// ConfirmedFrame and PredictedFrame expose the controller's bookkeeping for
// tests and telemetry.
func (c *Controller) ConfirmedFrame() uint64 { return c.confirmedFrame }
func (c *Controller) PredictedFrame() uint64 { return c.predictedFrame }

// CurrentWorld returns the latest simulated world: the predicted-frame
// snapshot if ahead, else the confirmed-frame snapshot.
func (c *Controller) CurrentWorld() *simulation.World {
	frame := c.confirmedFrame
	if c.predictedFrame > frame {
		frame = c.predictedFrame
	}
	return c.snapshots[frame]
}

// Predict speculatively advances the world by one frame using the local
// player's input, per §4.8.
func (c *Controller) Predict(playerID uint32, input simulation.FrameInput) uint64 {
	frame := c.confirmedFrame + c.predictIndex
	c.predictIndex++

	c.recordInput(frame, playerID, input)
	world := c.snapshotAt(frame - 1).Clone()
	simulation.Execute(world, c.inputSlice(frame), c.cfg)

	c.storeSnapshot(frame, world)
	if frame > c.predictedFrame {
		c.predictedFrame = frame
	}
	return frame
}

func (c *Controller) snapshotAt(frame uint64) *simulation.World {
	if w, ok := c.snapshots[frame]; ok {
		return w
	}
	return c.base
}

func (c *Controller) recordInput(frame uint64, playerID uint32, input simulation.FrameInput) {
	m, ok := c.inputs[frame]
	if !ok {
		m = make(map[uint32]simulation.FrameInput)
		c.inputs[frame] = m
	}
	m[playerID] = input
}

func (c *Controller) inputSlice(frame uint64) []simulation.FrameInput {
	m, ok := c.inputs[frame]
	if !ok {
		return nil
	}
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]simulation.FrameInput, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (c *Controller) storeSnapshot(frame uint64, world *simulation.World) {
	c.snapshots[frame] = world
	c.evictIfNeeded()
}

func (c *Controller) evictIfNeeded() {
	for len(c.snapshots) > c.maxSnapshots {
		lowest := c.lowestSnapshotFrame()
		delete(c.snapshots, lowest)
		delete(c.inputs, lowest)
	}
}

func (c *Controller) lowestSnapshotFrame() uint64 {
	var lowest uint64
	first := true
	for f := range c.snapshots {
		if first || f < lowest {
			lowest = f
			first = false
		}
	}
	return lowest
}

// ExecuteFrame runs pipeline step per §4.8's execute_frame: set inputs to
// the recorded history for frame (empty if none), advance, snapshot.
func (c *Controller) ExecuteFrame(frame uint64) {
	world := c.snapshotAt(frame - 1).Clone()
	simulation.Execute(world, c.inputSlice(frame), c.cfg)
	c.storeSnapshot(frame, world)
}
