package rollback

import "github.com/fight-club/lockstep/internal/simulation"

// Classification is the result of feeding one authoritative server frame
// into the controller: which of the six exhaustive cases applied, and (for
// the Lost cases) the inclusive range of frame numbers the caller should
// request a replay of.
type Classification struct {
	Label          Label
	MissingFromInc uint64
	MissingToInc   uint64
}

// OnServerFrame classifies and reacts to one SERVER_FRAME per the
// exhaustive matrix in §4.8.
func (c *Controller) OnServerFrame(frameNumber uint64, frameInputs []simulation.FrameInput) (Classification, error) {
	if frameNumber <= c.confirmedFrame {
		return Classification{Label: Repeat}, nil
	}

	if c.predictedFrame <= c.confirmedFrame {
		if frameNumber > c.confirmedFrame+1 {
			return Classification{
				Label:          NoPredictLost,
				MissingFromInc: c.confirmedFrame + 1,
				MissingToInc:   frameNumber - 1,
			}, nil
		}
		c.setInputs(frameNumber, frameInputs)
		c.ExecuteFrame(frameNumber)
		c.confirm(frameNumber)
		return Classification{Label: NoPredictOK}, nil
	}

	if frameNumber > c.confirmedFrame+1 {
		return Classification{
			Label:          PredictLost,
			MissingFromInc: c.confirmedFrame + 1,
			MissingToInc:   frameNumber - 1,
		}, nil
	}

	if c.predictionMatches(frameNumber, frameInputs) {
		c.confirm(frameNumber)
		return Classification{Label: PredictOK}, nil
	}

	return c.reconcileMismatch(frameNumber, frameInputs)
}

func (c *Controller) confirm(frame uint64) {
	c.confirmedFrame = frame
	c.predictIndex = 1
}

func (c *Controller) setInputs(frame uint64, frameInputs []simulation.FrameInput) {
	m := make(map[uint32]simulation.FrameInput, len(frameInputs))
	for _, in := range frameInputs {
		m[in.PlayerID] = in
	}
	c.inputs[frame] = m
}

// predictionMatches reports whether the server's inputs for frame are
// identical (same count, same per-player directions and actions) to what was locally
// predicted.
func (c *Controller) predictionMatches(frame uint64, frameInputs []simulation.FrameInput) bool {
	predicted, ok := c.inputs[frame]
	if !ok {
		return len(frameInputs) == 0
	}
	if len(predicted) != len(frameInputs) {
		return false
	}
	for _, in := range frameInputs {
		local, ok := predicted[in.PlayerID]
		if !ok {
			return false
		}
		if local.Direction != in.Direction || local.Actions != in.Actions {
			return false
		}
	}
	return true
}

// reconcileMismatch implements Predict-Mismatch: save the authoritative
// inputs, restore from the last confirmed snapshot, and re-run every frame
// up to the previously predicted frame using the now-updated input
// history.
func (c *Controller) reconcileMismatch(frameNumber uint64, frameInputs []simulation.FrameInput) (Classification, error) {
	c.setInputs(frameNumber, frameInputs)

	base, ok := c.snapshots[c.confirmedFrame]
	if !ok {
		return Classification{}, ErrUnrecoverableDivergence
	}

	replayFrom := c.confirmedFrame + 1
	replayTo := c.predictedFrame

	world := base.Clone()
	c.snapshots[c.confirmedFrame] = world

	for f := replayFrom; f <= replayTo; f++ {
		c.ExecuteFrame(f)
	}

	c.confirm(frameNumber)
	return Classification{Label: PredictMismatch}, nil
}
