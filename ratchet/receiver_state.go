package ratchet

// receiverState is one inbound chain for a single (sender, root-secret)
// generation, plus one retained prior position so a frame that arrives late
// relative to a ratchet step can still be authenticated.
type receiverState struct {
	senderState       senderState
	ratchetFrame      FrameCounter
	oldSecret         Secret
	oldRatchetCounter RatchetCounter
}

func newReceiverState(counter RatchetCounter, secret Secret) receiverState {
	return receiverState{
		senderState:       newSenderState(counter, secret),
		ratchetFrame:      0,
		oldSecret:         secret,
		oldRatchetCounter: counter,
	}
}

// tryAdvanceRatchet returns a new receiverState whose chain has been walked
// forward to ratchetCounterGoal, without mutating the receiver. It does not
// itself bound how far the old secret lags behind the new one; that is
// limitOOO's job, applied only once the caller commits this tentative state.
func (r receiverState) tryAdvanceRatchet(ratchetCounterGoal RatchetCounter, frameCounter FrameCounter) receiverState {
	var cur RatchetCounter
	var secret Secret

	if frameCounter > r.ratchetFrame {
		cur = r.senderState.ratchetCounter
		secret = r.senderState.currentSecret
	} else {
		cur = r.oldRatchetCounter
		secret = r.oldSecret
	}

	for cur != ratchetCounterGoal {
		ratchetSecret(&secret)
		cur++
	}

	next := receiverState{
		senderState:  newSenderState(ratchetCounterGoal, secret),
		ratchetFrame: frameCounter,
	}
	if frameCounter-r.ratchetFrame > MaxOOOFrames {
		next.oldSecret = r.senderState.currentSecret
		next.oldRatchetCounter = r.senderState.ratchetCounter
	} else {
		next.oldSecret = r.oldSecret
		next.oldRatchetCounter = r.oldRatchetCounter
	}
	return next
}

// limitOOO walks the retained old secret forward until it is at most
// MaxOOORatchets generations behind the current one, capping how many
// obsolete key generations a receiver keeps around.
func (r *receiverState) limitOOO() {
	for r.senderState.ratchetCounter-r.oldRatchetCounter > MaxOOORatchets {
		ratchetSecret(&r.oldSecret)
		r.oldRatchetCounter++
	}
}
