// Package ras provides the speculative return address stack used by a
// branch predictor to forecast the targets of subroutine returns.
//
// Calls push the return state at prediction time and returns read Top and
// then Pop. Speculative work is undone by the caller: it keeps the
// Checkpoint taken before each push or pop and, on a squash, hands those
// checkpoints back to RestoreCheckpoint one at a time, newest first. The
// stack keeps no history of its own.
package ras

import (
	"fmt"

	"rasim/internal/common"
	"rasim/internal/rasim"
)

// Checkpoint is the caller-held snapshot of the top of stack.
type Checkpoint struct {
	TopIdx int
	Top    rasim.PCState
}

// ReturnAddrStack is a fixed-capacity circular buffer of PC states.
type ReturnAddrStack struct {
	addrStack   []rasim.PCState
	numEntries  int
	tos         int
	usedEntries int
}

// New returns a stack initialised with numEntries slots.
func New(numEntries int) (*ReturnAddrStack, error) {
	s := &ReturnAddrStack{}
	if err := s.Init(numEntries); err != nil {
		return nil, err
	}
	return s, nil
}

// Init sizes the buffer and resets it. The size is fixed for the lifetime
// of the stack; a second Init is rejected and leaves the stack as it was.
func (s *ReturnAddrStack) Init(numEntries int) error {
	if s.numEntries != 0 {
		return common.NewErrorMsg(rasim.ErrSevError, rasim.ErrAlreadyInit,
			fmt.Sprintf("return address stack already has %d entries", s.numEntries))
	}
	if numEntries <= 0 {
		return common.NewErrorMsg(rasim.ErrSevError, rasim.ErrInvalidParamVal,
			fmt.Sprintf("return address stack entries must be > 0, got %d", numEntries))
	}
	s.numEntries = numEntries
	s.addrStack = make([]rasim.PCState, numEntries)
	s.Reset()
	return nil
}

// IsInit reports whether Init has succeeded.
func (s *ReturnAddrStack) IsInit() bool {
	return s.numEntries != 0
}

// Reset empties the stack and clears every slot to the neutral state.
func (s *ReturnAddrStack) Reset() {
	s.usedEntries = 0
	s.tos = 0
	for i := range s.addrStack {
		s.addrStack[i].Set(0)
	}
}

// Push stores addr in the next slot. When the stack is full the oldest
// entry is overwritten.
func (s *ReturnAddrStack) Push(addr rasim.PCState) {
	if s.numEntries == 0 {
		return
	}
	s.incrTos()

	s.addrStack[s.tos] = addr

	if s.usedEntries != s.numEntries {
		s.usedEntries++
	}
}

// Pop retires the top slot. Nothing is read or cleared; callers wanting
// the prediction read Top first. Popping an empty stack still moves the
// cursor so that restores made later unwind to the right slot.
func (s *ReturnAddrStack) Pop() {
	if s.numEntries == 0 {
		return
	}
	if s.usedEntries > 0 {
		s.usedEntries--
	}

	s.decrTos()
}

// Restore puts the cursor back at topEntryIdx and writes restored into
// that slot. usedEntries is not recomputed and may drift from the number
// of live entries after a squash; it is an occupancy hint only.
func (s *ReturnAddrStack) Restore(topEntryIdx int, restored rasim.PCState) {
	if s.numEntries == 0 {
		return
	}
	topEntryIdx %= s.numEntries
	if topEntryIdx < 0 {
		topEntryIdx += s.numEntries
	}
	s.tos = topEntryIdx

	s.addrStack[s.tos] = restored
}

// Checkpoint captures the cursor and the value under it.
func (s *ReturnAddrStack) Checkpoint() Checkpoint {
	return Checkpoint{TopIdx: s.tos, Top: s.Top()}
}

// RestoreCheckpoint undoes everything done since cp was taken, provided
// every later checkpoint has already been restored.
func (s *ReturnAddrStack) RestoreCheckpoint(cp Checkpoint) {
	s.Restore(cp.TopIdx, cp.Top)
}

// Top returns the value in the top slot.
func (s *ReturnAddrStack) Top() rasim.PCState {
	if s.numEntries == 0 {
		return rasim.PCState{}
	}
	return s.addrStack[s.tos]
}

func (s *ReturnAddrStack) TopIdx() int      { return s.tos }
func (s *ReturnAddrStack) UsedEntries() int { return s.usedEntries }
func (s *ReturnAddrStack) NumEntries() int  { return s.numEntries }
func (s *ReturnAddrStack) Empty() bool      { return s.usedEntries == 0 }

// Full reports whether the next push will evict the oldest entry.
func (s *ReturnAddrStack) Full() bool {
	return s.numEntries != 0 && s.usedEntries == s.numEntries
}

func (s *ReturnAddrStack) incrTos() {
	s.tos++
	if s.tos == s.numEntries {
		s.tos = 0
	}
}

func (s *ReturnAddrStack) decrTos() {
	if s.tos == 0 {
		s.tos = s.numEntries
	}
	s.tos--
}
