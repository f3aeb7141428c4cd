package replay

import (
	"fmt"

	"rasim/internal/common"
	"rasim/internal/ras"
	"rasim/internal/rasim"
)

// Stats counts what a replay did.
type Stats struct {
	Ops        uint64
	Calls      uint64
	Returns    uint64
	Underflows uint64
	Squashed   uint64
	Committed  uint64
	Resets     uint64
	Restores   uint64

	// Predictions counts returns that carried an actual target.
	Predictions    uint64
	Correct        uint64
	Mispredictions uint64
}

// Accuracy returns the return prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// Result describes the effect of one applied op.
type Result struct {
	Op Op

	// ret only
	Predicted rasim.PCState
	Underflow bool
	Correct   bool

	// checkpoints restored by squash or retired by commit
	Count int

	State ras.Checkpoint
	Used  int
}

// Detail renders the op-specific part of a report line.
func (r Result) Detail() string {
	switch r.Op.Kind {
	case OpCall:
		return fmt.Sprintf("seq=%d push %s", r.Op.Seq, r.Op.PC)
	case OpRet:
		s := fmt.Sprintf("seq=%d predict %s", r.Op.Seq, r.Predicted)
		if r.Underflow {
			s += " underflow"
		}
		if r.Op.HasActual {
			verdict := "miss"
			if r.Correct {
				verdict = "hit"
			}
			s += fmt.Sprintf(" actual %s %s", r.Op.PC, verdict)
		}
		return s
	case OpSquash:
		return fmt.Sprintf("seq=%d restored=%d", r.Op.Seq, r.Count)
	case OpCommit:
		return fmt.Sprintf("seq=%d retired=%d", r.Op.Seq, r.Count)
	case OpRestore:
		return fmt.Sprintf("idx=%d value %s", r.Op.Idx, r.Op.PC)
	}
	return ""
}

// record is the checkpoint an in-flight call or ret needs to be undone.
type record struct {
	seq  uint64
	kind OpKind
	cp   ras.Checkpoint
}

// Engine drives one return address stack the way a predictor front end
// does: checkpoint, then push or pop, and restore checkpoints newest first
// when younger work is squashed.
type Engine struct {
	stack   *ras.ReturnAddrStack
	history []record
	lastSeq uint64

	// ops at or before committedSeq have retired and cannot be squashed
	committedSeq uint64

	stats  Stats
	logger common.Logger
}

// NewEngine builds an engine around a new stack of numEntries slots.
func NewEngine(numEntries int, logger common.Logger) (*Engine, error) {
	stack, err := ras.New(numEntries)
	if err != nil {
		return nil, err
	}
	return NewEngineWithStack(stack, logger)
}

// NewEngineWithStack drives a stack the caller already owns, one per
// hardware context. The stack must have been initialised.
func NewEngineWithStack(stack *ras.ReturnAddrStack, logger common.Logger) (*Engine, error) {
	if stack == nil || !stack.IsInit() {
		return nil, common.NewErrorMsg(rasim.ErrSevError, rasim.ErrNotInit, "return address stack not initialised")
	}
	if logger == nil {
		logger = common.NewNoOpLogger()
	}
	return &Engine{stack: stack, logger: logger}, nil
}

func (e *Engine) Stack() *ras.ReturnAddrStack { return e.stack }
func (e *Engine) Stats() Stats                { return e.stats }

// InFlight returns the number of checkpoints held for uncommitted ops.
func (e *Engine) InFlight() int { return len(e.history) }

// Apply performs one op. Only sequence errors are reported; the stack
// itself never fails.
func (e *Engine) Apply(op Op) (Result, error) {
	res := Result{Op: op}

	switch op.Kind {
	case OpReset:
		e.stack.Reset()
		e.history = e.history[:0]
		e.lastSeq = 0
		e.committedSeq = 0
		e.stats.Resets++

	case OpCall:
		if err := e.checkSeq(op); err != nil {
			return res, err
		}
		if e.stack.Full() {
			e.logger.Logf(common.SeverityDebug, "line %d: call seq %d evicts the oldest entry", op.Line, op.Seq)
		}
		e.record(op)
		e.stack.Push(op.PC)
		e.stats.Calls++

	case OpRet:
		if err := e.checkSeq(op); err != nil {
			return res, err
		}
		res.Predicted = e.stack.Top()
		res.Underflow = e.stack.Empty()
		e.record(op)
		e.stack.Pop()
		e.stats.Returns++

		if res.Underflow {
			e.stats.Underflows++
			e.logger.Logf(common.SeverityWarning, "line %d: return seq %d popped an empty stack", op.Line, op.Seq)
		}
		if op.HasActual {
			res.Correct = res.Predicted == op.PC
			e.stats.Predictions++
			if res.Correct {
				e.stats.Correct++
			} else {
				e.stats.Mispredictions++
			}
		}

	case OpSquash:
		if op.Seq < e.committedSeq {
			return res, common.NewErrorWithIdxMsg(rasim.ErrSevError, rasim.ErrBadSeqNum, op.Line,
				fmt.Sprintf("squash to seq %d is before committed seq %d", op.Seq, e.committedSeq))
		}
		res.Count = e.squash(op.Seq)
		e.stats.Squashed += uint64(res.Count)
		e.logger.Logf(common.SeverityDebug, "line %d: squash after seq %d restored %d checkpoints", op.Line, op.Seq, res.Count)

	case OpCommit:
		res.Count = e.commit(op.Seq)
		e.stats.Committed += uint64(res.Count)

	case OpRestore:
		e.stack.Restore(op.Idx, op.PC)
		e.stats.Restores++

	default:
		return res, common.NewErrorWithIdxMsg(rasim.ErrSevError, rasim.ErrFail, op.Line,
			fmt.Sprintf("unknown op kind %d", op.Kind))
	}

	e.stats.Ops++
	res.State = e.stack.Checkpoint()
	res.Used = e.stack.UsedEntries()
	return res, nil
}

func (e *Engine) checkSeq(op Op) error {
	if op.Seq <= e.lastSeq {
		return common.NewErrorWithIdxMsg(rasim.ErrSevError, rasim.ErrBadSeqNum, op.Line,
			fmt.Sprintf("%s seq %d is not after seq %d", op.Kind, op.Seq, e.lastSeq))
	}
	e.lastSeq = op.Seq
	return nil
}

func (e *Engine) record(op Op) {
	e.history = append(e.history, record{seq: op.Seq, kind: op.Kind, cp: e.stack.Checkpoint()})
}

// squash undoes every in-flight op younger than seq, newest first, one
// checkpoint per op.
func (e *Engine) squash(seq uint64) int {
	n := 0
	for len(e.history) > 0 {
		last := e.history[len(e.history)-1]
		if last.seq <= seq {
			break
		}
		e.stack.RestoreCheckpoint(last.cp)
		e.logger.Logf(common.SeverityDebug, "undo %s seq %d: tos=%d top=%s", last.kind, last.seq, last.cp.TopIdx, last.cp.Top)
		e.history = e.history[:len(e.history)-1]
		n++
	}
	if seq < e.lastSeq {
		e.lastSeq = seq
	}
	return n
}

// commit drops the checkpoints of ops at or older than seq; they can no
// longer be squashed.
func (e *Engine) commit(seq uint64) int {
	n := 0
	for n < len(e.history) && e.history[n].seq <= seq {
		n++
	}
	e.history = append(e.history[:0], e.history[n:]...)
	if seq > e.committedSeq {
		e.committedSeq = seq
	}
	if seq > e.lastSeq {
		e.lastSeq = seq
	}
	return n
}
