package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rasim/internal/common"
	"rasim/internal/rasim"
)

// OpKind is a replay trace operation.
type OpKind int

const (
	OpReset OpKind = iota
	OpCall
	OpRet
	OpSquash
	OpCommit
	OpRestore
)

var opNames = [...]string{
	OpReset:   "RESET",
	OpCall:    "CALL",
	OpRet:     "RET",
	OpSquash:  "SQUASH",
	OpCommit:  "COMMIT",
	OpRestore: "RESTORE",
}

func (k OpKind) String() string {
	if k >= 0 && int(k) < len(opNames) {
		return opNames[k]
	}
	return "UNKNOWN"
}

// DefaultISA is assumed when a trace line gives an address without an ISA.
const DefaultISA = rasim.ISAAArch64

// Op is one parsed trace line.
//
//	reset
//	call    <seq> <ret-addr> [isa]
//	call    <seq> <call-pc>+<size> [isa]
//	ret     <seq> [actual] [isa]
//	squash  <seq>
//	commit  <seq>
//	restore <idx> <addr> [isa]
type Op struct {
	Line rasim.TrcIndex
	Kind OpKind
	Seq  uint64

	// PC is the pushed state for call, the actual target for ret and the
	// written value for restore.
	PC        rasim.PCState
	HasActual bool

	Idx int
}

// ParseOp parses a single trace line. ok is false for blank and comment lines.
func ParseOp(line string, lineNum rasim.TrcIndex) (op Op, ok bool, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Op{}, false, nil
	}

	op.Line = lineNum
	args := fields[1:]
	bad := func(format string, a ...any) (Op, bool, error) {
		return Op{}, false, common.NewErrorWithIdxMsg(rasim.ErrSevError, rasim.ErrTraceParse,
			lineNum, fmt.Sprintf(format, a...))
	}

	switch strings.ToLower(fields[0]) {
	case "reset":
		op.Kind = OpReset
		if len(args) != 0 {
			return bad("reset takes no arguments")
		}

	case "call":
		op.Kind = OpCall
		if len(args) < 2 || len(args) > 3 {
			return bad("usage: call <seq> <ret-addr>|<call-pc>+<size> [isa]")
		}
		if op.Seq, err = parseSeq(args[0]); err != nil {
			return bad("bad sequence number %q", args[0])
		}
		if op.PC, err = parseCallTarget(args[1:]); err != nil {
			return bad("%v", err)
		}

	case "ret":
		op.Kind = OpRet
		if len(args) < 1 || len(args) > 3 {
			return bad("usage: ret <seq> [actual] [isa]")
		}
		if op.Seq, err = parseSeq(args[0]); err != nil {
			return bad("bad sequence number %q", args[0])
		}
		if len(args) > 1 {
			if op.PC, err = parsePCState(args[1:]); err != nil {
				return bad("%v", err)
			}
			op.HasActual = true
		}

	case "squash", "commit":
		op.Kind = OpSquash
		if strings.EqualFold(fields[0], "commit") {
			op.Kind = OpCommit
		}
		if len(args) != 1 {
			return bad("usage: %s <seq>", strings.ToLower(fields[0]))
		}
		if op.Seq, err = strconv.ParseUint(args[0], 0, 64); err != nil {
			return bad("bad sequence number %q", args[0])
		}

	case "restore":
		op.Kind = OpRestore
		if len(args) < 2 || len(args) > 3 {
			return bad("usage: restore <idx> <addr> [isa]")
		}
		idx, perr := strconv.ParseInt(args[0], 0, 32)
		if perr != nil {
			return bad("bad stack index %q", args[0])
		}
		op.Idx = int(idx)
		if op.PC, err = parsePCState(args[1:]); err != nil {
			return bad("%v", err)
		}

	default:
		return bad("unknown operation %q", fields[0])
	}

	return op, true, nil
}

// ReadTrace parses a whole trace, stopping at the first bad line.
func ReadTrace(r io.Reader) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(r)
	var lineNum rasim.TrcIndex

	for scanner.Scan() {
		lineNum++
		op, ok, err := ParseOp(scanner.Text(), lineNum)
		if err != nil {
			return nil, err
		}
		if ok {
			ops = append(ops, op)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, common.NewErrorMsg(rasim.ErrSevError, rasim.ErrFileError, err.Error())
	}
	return ops, nil
}

// call and ret sequence numbers start at 1; 0 is the "before everything"
// point squash and commit may name.
func parseSeq(s string) (uint64, error) {
	seq, err := strconv.ParseUint(s, 0, 64)
	if err == nil && seq == 0 {
		err = fmt.Errorf("sequence numbers start at 1")
	}
	return seq, err
}

func parsePCState(args []string) (rasim.PCState, error) {
	addr, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return rasim.PCState{}, fmt.Errorf("bad address %q", args[0])
	}
	pc := rasim.PCState{Addr: rasim.VAddr(addr), ISA: DefaultISA}
	if len(args) > 1 {
		isa, ok := rasim.ParseISA(args[1])
		if !ok {
			return rasim.PCState{}, fmt.Errorf("unknown ISA %q", args[1])
		}
		pc.ISA = isa
	}
	return pc, nil
}

// parseCallTarget accepts a return address, or a call site written as
// <call-pc>+<size> whose return address is the following instruction.
func parseCallTarget(args []string) (rasim.PCState, error) {
	addr, size, ok := strings.Cut(args[0], "+")
	if !ok {
		return parsePCState(args)
	}
	n, err := strconv.ParseUint(size, 0, 8)
	if err != nil || n == 0 {
		return rasim.PCState{}, fmt.Errorf("bad instruction size %q", size)
	}
	pc, err := parsePCState(append([]string{addr}, args[1:]...))
	if err != nil {
		return rasim.PCState{}, err
	}
	return pc.NextAddr(uint8(n)), nil
}
