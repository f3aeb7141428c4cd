package rasim

import (
	"fmt"
	"strings"
)

// Trace Indexing

// TrcIndex is the index of a line in a replay trace.
type TrcIndex uint64

// BadTrcIndex is an invalid trace index value
const BadTrcIndex TrcIndex = ^TrcIndex(0)

// General Library Return and Error Codes

// Err represents library error return type
type Err uint32

const (
	OK                 Err = 0
	ErrFail            Err = 1
	ErrNotInit         Err = 2
	ErrInvalidParamVal Err = 3
	ErrAlreadyInit     Err = 4
	ErrFileError       Err = 5
	ErrTraceParse      Err = 6
	ErrBadSeqNum       Err = 7
	ErrConfigParse     Err = 8
	ErrLast            Err = 9
)

// ErrSeverity used to indicate the severity of an error
type ErrSeverity uint32

const (
	ErrSevNone  ErrSeverity = 0
	ErrSevError ErrSeverity = 1
	ErrSevWarn  ErrSeverity = 2
	ErrSevInfo  ErrSeverity = 3
)

// VAddr type
type VAddr uint64

// Instruction set state

type ISA uint32

const (
	ISAArm     ISA = 0
	ISAThumb2  ISA = 1
	ISAAArch64 ISA = 2
	ISATee     ISA = 3
	ISAJazelle ISA = 4
	ISACustom  ISA = 5
	ISAUnknown ISA = 6
)

var isaNames = [...]string{
	ISAArm:     "A32",
	ISAThumb2:  "T32",
	ISAAArch64: "A64",
	ISATee:     "TEE",
	ISAJazelle: "Jazelle",
	ISACustom:  "Custom",
	ISAUnknown: "Unknown",
}

func (i ISA) String() string {
	if int(i) < len(isaNames) {
		return isaNames[i]
	}
	return "Unknown"
}

// ParseISA maps a name printed by ISA.String back to the ISA, ignoring case.
func ParseISA(s string) (ISA, bool) {
	for i, name := range isaNames {
		if strings.EqualFold(s, name) {
			return ISA(i), true
		}
	}
	return ISAUnknown, false
}

// PCState is the program-counter state held by a return address stack.
// It is a plain value: copies are independent and == compares contents.
// The zero value is the neutral state written by a reset.
type PCState struct {
	Addr VAddr
	ISA  ISA
}

// Set replaces the address and reverts the ISA to its zero value.
func (p *PCState) Set(addr VAddr) {
	p.Addr = addr
	p.ISA = ISAArm
}

// NextAddr returns the state of the instruction following one of instrSize bytes.
func (p PCState) NextAddr(instrSize uint8) PCState {
	return PCState{Addr: p.Addr + VAddr(instrSize), ISA: p.ISA}
}

func (p PCState) String() string {
	return fmt.Sprintf("0x%x (%s)", uint64(p.Addr), p.ISA)
}
