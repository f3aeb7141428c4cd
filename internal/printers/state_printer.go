package printers

import (
	"fmt"
	"strings"

	"rasim/internal/rasim"
)

// Separator is the rule printed between report sections.
const Separator = "---------------------------------------------------"

// StateLine is one replayed operation and the stack state after it.
type StateLine struct {
	Idx    rasim.TrcIndex
	Op     string
	Detail string
	TopIdx int
	Used   int
	Top    rasim.PCState
}

func (l StateLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Idx:%d; %s", l.Idx, l.Op)
	if l.Detail != "" {
		sb.WriteString(" ")
		sb.WriteString(l.Detail)
	}
	fmt.Fprintf(&sb, "; TOS=%d; Used=%d; Top=%s", l.TopIdx, l.Used, l.Top)
	return sb.String()
}

// StatePrinter prints the replay report: a header, one line per operation
// and a closing summary.
type StatePrinter struct {
	*ItemPrinter
	stateMuted bool
}

func NewStatePrinter(p *ItemPrinter) *StatePrinter {
	return &StatePrinter{ItemPrinter: p}
}

// MuteState drops per-operation lines while keeping the header and summary.
func (p *StatePrinter) MuteState(mute bool) { p.stateMuted = mute }

func (p *StatePrinter) PrintHeader(source string, numEntries int) {
	p.ItemPrintLine("RAS Replay: return address stack speculation replay")
	p.ItemPrintLine(Separator)
	p.ItemPrintLine(fmt.Sprintf("RAS Replay : reading trace from %s", source))
	p.ItemPrintLine(fmt.Sprintf("RAS Replay : return address stack entries = %d", numEntries))
}

func (p *StatePrinter) PrintState(line StateLine) {
	if p.stateMuted {
		return
	}
	p.ItemPrintLine(line.String())
}

// PrintSummary prints each summary line behind a separator.
func (p *StatePrinter) PrintSummary(lines ...string) {
	p.ItemPrintLine(Separator)
	for _, l := range lines {
		p.ItemPrintLine("RAS Replay : " + l)
	}
}
