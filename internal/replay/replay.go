// Package replay runs a text trace of call, return and squash events
// through a return address stack and reports the stack state after each.
package replay

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rasim/internal/common"
	"rasim/internal/printers"
	"rasim/internal/rasim"
)

// Config mirrors the command line of ras_replay.
type Config struct {
	RASEntries int
	TraceFile  string

	// Input, when set, is read instead of TraceFile. TraceName labels it
	// in the report.
	Input     io.Reader
	TraceName string

	PrintState   bool
	OutputWriter io.Writer
	Logger       common.Logger
}

// Run replays the whole trace and prints the report. Every report line is
// also sent to cfg.Logger at debug level.
func Run(cfg Config) (Stats, error) {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stdout
	}

	in, name := cfg.Input, cfg.TraceName
	if in == nil {
		if cfg.TraceFile == "" {
			return Stats{}, common.NewErrorMsg(rasim.ErrSevError, rasim.ErrInvalidParamVal, "no trace file given")
		}
		f, err := os.Open(cfg.TraceFile)
		if err != nil {
			return Stats{}, common.NewErrorMsg(rasim.ErrSevError, rasim.ErrFileError, err.Error())
		}
		defer f.Close()
		in = f
		if name == "" {
			name = filepath.Base(cfg.TraceFile)
		}
	}
	if name == "" {
		name = "<input>"
	}

	ops, err := ReadTrace(in)
	if err != nil {
		return Stats{}, fmt.Errorf("reading trace %s: %w", name, err)
	}

	engine, err := NewEngine(cfg.RASEntries, cfg.Logger)
	if err != nil {
		return Stats{}, err
	}

	item := printers.NewItemPrinter(w)
	if cfg.Logger != nil {
		item.SetMessageLogger(cfg.Logger)
	}
	printer := printers.NewStatePrinter(item)
	printer.MuteState(!cfg.PrintState)
	printer.PrintHeader(name, cfg.RASEntries)

	for _, op := range ops {
		res, err := engine.Apply(op)
		if err != nil {
			return engine.Stats(), fmt.Errorf("replaying %s: %w", name, err)
		}
		printer.PrintState(printers.StateLine{
			Idx:    op.Line,
			Op:     op.Kind.String(),
			Detail: res.Detail(),
			TopIdx: res.State.TopIdx,
			Used:   res.Used,
			Top:    res.State.Top,
		})
	}

	st := engine.Stats()
	printer.PrintSummary(SummaryLines(st)...)
	return st, nil
}

// SummaryLines formats the closing report block.
func SummaryLines(st Stats) []string {
	return []string{
		fmt.Sprintf("ops=%d calls=%d rets=%d underflows=%d", st.Ops, st.Calls, st.Returns, st.Underflows),
		fmt.Sprintf("squashed=%d committed=%d resets=%d restores=%d", st.Squashed, st.Committed, st.Resets, st.Restores),
		fmt.Sprintf("predictions=%d correct=%d mispredicted=%d accuracy=%.2f%%",
			st.Predictions, st.Correct, st.Mispredictions, st.Accuracy()),
	}
}
