package main

import (
	"flag"
	"fmt"
	"os"

	"rasim/internal/common"
	"rasim/internal/config"
	"rasim/internal/rasim"
	"rasim/internal/replay"
)

// overrides holds the command line settings that take precedence over the
// config file. Zero values mean "not given".
type overrides struct {
	traceFile string
	entries   int
	quiet     bool
	logLevel  string
}

// applyFlags layers the command line over cfg and checks the result is
// runnable.
func applyFlags(cfg *config.Config, o overrides) error {
	if o.traceFile != "" {
		cfg.TraceFile = o.traceFile
	}
	if o.entries != 0 {
		cfg.RASEntries = o.entries
	}
	if o.quiet {
		cfg.PrintState = false
	}
	if o.logLevel != "" {
		sev, ok := common.ParseSeverity(o.logLevel)
		if !ok {
			return common.NewErrorMsg(rasim.ErrSevError, rasim.ErrInvalidParamVal,
				fmt.Sprintf("unknown log level %q", o.logLevel))
		}
		cfg.LogLevel = sev
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.TraceFile == "" {
		return common.NewErrorMsg(rasim.ErrSevError, rasim.ErrInvalidParamVal, "Missing trace file on -trace option")
	}
	return nil
}

func main() {
	configFile := flag.String("config", "", "Path to a replay ini file")
	var o overrides
	flag.StringVar(&o.traceFile, "trace", "", "Replay trace file (overrides the config file)")
	flag.IntVar(&o.entries, "entries", 0, "Return address stack entries (overrides the config file)")
	flag.BoolVar(&o.quiet, "quiet", false, "Only print the summary")
	flag.StringVar(&o.logLevel, "log_level", "", "debug, info, warning or error")

	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Printf("RAS Replay : Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := applyFlags(cfg, o); err != nil {
		fmt.Printf("RAS Replay : Error: %v\n", err)
		os.Exit(1)
	}

	_, err := replay.Run(replay.Config{
		RASEntries:   cfg.RASEntries,
		TraceFile:    cfg.TraceFile,
		PrintState:   cfg.PrintState,
		OutputWriter: os.Stdout,
		Logger:       common.NewStdLogger("ras_replay", cfg.LogLevel),
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
