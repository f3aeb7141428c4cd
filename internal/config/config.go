// Package config loads the replay tool configuration from an ini file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"rasim/internal/common"
	"rasim/internal/rasim"
)

const (
	RASSectionName = "ras"
	EntriesKey     = "entries"

	ReplaySectionName = "replay"
	TraceKey          = "trace"
	LogLevelKey       = "log_level"
	PrintStateKey     = "print_state"
)

// DefaultRASEntries matches the usual 16-deep hardware return stack.
const DefaultRASEntries = 16

// Config holds the replay tool settings.
type Config struct {
	RASEntries int
	TraceFile  string
	LogLevel   common.Severity
	PrintState bool
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		RASEntries: DefaultRASEntries,
		LogLevel:   common.SeverityWarning,
		PrintState: true,
	}
}

// Parse reads a config from r, starting from Default. Keys that are absent
// keep their default value.
func Parse(r io.Reader) (*Config, error) {
	ini, err := ParseIni(r)
	if err != nil {
		return nil, err
	}
	cfg := Default()

	if v, ok := ini.Value(RASSectionName, EntriesKey); ok {
		n, err := strconv.ParseInt(v, 0, 32)
		if err != nil {
			return nil, parseErr(RASSectionName, EntriesKey, v)
		}
		cfg.RASEntries = int(n)
	}

	if v, ok := ini.Value(ReplaySectionName, TraceKey); ok {
		cfg.TraceFile = v
	}

	if v, ok := ini.Value(ReplaySectionName, LogLevelKey); ok {
		sev, ok := common.ParseSeverity(v)
		if !ok {
			return nil, parseErr(ReplaySectionName, LogLevelKey, v)
		}
		cfg.LogLevel = sev
	}

	if v, ok := ini.Value(ReplaySectionName, PrintStateKey); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, parseErr(ReplaySectionName, PrintStateKey, v)
		}
		cfg.PrintState = b
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the config file at path. A relative trace file is resolved
// against the directory holding the config file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewErrorMsg(rasim.ErrSevError, rasim.ErrFileError, err.Error())
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.TraceFile != "" && !filepath.IsAbs(cfg.TraceFile) {
		cfg.TraceFile = filepath.Join(filepath.Dir(path), cfg.TraceFile)
	}
	return cfg, nil
}

// Validate rejects settings the return address stack cannot be built with.
func (c *Config) Validate() error {
	if c.RASEntries <= 0 {
		return common.NewErrorMsg(rasim.ErrSevError, rasim.ErrInvalidParamVal,
			fmt.Sprintf("[%s] %s must be > 0, got %d", RASSectionName, EntriesKey, c.RASEntries))
	}
	return nil
}

func parseErr(section, key, val string) error {
	return common.NewErrorMsg(rasim.ErrSevError, rasim.ErrConfigParse,
		fmt.Sprintf("[%s] %s: invalid value %q", section, key, val))
}
