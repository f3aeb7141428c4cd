package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"rasim/internal/rasim"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity accepts the level names used in config files and on the command line.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return SeverityDebug, true
	case "info":
		return SeverityInfo, true
	case "warn", "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	}
	return SeverityInfo, false
}

// severityOf maps a library error severity onto a log level.
func severityOf(sev rasim.ErrSeverity) Severity {
	switch sev {
	case rasim.ErrSevWarn:
		return SeverityWarning
	case rasim.ErrSevInfo:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// Logger interface defines the logging contract for replay components
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...any)

	// Error logs an error. Library errors are logged at their own severity.
	Error(err error)

	Debug(msg string)
	Info(msg string)
	Warning(msg string)
}

// StdLogger implements the Logger interface using Go's standard logger.
// Every line carries the owning component name.
type StdLogger struct {
	name       string
	debugLog   *log.Logger
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	minLevel   Severity
}

// NewStdLogger creates a logger writing to stdout and stderr
func NewStdLogger(name string, minLevel Severity) *StdLogger {
	return NewStdLoggerWithWriter(name, os.Stdout, os.Stderr, minLevel)
}

// NewStdLoggerWithWriter creates a new standard logger with custom writers
func NewStdLoggerWithWriter(name string, stdout, stderr io.Writer, minLevel Severity) *StdLogger {
	return &StdLogger{
		name:       name,
		debugLog:   log.New(stdout, "DEBUG: ", log.Ltime|log.Lshortfile),
		infoLog:    log.New(stdout, "INFO: ", log.Ltime),
		warningLog: log.New(stdout, "WARNING: ", log.Ltime),
		errorLog:   log.New(stderr, "ERROR: ", log.Ltime|log.Lshortfile),
		minLevel:   minLevel,
	}
}

// Log logs a message with the specified severity
func (l *StdLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}
	if l.name != "" {
		msg = "[" + l.name + "] " + msg
	}

	switch severity {
	case SeverityDebug:
		l.debugLog.Output(2, msg)
	case SeverityInfo:
		l.infoLog.Output(2, msg)
	case SeverityWarning:
		l.warningLog.Output(2, msg)
	case SeverityError:
		l.errorLog.Output(2, msg)
	}
}

// Logf logs a formatted message with the specified severity
func (l *StdLogger) Logf(severity Severity, format string, args ...any) {
	l.Log(severity, fmt.Sprintf(format, args...))
}

func (l *StdLogger) Error(err error) {
	if err == nil {
		return
	}
	if e, ok := err.(*Error); ok {
		l.Log(severityOf(e.Sev), e.Error())
		return
	}
	l.Log(SeverityError, err.Error())
}

func (l *StdLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

func (l *StdLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

func (l *StdLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Log(severity Severity, msg string)                 {}
func (l *NoOpLogger) Logf(severity Severity, format string, args ...any) {}
func (l *NoOpLogger) Error(err error)                                   {}
func (l *NoOpLogger) Debug(msg string)                                  {}
func (l *NoOpLogger) Info(msg string)                                   {}
func (l *NoOpLogger) Warning(msg string)                                {}
