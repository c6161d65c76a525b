package trace

import (
	"fmt"
	"io"
	"log"
	"os"
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

// Logger is the logging contract for session loading and navigation.
type Logger interface {
	Log(severity Severity, msg string)
	Logf(severity Severity, format string, args ...interface{})
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
	Error(err error)
}

// StdLogger implements Logger using Go's standard logger.
type StdLogger struct {
	infoLog  *log.Logger
	errorLog *log.Logger
	minLevel Severity
}

// NewStdLogger creates a logger writing info to stdout and errors to stderr.
func NewStdLogger(minLevel Severity) *StdLogger {
	return NewStdLoggerWithWriter(os.Stdout, os.Stderr, minLevel)
}

// NewStdLoggerWithWriter creates a logger with custom writers.
func NewStdLoggerWithWriter(stdout, stderr io.Writer, minLevel Severity) *StdLogger {
	return &StdLogger{
		infoLog:  log.New(stdout, "", log.Ltime),
		errorLog: log.New(stderr, "", log.Ltime),
		minLevel: minLevel,
	}
}

func (l *StdLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}
	out := l.infoLog
	if severity >= SeverityWarning {
		out = l.errorLog
	}
	out.Printf("%s: %s", severity, msg)
}

func (l *StdLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.Log(severity, fmt.Sprintf(format, args...))
}

func (l *StdLogger) Debug(msg string)   { l.Log(SeverityDebug, msg) }
func (l *StdLogger) Info(msg string)    { l.Log(SeverityInfo, msg) }
func (l *StdLogger) Warning(msg string) { l.Log(SeverityWarning, msg) }

func (l *StdLogger) Error(err error) {
	if err != nil {
		l.Log(SeverityError, err.Error())
	}
}

// NoOpLogger is a logger that doesn't log anything.
type NoOpLogger struct{}

func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

func (l *NoOpLogger) Log(severity Severity, msg string)                       {}
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}
func (l *NoOpLogger) Debug(msg string)                                        {}
func (l *NoOpLogger) Info(msg string)                                         {}
func (l *NoOpLogger) Warning(msg string)                                      {}
func (l *NoOpLogger) Error(err error)                                         {}
