package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vvka-141/datmerge/pkg/datmerge"
)

const (
	prefixVerbose = "[VERBOSE] "
	prefixWarn    = "[WARN] "
	prefixError   = "[ERROR] "
)

// ConsoleLogger writes one line per message.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	out     io.Writer
	mu      sync.Mutex
}

// NewConsoleLogger creates a logger writing to stderr.
// Verbose() calls are no-ops unless verbose is true.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo creates a logger writing to out.
func NewConsoleLoggerTo(out io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{verbose: verbose, out: out}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write(prefixVerbose, format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Warn logs recoverable problems.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write(prefixWarn, format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(prefixError, format, args)
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, prefix+msg+"\n")
}

var _ datmerge.Logger = (*ConsoleLogger)(nil)
