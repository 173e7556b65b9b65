// Package obslog defines the minimal logging contract shared across the
// runtime's components.
package obslog

import (
	"fmt"
	"sync"

	"github.com/fatih/color"
)

// Logger is the logging contract every component depends on. It is
// intentionally small so call sites never need to reach for a concrete
// logging library.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Nop is a Logger that discards everything. Useful as a safe default and
// in tests that don't care about log output.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// IsNil reports whether logger is a nil interface or a nil value wrapped
// in a non-nil interface (e.g. a typed nil pointer), which is otherwise a
// common source of panics when callers forget to check.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	if l, ok := logger.(*Console); ok {
		return l == nil
	}
	return false
}

// OrNop returns logger unchanged unless it is nil in any sense IsNil
// detects, in which case it returns a safe Nop logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop{}
	}
	return logger
}

// Console is a small, dependency-light console logger that colors the
// level prefix. It is concurrency-safe.
type Console struct {
	mu      sync.Mutex
	debug   bool
	prefix  string
	warnCol *color.Color
	errCol  *color.Color
	infoCol *color.Color
	dbgCol  *color.Color
}

// NewConsole builds a Console logger. When debug is false, Debug calls are
// suppressed.
func NewConsole(prefix string, debug bool) *Console {
	return &Console{
		debug:   debug,
		prefix:  prefix,
		warnCol: color.New(color.FgYellow),
		errCol:  color.New(color.FgRed, color.Bold),
		infoCol: color.New(color.FgCyan),
		dbgCol:  color.New(color.FgHiBlack),
	}
}

func (c *Console) line(col *color.Color, level, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	col.Printf("[%s] %s%s\n", level, c.prefix, msg)
}

func (c *Console) Debug(format string, args ...any) {
	if !c.debug {
		return
	}
	c.line(c.dbgCol, "debug", format, args...)
}

func (c *Console) Info(format string, args ...any) { c.line(c.infoCol, "info", format, args...) }
func (c *Console) Warn(format string, args ...any) { c.line(c.warnCol, "warn", format, args...) }
func (c *Console) Error(format string, args ...any) { c.line(c.errCol, "error", format, args...) }
