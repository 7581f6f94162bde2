// Package logging defines the logger capability consumed by the migration
// engine. The engine only ever logs through this interface; callers plug in
// their own backend or run silently with Nop.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Logger is the capability the engine depends on. Arguments are alternating
// key/value pairs appended to the message.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// stdLogger writes leveled lines through the standard library logger.
type stdLogger struct {
	logger  *log.Logger
	verbose bool
}

// NewStd returns a Logger backed by the standard library, writing to stderr
// with the given prefix. Debug lines are emitted only when verbose is true.
func NewStd(prefix string, verbose bool) Logger {
	return &stdLogger{
		logger:  log.New(os.Stderr, prefix, log.LstdFlags),
		verbose: verbose,
	}
}

func (l *stdLogger) Debug(msg string, args ...any) {
	if l.verbose {
		l.logger.Println("DEBUG:", format(msg, args...))
	}
}

func (l *stdLogger) Info(msg string, args ...any) {
	l.logger.Println("INFO:", format(msg, args...))
}

func (l *stdLogger) Warn(msg string, args ...any) {
	l.logger.Println("WARN:", format(msg, args...))
}

func (l *stdLogger) Error(msg string, args ...any) {
	l.logger.Println("ERROR:", format(msg, args...))
}

func format(msg string, args ...any) string {
	for i := 0; i+1 < len(args); i += 2 {
		msg += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}

	return msg
}
