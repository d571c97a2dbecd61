// Package logging configures the process logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/phuslu/log"
)

// Setup installs the default logger. format is "console" or "json".
func Setup(level, format string) {
	log.DefaultLogger = New(os.Stderr, level, format)
}

// New builds a logger writing to out.
func New(out io.Writer, level, format string) log.Logger {
	var w log.Writer
	switch format {
	case "json":
		w = &log.IOWriter{Writer: out}
	default:
		w = &log.ConsoleWriter{Writer: out, EndWithMessage: true}
	}
	return log.Logger{
		Level:      log.ParseLevel(level),
		Caller:     1,
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     w,
	}
}

// CronLogger adapts a phuslu logger to the cron.Logger interface.
type CronLogger struct {
	Logger *log.Logger
}

// Info logs scheduler routine messages at debug level.
func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	withFields(c.Logger.Debug(), keysAndValues).Msg(msg)
}

// Error logs scheduler failures, including recovered job panics.
func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	withFields(c.Logger.Error().Err(err), keysAndValues).Msg(msg)
}

// withFields attaches cron's alternating key/value list to e.
func withFields(e *log.Entry, kv []interface{}) *log.Entry {
	for i := 0; i < len(kv); i += 2 {
		var val interface{} = "(missing)"
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		e = e.Any(fmt.Sprint(kv[i]), val)
	}
	return e
}
