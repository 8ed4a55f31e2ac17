package lower

import (
	"log"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Logger encapsulates a logger and the module it belongs to.
type Logger struct {
	*zap.SugaredLogger
	module string
}

// LogSetter is implemented by anything that accepts a Logger.
type LogSetter interface {
	SetLogger(*Logger)
}

// Module returns the (stylised) module name.
func (l *Logger) Module() string {
	return l.module
}

// NewLogger returns a logger with default production options.
func NewLogger() *Logger {
	color.NoColor = true
	l, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return &Logger{SugaredLogger: l.Sugar()}
}

// NewDevLogger returns a logger with development options, for debugging
// a lowering run.
func NewDevLogger() *Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return &Logger{SugaredLogger: l.Sugar()}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
