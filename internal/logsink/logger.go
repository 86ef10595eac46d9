// Package logsink implements membership.Log on top of zap, replacing
// the original implementation's hand-rolled dbg.log/stats.log file
// pair (a pair of static FILE* buffers with a broken copy constructor)
// with two independently configured zap cores built once per process
// and passed down by reference.
package logsink

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mcastellin/clustermemb/internal/membership"
)

// Logger implements membership.Log. events carries log_node_add and
// log_node_remove as structured JSON lines; debug carries free-form
// log_debug lines. Keeping them as separate zap.Logger instances, each
// backed by its own file, mirrors the two-stream split of the original
// log sink without its global mutable state.
//
// Every line carries a run_id field so that log lines from separate
// invocations of the same process (e.g. consecutive "simulate" runs
// writing to the same default log path) can be told apart.
type Logger struct {
	events *zap.Logger
	debug  *zap.Logger
}

// New builds a Logger writing events to eventsPath and debug lines to
// debugPath, both newline-delimited JSON, both always created/appended.
func New(eventsPath, debugPath string) (*Logger, error) {
	runID := uuid.NewString()

	events, err := buildCore(eventsPath, runID)
	if err != nil {
		return nil, fmt.Errorf("logsink: events core: %w", err)
	}
	debug, err := buildCore(debugPath, runID)
	if err != nil {
		return nil, fmt.Errorf("logsink: debug core: %w", err)
	}
	return &Logger{events: events, debug: debug}, nil
}

func buildCore(path, runID string) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encoderConfig)

	sink, _, err := zap.Open(path)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(zap.DebugLevel))
	return zap.New(core).With(zap.String("run_id", runID)), nil
}

// LogNodeAdd implements membership.Log.
func (l *Logger) LogNodeAdd(self, added membership.Address) {
	l.events.Info("log_node_add",
		zap.String("self", self.String()),
		zap.String("added", added.String()),
	)
}

// LogNodeRemove implements membership.Log.
func (l *Logger) LogNodeRemove(self, removed membership.Address) {
	l.events.Info("log_node_remove",
		zap.String("self", self.String()),
		zap.String("removed", removed.String()),
	)
}

// LogDebug implements membership.Log.
func (l *Logger) LogDebug(self membership.Address, format string, args ...any) {
	l.debug.Debug(fmt.Sprintf(format, args...), zap.String("self", self.String()))
}

// Sync flushes both underlying cores. Callers should defer Sync before
// process exit.
func (l *Logger) Sync() error {
	err1 := l.events.Sync()
	err2 := l.debug.Sync()
	if err1 != nil {
		return err1
	}
	return err2
}

var _ membership.Log = (*Logger)(nil)
