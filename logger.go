package directory

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger receives structured operation logs from the client.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// nopLogger discards everything. It is the default when no Logger is
// configured.
type nopLogger struct{}

func (nopLogger) Debug(string, map[string]any) {}
func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Warn(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps zl for use as the client's Logger.
func NewZerologLogger(zl zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: zl}
}

func (l *ZerologLogger) Debug(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, fields map[string]any) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, fields map[string]any) {
	l.log.Error().Fields(fields).Msg(msg)
}

// logOperation runs fn, logging start and outcome with timing and a
// correlation ID so concurrent operations can be told apart.
func logOperation(log Logger, operation string, fields map[string]any, fn func() error) error {
	opFields := map[string]any{
		"operation":    operation,
		"operation_id": uuid.NewString(),
	}
	maps.Copy(opFields, fields)

	log.Debug("starting operation", opFields)

	start := time.Now()
	err := fn()
	opFields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		opFields["error"] = err.Error()
		log.Error("operation failed", opFields)
		return err
	}

	log.Debug("operation completed", opFields)
	return nil
}
