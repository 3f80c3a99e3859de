package logging

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// gocronLogger implements gocron.Logger on top of zerolog.
type gocronLogger struct {
	log zerolog.Logger
}

// NewGocronLogger returns a gocron.Logger that writes with component=scheduler.
func NewGocronLogger(log zerolog.Logger) gocron.Logger {
	return &gocronLogger{log: log.With().Str("component", "scheduler").Logger()}
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.emit(l.log.Debug(), msg, args) }
func (l *gocronLogger) Info(msg string, args ...any)  { l.emit(l.log.Info(), msg, args) }
func (l *gocronLogger) Warn(msg string, args ...any)  { l.emit(l.log.Warn(), msg, args) }
func (l *gocronLogger) Error(msg string, args ...any) { l.emit(l.log.Error(), msg, args) }

// emit turns gocron's key/value pairs into zerolog fields.
func (l *gocronLogger) emit(e *zerolog.Event, msg string, args []any) {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			e = e.Interface("extra", args[i])
			break
		}
		key := fmt.Sprint(args[i])
		if err, ok := args[i+1].(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}
