package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

// Logger adapts the service logger to goose's Printf/Fatalf interface.
type Logger struct {
	ctx  context.Context
	logg *logger.Logger
}

// NewLogger binds goose output to ctx and logg.
func NewLogger(ctx context.Context, logg *logger.Logger) *Logger {
	return &Logger{ctx: ctx, logg: logg}
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.logg.Info(l.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs without exiting; goose returns the error to the caller as well.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	l.logg.Error(l.ctx, "goose fatal", fmt.Errorf("%s", msg))
}
