// Package logging builds the process zap logger and holds it for packages
// that are not handed one explicitly.
package logging

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

func init() { logger.Store(zap.NewNop()) }

func Logger() *zap.Logger { return logger.Load() }

func SetLogger(l *zap.Logger) { logger.Store(l) }

// New builds a console logger for development or a JSON logger for
// production. level is a zap level name; empty means info.
func New(development bool, level string) (*zap.Logger, error) {
	var c zap.Config
	if development {
		c = zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeCaller = func(
			caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
			p := caller.TrimmedPath()
			if len(p) > 30 {
				p = "..." + p[len(p)-27:]
			}
			enc.AppendString(fmt.Sprintf("%30s", p))
		}
	} else {
		c = zap.NewProductionConfig()
	}
	c.DisableStacktrace = true

	lvl := zap.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	c.Level = zap.NewAtomicLevelAt(lvl)
	return c.Build()
}
