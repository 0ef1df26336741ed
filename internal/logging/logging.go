// Package logging builds the zap loggers used for diagnostic output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level: %s", name)
	}
	return level, nil
}

// New returns a console-encoded logger writing to w (stderr when nil).
// verbose forces the debug level regardless of levelName.
func New(levelName string, verbose bool, w io.Writer) (*zap.Logger, error) {
	level := zapcore.DebugLevel
	if !verbose {
		var err error
		level, err = ParseLevel(levelName)
		if err != nil {
			return nil, err
		}
	}
	if w == nil {
		w = os.Stderr
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core), nil
}
