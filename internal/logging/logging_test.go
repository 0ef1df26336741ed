package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zapcore.Level
		wantErr bool
	}{
		{name: "debug", want: zapcore.DebugLevel},
		{name: " WARN ", want: zapcore.WarnLevel},
		{name: "error", want: zapcore.ErrorLevel},
		{name: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", false, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Warn("shown", zap.String("backend", "ollama"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "ollama")
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("error", true, &buf)
	require.NoError(t, err)

	logger.Debug("running git command")
	assert.Contains(t, buf.String(), "running git command")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("chatty", false, nil)
	assert.Error(t, err)
}
