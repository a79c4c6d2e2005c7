// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/outreach/pkg/types"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LogConfig
		verbose bool
		enabled zapcore.Level
		off     zapcore.Level
	}{
		{"default info", types.LogConfig{}, false, zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", types.LogConfig{Level: "WARN"}, false, zapcore.WarnLevel, zapcore.InfoLevel},
		{"json error", types.LogConfig{Level: "error", JSON: true}, false, zapcore.ErrorLevel, zapcore.WarnLevel},
		{"verbose overrides", types.LogConfig{Level: "error"}, true, zapcore.DebugLevel, zapcore.DebugLevel - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg, tt.verbose)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.off))
		})
	}
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(types.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l, err := New(types.LogConfig{}, false)
	require.NoError(t, err)
	assert.Same(t, l, OrNop(l))
}
