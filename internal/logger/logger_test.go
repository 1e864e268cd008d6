package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level  string
		format string
		want   zapcore.Level
	}{
		{level: "debug", format: "json", want: zapcore.DebugLevel},
		{level: "info", format: "console", want: zapcore.InfoLevel},
		{level: "warn", format: "json", want: zapcore.WarnLevel},
		{level: "error", format: "json", want: zapcore.ErrorLevel},
		{level: "bogus", format: "json", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"_"+tt.format, func(t *testing.T) {
			l, err := New(tt.level, tt.format)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
