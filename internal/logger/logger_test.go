package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		encoding string
		wantErr  bool
	}{
		{name: "json info", level: "info", encoding: "json"},
		{name: "console debug", level: "debug", encoding: "console"},
		{name: "unknown level", level: "loud", encoding: "json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.level, tt.encoding)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_LevelIsApplied(t *testing.T) {
	l, err := New("warn", "json")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))
}
