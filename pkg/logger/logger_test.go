package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultIsNop(t *testing.T) {
	require.NotNil(t, Logger)
	assert.NotPanics(t, func() { Logger.Infow("discarded", "key", "value") })
}

func TestInitialize(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	tests := []struct {
		name  string
		opts  Options
		debug bool
	}{
		{name: "console", opts: Options{}, debug: false},
		{name: "console verbose", opts: Options{Verbose: true}, debug: true},
		{name: "json", opts: Options{JSON: true}, debug: false},
		{name: "json verbose", opts: Options{JSON: true, Verbose: true}, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Initialize(tt.opts))
			assert.Equal(t, tt.debug, Logger.Desugar().Core().Enabled(zap.DebugLevel))
			assert.True(t, Logger.Desugar().Core().Enabled(zap.InfoLevel))
		})
	}
}
