package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zap.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zap.InfoLevel, parseLevel(""))
	assert.Equal(t, zap.InfoLevel, parseLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		log, err := NewLogger("healthfirst", env, "warn")
		require.NoError(t, err, env)
		assert.False(t, log.Core().Enabled(zap.InfoLevel), env)
		assert.True(t, log.Core().Enabled(zap.WarnLevel), env)
	}
}
