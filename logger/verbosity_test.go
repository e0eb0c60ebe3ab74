package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityTrace))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestShouldOutput(t *testing.T) {
	// Results always show
	for v := 0; v <= 3; v++ {
		assert.True(t, ShouldOutput(v, OutputResults), "verbosity %d", v)
	}

	assert.False(t, ShouldOutput(VerbosityUser, OutputProgress))
	assert.True(t, ShouldOutput(VerbosityInfo, OutputProgress))

	assert.False(t, ShouldOutput(VerbosityInfo, OutputMessageFlow))
	assert.True(t, ShouldOutput(VerbosityDebug, OutputMessageFlow))

	assert.False(t, ShouldOutput(VerbosityDebug, OutputFrameStream))
	assert.True(t, ShouldOutput(VerbosityTrace, OutputFrameStream))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(VerbosityUser))
	assert.Equal(t, "Info (-v)", LevelName(VerbosityInfo))
	assert.Equal(t, "Debug (-vv)", LevelName(VerbosityDebug))
	assert.Equal(t, "Trace (-vvv)", LevelName(VerbosityTrace))
	assert.Equal(t, "Trace (-vvv)", LevelName(9))
}

func TestInitializeSetsGlobal(t *testing.T) {
	t.Cleanup(func() { Logger = nil; _ = Initialize(false) })

	assert.NoError(t, Initialize(true))
	assert.NotNil(t, Logger)
	assert.True(t, JSONOutput)

	assert.NoError(t, InitializeWithLevel(zapcore.DebugLevel))
	assert.NotNil(t, Logger)
}
