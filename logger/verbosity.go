package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
//
// These levels control WHAT categories of output are shown, not just log
// severity. Handlers consult ShouldOutput before emitting high-volume detail
// such as per-frame broadcast logs.
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + progress, startup, client connects
	VerbosityDebug = 2 // -vv: + message routing, timing, config details
	VerbosityTrace = 3 // -vvv: + per-tick frames, full payload sizes
)

// Output categories gated by verbosity. Unlike zap levels (severity),
// categories control what kinds of information appear at all.
type OutputCategory int

const (
	OutputResults      OutputCategory = iota // Command output, final status
	OutputProgress                           // Startup, client lifecycle
	OutputMessageFlow                        // WS message routing, config changes
	OutputFrameStream                        // Per-tick position frames
)

// ShouldOutput reports whether a category is visible at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	switch category {
	case OutputResults:
		return true
	case OutputProgress:
		return verbosity >= VerbosityInfo
	case OutputMessageFlow:
		return verbosity >= VerbosityDebug
	case OutputFrameStream:
		return verbosity >= VerbosityTrace
	default:
		return false
	}
}

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels
//
// Mapping:
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2+ (-vv)  -> DebugLevel (+ debug messages)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "User"
	case VerbosityInfo:
		return "Info (-v)"
	case VerbosityDebug:
		return "Debug (-vv)"
	default:
		return "Trace (-vvv)"
	}
}
