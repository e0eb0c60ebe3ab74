package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Everforest-derived palette: calm greens with warm accents
const (
	colorFg     = "\x1b[38;5;223m" // Soft beige
	colorGreen  = "\x1b[38;5;108m" // Bright green - graph/layout activity
	colorDeep   = "\x1b[38;5;65m"  // Deep green - server lifecycle
	colorAqua   = "\x1b[38;5;109m" // Blue-green - client/network, IDs
	colorNumber = "\x1b[38;5;107m" // Mid green - counts and durations
	colorYellow = "\x1b[38;5;179m" // Warnings
	colorRed    = "\x1b[38;5;167m" // Errors
	colorRedBg  = "\x1b[48;5;52m"
	colorYelBg  = "\x1b[48;5;58m"
)

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  Client connected  127.0.0.1:52289 (412 nodes, 1930 links)"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(colorNumber)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level shown only for WARN and above
	if ent.Level > zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	final.AppendString("  ")
	final.AppendString(messageColor(ent.Message))
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if len(fields) > 0 {
		if extracted := extractFieldValues(fields); extracted != "" {
			final.AppendString("  ")
			final.AppendString(extracted)
		}
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorYelBg + colorYellow + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + colorRedBg + colorRed + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colorRedBg + colorRed + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// messageColor picks a color from the message's subject area
func messageColor(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "client") || strings.Contains(lower, "websocket") ||
		strings.Contains(lower, "connect"):
		return colorAqua
	case strings.Contains(lower, "layout") || strings.Contains(lower, "simulation") ||
		strings.Contains(lower, "graph"):
		return colorGreen
	case strings.Contains(lower, "server") || strings.Contains(lower, "start") ||
		strings.Contains(lower, "stop") || strings.Contains(lower, "config"):
		return colorDeep
	default:
		return colorFg
	}
}

// getFieldValue extracts the value from a zap field, handling common field types
func getFieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// extractFieldValues pulls just the values from the structured fields the
// console reader cares about; everything else stays machine-only.
// Input: {"client_id": "c_123", "nodes": 19, "links": 4}
// Output: "c_123 (19 nodes, 4 links)"
func extractFieldValues(fields []zapcore.Field) string {
	var values []string
	var nodeCount, linkCount string

	for _, field := range fields {
		switch field.Key {
		case "client_id":
			if val := getFieldValue(field); val != "" {
				values = append(values, colorAqua+val+colorReset)
			}
		case "nodes":
			nodeCount = getFieldValue(field)
		case "links":
			linkCount = getFieldValue(field)
		case "duration_ms":
			if val := getFieldValue(field); val != "" {
				values = append(values, colorNumber+val+colorReset+"ms")
			}
		case "error":
			if val := getFieldValue(field); val != "" {
				values = append(values, colorRed+val+colorReset)
			}
		}
	}

	if nodeCount != "" && linkCount != "" {
		values = append(values,
			colorFg+"("+colorNumber+nodeCount+colorReset+colorFg+" nodes, "+
				colorNumber+linkCount+colorReset+colorFg+" links)"+colorReset)
	}

	return strings.Join(values, " ")
}
