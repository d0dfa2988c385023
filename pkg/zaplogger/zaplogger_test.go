package zaplogger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, encoding string
		want            zapcore.Level
		wantErr         bool
	}{
		{"", "", zapcore.InfoLevel, false},
		{"debug", "json", zapcore.DebugLevel, false},
		{"warn", "console", zapcore.WarnLevel, false},
		{"verbose", "json", 0, true},
		{"info", "xml", 0, true},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, tt.encoding)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q, %q) ожидали ошибку", tt.level, tt.encoding)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q, %q) вернул ошибку: %v", tt.level, tt.encoding, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("New(%q, %q): уровень %s выключен", tt.level, tt.encoding, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("New(%q, %q): уровень ниже %s включен", tt.level, tt.encoding, tt.want)
		}
	}
}
