package main

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zapcore.Level
	}{
		{name: "debug level", level: "debug", want: zapcore.DebugLevel},
		{name: "info level", level: "info", want: zapcore.InfoLevel},
		{name: "warn level", level: "warn", want: zapcore.WarnLevel},
		{name: "error level", level: "error", want: zapcore.ErrorLevel},
		{name: "unknown level falls back to info", level: "verbose", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			logger, err := initLogger(tt.level)

			// Assert
			if err != nil {
				t.Fatalf("initLogger() error = %v", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			if !logger.Core().Enabled(tt.want) {
				t.Errorf("logger should enable level %v", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Errorf("logger should not enable level %v", tt.want-1)
			}
		})
	}
}
