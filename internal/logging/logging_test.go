package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := New("warn", format, "gmpplanner")
		if err != nil {
			t.Fatalf("New(%s): %v", format, err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("%s logger at warn should not log info", format)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("%s logger at warn should log errors", format)
		}
	}
}
