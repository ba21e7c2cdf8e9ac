package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{"default", &Config{}, "warn"},
		{"verbose", &Config{Verbose: true}, "debug"},
		{"quiet", &Config{Quiet: true}, "error"},
		{"both flags prefer quiet", &Config{Verbose: true, Quiet: true}, "error"},
		{"explicit level wins over verbose", &Config{LogLevel: "info", Verbose: true}, "info"},
		{"explicit level wins over quiet", &Config{LogLevel: "trace", Quiet: true}, "trace"},
		{"invalid level falls back", &Config{LogLevel: "loud"}, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(tt.config))
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{LogLevel: "error", LogFormat: "json", LogOutput: "stderr"})
	assert.Equal(t, "error", logger.GetLevel().String())
}
