package main

import (
	"log/slog"
	"testing"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in      string
		want    grid.Coord
		wantErr bool
	}{
		{"0,0", grid.Coord{}, false},
		{"12, 7", grid.Coord{X: 12, Y: 7}, false},
		{"3", grid.Coord{}, true},
		{"a,b", grid.Coord{}, true},
	}
	for _, tt := range tests {
		got, err := parseCoord(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCoord(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCoord(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logLevel(in); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("PATHSIM_SEED", "17")
	if got := envInt64OrDefault("PATHSIM_SEED", 42); got != 17 {
		t.Errorf("envInt64OrDefault = %d, want 17", got)
	}
	t.Setenv("PATHSIM_SEED", "many")
	if got := envInt64OrDefault("PATHSIM_SEED", 42); got != 42 {
		t.Errorf("envInt64OrDefault(bad) = %d, want 42", got)
	}
	t.Setenv("PATHSIM_DB", "")
	if got := envOrDefault("PATHSIM_DB", "x.db"); got != "x.db" {
		t.Errorf("envOrDefault = %q, want x.db", got)
	}
}
