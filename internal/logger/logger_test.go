package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
	}{
		{"prod", "prod", "", false},
		{"local", "local", "", false},
		{"level override", "dev", "warn", false},
		{"unknown env", "staging", "", true},
		{"bad level", "local", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.level == "warn" && l.Core().Enabled(zapcore.InfoLevel) {
				t.Error("info should be disabled at warn level")
			}
		})
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")

	l, err := NewFileLogger("local", path, "info")
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	l.Info("panel loaded", zap.Int("facets", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"panel loaded"`) || !strings.Contains(string(data), `"facets":3`) {
		t.Errorf("unexpected log contents: %s", data)
	}
}

func TestNewFileLogger_EmptyPath(t *testing.T) {
	l, err := NewFileLogger("local", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected no-op logger")
	}
}

func TestContextLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))
	ctx = With(ctx, zap.String("session", "s1"))
	FromContext(ctx).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["session"]; got != "s1" {
		t.Errorf("session field = %v", got)
	}
}
