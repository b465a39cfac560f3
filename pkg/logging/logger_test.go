package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON %q: %v", buf.String(), err)
	}
	return entry
}

func debugLogger(buf *bytes.Buffer) *Logger {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: sanitizeAttributes,
	})
	return &Logger{slog.New(handler)}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil || logger.Logger == nil {
		t.Fatal("NewLogger() returned an unusable logger")
	}
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Setenv("RINGBREAK_LOG_LEVEL", "WARN")

	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf)
	ctx := WithRunID(context.Background(), "")

	logger.Info(ctx, "hidden at warn level")
	if buf.Len() != 0 {
		t.Errorf("info message should be filtered, got %q", buf.String())
	}

	logger.Warn(ctx, "ring stack exhausted", "token", "abc", "rings", 3)
	entry := decode(t, &buf)
	if entry["token"] != "[REDACTED]" {
		t.Errorf("Expected token to be redacted, got %v", entry["token"])
	}
	if entry["rings"] != float64(3) {
		t.Errorf("Expected rings 3, got %v", entry["rings"])
	}
	if entry[RunIDKey] != RunID(ctx) {
		t.Errorf("Expected run_id %q, got %v", RunID(ctx), entry[RunIDKey])
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected slog.Level
	}{
		{"debug", "DEBUG", slog.LevelDebug},
		{"info", "INFO", slog.LevelInfo},
		{"warn", "WARN", slog.LevelWarn},
		{"warning_alias", "warning", slog.LevelWarn},
		{"error", "ERROR", slog.LevelError},
		{"lowercase", "debug", slog.LevelDebug},
		{"offset", "DEBUG+2", slog.LevelDebug + 2},
		{"padded", " error ", slog.LevelError},
		{"invalid", "LOUD", slog.LevelInfo},
		{"empty", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RINGBREAK_LOG_LEVEL", tt.envValue)
			if got := levelFromEnv(); got != tt.expected {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunID(t *testing.T) {
	t.Run("generated_ids_are_unique_uuids", func(t *testing.T) {
		a, b := NewRunID(), NewRunID()
		if a == b {
			t.Error("NewRunID() returned duplicate IDs")
		}
		if _, err := uuid.Parse(a); err != nil {
			t.Errorf("NewRunID() returned a malformed UUID %q: %v", a, err)
		}
	})

	t.Run("explicit_id", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "run-7")
		if got := RunID(ctx); got != "run-7" {
			t.Errorf("RunID() = %q, want run-7", got)
		}
	})

	t.Run("missing_id", func(t *testing.T) {
		if got := RunID(context.Background()); got != "" {
			t.Errorf("RunID() = %q, want empty", got)
		}
	})

	t.Run("empty_id_is_generated", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "")
		if _, err := uuid.Parse(RunID(ctx)); err != nil {
			t.Errorf("expected a generated UUID, got %q", RunID(ctx))
		}
	})
}

func TestSanitizeAttributes(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		expected string
	}{
		{"password", slog.String("password", "secret123"), "[REDACTED]"},
		{"token_suffix", slog.String("auth_token", "bearer"), "[REDACTED]"},
		{"upper_case", slog.String("API_SECRET", "s"), "[REDACTED]"},
		{"ring_count", slog.Int("rings", 4), "4"},
		{"config_path", slog.String("config_path", "ringbreak.json"), "ringbreak.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeAttributes(nil, tt.attr)
			if result.Value.String() != tt.expected {
				t.Errorf("sanitizeAttributes() = %q, want %q", result.Value.String(), tt.expected)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := debugLogger(&buf)
	ctx := WithRunID(context.Background(), "run-123")

	tests := []struct {
		name  string
		log   func()
		level string
		extra map[string]interface{}
	}{
		{"info", func() { logger.Info(ctx, "msg", "ring", 3) }, "INFO", map[string]interface{}{"ring": float64(3)}},
		{"warn", func() { logger.Warn(ctx, "msg") }, "WARN", nil},
		{"debug", func() { logger.Debug(ctx, "msg") }, "DEBUG", nil},
		{"error", func() { logger.Error(ctx, "msg", errors.New("boom")) }, "ERROR", map[string]interface{}{"error": "boom"}},
		{"error_nil", func() { logger.Error(ctx, "msg", nil) }, "ERROR", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			entry := decode(t, &buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry[RunIDKey] != "run-123" {
				t.Errorf("run_id = %v, want run-123", entry[RunIDKey])
			}
			for k, v := range tt.extra {
				if entry[k] != v {
					t.Errorf("%s = %v, want %v", k, entry[k], v)
				}
			}
			if tt.name == "error_nil" {
				if _, ok := entry["error"]; ok {
					t.Error("nil error should not add an error attribute")
				}
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := debugLogger(&buf).WithComponent("audio")

	logger.Info(context.Background(), "note played")
	entry := decode(t, &buf)
	if entry[ComponentKey] != "audio" {
		t.Errorf("component = %v, want audio", entry[ComponentKey])
	}
	if strings.Contains(buf.String(), RunIDKey) {
		t.Error("entry without a run ID in context should not carry one")
	}
}

func TestWrapError(t *testing.T) {
	original := errors.New("original error")

	tests := []struct {
		name string
		err  error
		ctx  string
		args []any
		want string
	}{
		{"nil_error", nil, "context", nil, ""},
		{"plain_context", original, "loading config", nil, "loading config: original error"},
		{"formatted_context", original, "ring %d of %s", []any{3, "stack"}, "ring 3 of stack: original error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.ctx, tt.args...)
			if tt.err == nil {
				if got != nil {
					t.Errorf("WrapError(nil) = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.want {
				t.Errorf("WrapError() = %q, want %q", got.Error(), tt.want)
			}
			if !errors.Is(got, original) {
				t.Error("WrapError() should preserve the original error")
			}
		})
	}
}
