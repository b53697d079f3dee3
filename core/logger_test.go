package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestZapLogger_Fields verifies fields and levels reach zap
// Given: A ZapLogger over an observer core
// When: Messages are logged with fields, including an error
// Then: Each entry carries its level, message and fields
func TestZapLogger_Fields(t *testing.T) {
	// Arrange
	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(obsCore))

	// Act
	logger.Debug("debug msg", F("pool", "p"))
	logger.Info("info msg", F("workers", 4))
	logger.Warn("warn msg")
	logger.Error("error msg", F("error", errors.New("boom")))

	// Assert
	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, entry := range entries {
		if entry.Level != wantLevels[i] {
			t.Errorf("entry %d level = %v, want %v", i, entry.Level, wantLevels[i])
		}
	}
	if got := entries[1].ContextMap()["workers"]; got != int64(4) {
		t.Errorf("workers field = %v, want 4", got)
	}
	if got := entries[3].ContextMap()["error"]; got != "boom" {
		t.Errorf("error field = %v, want boom", got)
	}
}

// TestNewLogger_RotatingFile verifies file output through lumberjack
func TestNewLogger_RotatingFile(t *testing.T) {
	cfg := DefaultLogConfig()
	cfg.File = filepath.Join(t.TempDir(), "pool.log")

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() = %v", err)
	}
	logger.Info("written to file", F("pool", "file-pool"))
	logger.Debug("below level")
	_ = logger.Sync()

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "written to file") || !strings.Contains(content, "file-pool") {
		t.Errorf("log file missing entry: %q", content)
	}
	if strings.Contains(content, "below level") {
		t.Errorf("debug entry written at info level: %q", content)
	}
}

// TestNewLogger_InvalidLevel verifies bad levels are rejected
func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := DefaultLogConfig()
	cfg.Level = "loud"

	if _, err := NewLogger(cfg); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewLogger() = %v, want ErrInvalidArgument", err)
	}
}

// TestLoggingPanicHandler verifies panics are logged at error level
func TestLoggingPanicHandler(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	handler := &LoggingPanicHandler{Logger: NewZapLogger(zap.New(obsCore))}

	handler.HandlePanic("pool-a", 3, "kaboom", []byte("stack"))

	entries := logs.FilterMessage("job panicked").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["pool"] != "pool-a" || fields["panic"] != "kaboom" {
		t.Errorf("fields = %v", fields)
	}
}

func TestNoOpLogger(t *testing.T) {
	var logger Logger = NewNoOpLogger()
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")
}
