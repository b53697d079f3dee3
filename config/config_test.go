package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Swind/go-task-pool/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskpool.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}
	return path
}

// TestLoad_Defaults verifies defaults when no file is given
func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if s.Pool.Size != runtime.NumCPU() {
		t.Errorf("Pool.Size = %d, want %d", s.Pool.Size, runtime.NumCPU())
	}
	if s.Pool.Name != "default" {
		t.Errorf("Pool.Name = %q, want default", s.Pool.Name)
	}
	if s.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", s.Log.Level)
	}
}

// TestLoad_FileAndEnv verifies YAML values and environment overrides
// Given: A YAML file setting pool name, size and log settings
// When: TASKPOOL_POOL_SIZE is set in the environment
// Then: File values are used and the environment wins for size
func TestLoad_FileAndEnv(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
pool:
  name: ingest
  size: 3
log:
  level: debug
  max_size: 5
`)
	t.Setenv("TASKPOOL_POOL_SIZE", "6")

	// Act
	s, err := Load(path)

	// Assert
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if s.Pool.Name != "ingest" {
		t.Errorf("Pool.Name = %q, want ingest", s.Pool.Name)
	}
	if s.Pool.Size != 6 {
		t.Errorf("Pool.Size = %d, want 6 (env override)", s.Pool.Size)
	}
	if s.Log.Level != "debug" || s.Log.MaxSize != 5 {
		t.Errorf("Log = %+v, want level debug and max_size 5", s.Log)
	}
}

// TestLoad_InvalidSize verifies non-positive sizes are rejected
func TestLoad_InvalidSize(t *testing.T) {
	path := writeConfig(t, "pool:\n  size: 0\n")

	if _, err := Load(path); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Load() = %v, want ErrInvalidArgument", err)
	}
}

// TestLoad_MissingFile verifies read errors are returned
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file = nil, want error")
	}
}

// TestSettings_NewPool verifies settings build a working pool
func TestSettings_NewPool(t *testing.T) {
	path := writeConfig(t, `
pool:
  name: built
  size: 2
log:
  level: warn
  file: `+filepath.Join(t.TempDir(), "pool.log")+`
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	pool, logger, err := s.NewPool(nil)
	if err != nil {
		t.Fatalf("NewPool() = %v", err)
	}
	defer logger.Sync()

	if pool.Name() != "built" || pool.Size() != 2 {
		t.Errorf("pool = (%q, %d), want (built, 2)", pool.Name(), pool.Size())
	}
	if err := pool.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
