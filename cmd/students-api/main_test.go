package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
)

func TestOpenStorage(t *testing.T) {
	store, err := openStorage(config.Storage{
		Driver:      config.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "students.db"),
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("openStorage(sqlite) error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if _, err := openStorage(config.Storage{Driver: "postgres"}); err == nil {
		t.Error("openStorage(postgres) error = nil")
	}
}

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()

	if setupLogger("prod").Enabled(ctx, slog.LevelDebug) {
		t.Error("prod logger has DEBUG enabled")
	}
	if !setupLogger("dev").Enabled(ctx, slog.LevelDebug) {
		t.Error("dev logger has DEBUG disabled")
	}
}
