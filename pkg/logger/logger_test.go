package logger

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-init must be safe.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerFields(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "test message",
		String("mode", "1v1"),
		Int("position", 3),
		Float64("tolerance", 200),
		Duration("wait", 12*time.Second),
		Bool("applied", true),
		Any("payload", map[string]int{"kills": 10}),
	)
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("matchmaking")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "test message")

	if named.Named("scan") == nil {
		t.Fatal("nested named logger is nil")
	}
}

func TestLoggerLevels(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("failed to set debug level: %v", err)
	}
	Get().Debug(context.Background(), "visible at debug")

	if err := SetLevelString("bogus"); err == nil {
		t.Fatal("expected error for invalid level")
	}

	SetLevel(slog.LevelInfo)
}
