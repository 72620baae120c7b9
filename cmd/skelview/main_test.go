package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/skelbridge/internal/config"
	"github.com/Faultbox/skelbridge/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Loader.AssetRoot = filepath.Join("..", "..", "assets", "hero")
	cfg.Runtime.Skeleton = "hero.skel.yaml"
	cfg.Runtime.Atlas = "hero.atlas.yaml"
	cfg.Runtime.Animation = "walk"
	cfg.Runtime.TickRate = time.Millisecond
	cfg.Runtime.Frames = 3
	cfg.Logging.LogFile = filepath.Join(t.TempDir(), "skelview.log")
	cfg.Telemetry.Enabled = false
	t.Cleanup(logger.InitNop)
	return cfg
}

func TestRunFinishes(t *testing.T) {
	cfg := testConfig(t)
	if code := run(context.Background(), cfg); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
}

func TestRunFailureClosesApp(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	atlas, err := os.ReadFile(filepath.Join(cfg.Loader.AssetRoot, "hero.atlas.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hero.atlas.yaml"), atlas, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.skel.yaml"), []byte("bones: ["), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Loader.AssetRoot = dir
	cfg.Loader.MaxParseAttempts = 1
	cfg.Runtime.Skeleton = "broken.skel.yaml"
	cfg.Runtime.Frames = 1000

	if code := run(context.Background(), cfg); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}

	data, err := os.ReadFile(cfg.Logging.LogFile)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "closing app") {
		t.Errorf("log has no close entry after a failed run:\n%s", data)
	}
}
