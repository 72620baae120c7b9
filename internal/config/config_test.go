package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Animation.DefaultMix != 0.2 {
		t.Errorf("expected default mix 0.2, got %v", cfg.Animation.DefaultMix)
	}
	if cfg.Animation.TimeScale != 1 {
		t.Errorf("expected time scale 1, got %v", cfg.Animation.TimeScale)
	}
	if cfg.Loader.MaxParseAttempts != 3 {
		t.Errorf("expected 3 parse attempts, got %d", cfg.Loader.MaxParseAttempts)
	}
	if cfg.Render.SlotDepthStep <= 0 {
		t.Errorf("expected positive slot depth step, got %v", cfg.Render.SlotDepthStep)
	}
	if cfg.Runtime.TickRate != time.Second/60 {
		t.Errorf("expected 60Hz tick, got %v", cfg.Runtime.TickRate)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Telemetry.Enabled {
		t.Error("expected telemetry disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
animation:
  default_mix: 0.5
  time_scale: 2

loader:
  asset_root: "/srv/assets"
  max_parse_attempts: 5

render:
  workers: 4

runtime:
  tick_rate: 10ms
  frames: 30
  animation: wave

logging:
  level: "debug"
  log_file: "skelbridge.log"

telemetry:
  enabled: true
  endpoint: "http://collector:4318"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Animation.DefaultMix != 0.5 || cfg.Animation.TimeScale != 2 {
		t.Errorf("unexpected animation config %+v", cfg.Animation)
	}
	if cfg.Loader.AssetRoot != "/srv/assets" || cfg.Loader.MaxParseAttempts != 5 {
		t.Errorf("unexpected loader config %+v", cfg.Loader)
	}
	if cfg.Render.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Render.Workers)
	}
	if cfg.Runtime.TickRate != 10*time.Millisecond || cfg.Runtime.Frames != 30 {
		t.Errorf("unexpected runtime config %+v", cfg.Runtime)
	}
	if cfg.Runtime.Animation != "wave" {
		t.Errorf("expected animation wave, got %s", cfg.Runtime.Animation)
	}
	// Untouched keys keep their defaults.
	if cfg.Runtime.Skeleton != "hero/hero.skel.yaml" {
		t.Errorf("expected default skeleton, got %s", cfg.Runtime.Skeleton)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "skelbridge.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "http://collector:4318" {
		t.Errorf("unexpected telemetry config %+v", cfg.Telemetry)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
render:
  workers: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SKELBRIDGE_RENDER_WORKERS", "8")
	t.Setenv("SKELBRIDGE_ANIMATION_DEFAULT_MIX", "0.35")
	t.Setenv("SKELBRIDGE_LOGGING_LEVEL", "warn")
	t.Setenv("SKELBRIDGE_RUNTIME_TICK_RATE", "5ms")
	t.Setenv("SKELBRIDGE_TELEMETRY_ENABLED", "true")
	t.Setenv("SKELBRIDGE_LOADER_PACKS", "base.skpk,extra.skpk")

	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}

	if cfg.Render.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Render.Workers)
	}
	if cfg.Animation.DefaultMix != 0.35 {
		t.Errorf("DefaultMix = %v, want 0.35", cfg.Animation.DefaultMix)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %s, want warn", cfg.Logging.Level)
	}
	if cfg.Runtime.TickRate != 5*time.Millisecond {
		t.Errorf("TickRate = %v, want 5ms", cfg.Runtime.TickRate)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("expected telemetry enabled from env")
	}
	if len(cfg.Loader.Packs) != 2 || cfg.Loader.Packs[1] != "extra.skpk" {
		t.Errorf("Packs = %v, want [base.skpk extra.skpk]", cfg.Loader.Packs)
	}
	if cfg.Loader.MaxParseAttempts != 3 {
		t.Errorf("unset variable changed MaxParseAttempts to %d", cfg.Loader.MaxParseAttempts)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("SKELBRIDGE_RENDER_WORKERS", "many")
	if err := applyEnv(Default()); err == nil {
		t.Error("expected error for non-numeric workers")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero parse attempts", func(c *Config) { c.Loader.MaxParseAttempts = 0 }},
		{"negative workers", func(c *Config) { c.Render.Workers = -1 }},
		{"negative mix", func(c *Config) { c.Animation.DefaultMix = -0.1 }},
		{"zero tick", func(c *Config) { c.Runtime.TickRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "skelbridge.yaml"), []byte("render:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find skelbridge.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "frames zero means unbounded",
			setup: func() { *flagFrames = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Runtime.Frames != 0 {
					t.Errorf("expected 0 frames, got %d", cfg.Runtime.Frames)
				}
			},
			teardown: func() { *flagFrames = -1 },
		},
		{
			name:  "unset numeric flags keep defaults",
			setup: func() {},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Runtime.Frames != 120 || cfg.Render.Workers != 0 {
					t.Errorf("defaults overridden: frames=%d workers=%d", cfg.Runtime.Frames, cfg.Render.Workers)
				}
			},
			teardown: func() {},
		},
		{
			name: "asset flags",
			setup: func() {
				*flagAssets = "/data"
				*flagSkeleton = "boss/boss.skb"
				*flagAnimation = "roar"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Loader.AssetRoot != "/data" || cfg.Runtime.Skeleton != "boss/boss.skb" || cfg.Runtime.Animation != "roar" {
					t.Errorf("asset flags not applied: %+v %+v", cfg.Loader, cfg.Runtime)
				}
			},
			teardown: func() {
				*flagAssets = ""
				*flagSkeleton = ""
				*flagAnimation = ""
			},
		},
		{
			name:  "trace flag",
			setup: func() { *flagTrace = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Telemetry.Enabled {
					t.Error("expected telemetry enabled with trace flag")
				}
			},
			teardown: func() { *flagTrace = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
render:
  workers: 2
loader:
  max_parse_attempts: 4
animation:
  default_mix: 0.1
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("SKELBRIDGE_RENDER_WORKERS", "6")
	t.Setenv("SKELBRIDGE_LOADER_MAX_PARSE_ATTEMPTS", "7")
	*flagConfig = configPath
	*flagWorkers = 12
	defer func() {
		*flagConfig = ""
		*flagWorkers = -1
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Render.Workers != 12 {
		t.Errorf("expected workers 12 from flag, got %d", cfg.Render.Workers)
	}
	if cfg.Loader.MaxParseAttempts != 7 {
		t.Errorf("expected 7 attempts from env, got %d", cfg.Loader.MaxParseAttempts)
	}
	if cfg.Animation.DefaultMix != 0.1 {
		t.Errorf("expected default mix 0.1 from file, got %v", cfg.Animation.DefaultMix)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Render.Workers = 3
	cfg.Runtime.TickRate = 25 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Render.Workers != 3 {
		t.Errorf("Workers = %d, want 3", loaded.Render.Workers)
	}
	if loaded.Runtime.TickRate != 25*time.Millisecond {
		t.Errorf("TickRate = %v, want 25ms", loaded.Runtime.TickRate)
	}
}
