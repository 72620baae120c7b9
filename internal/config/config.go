// Package config handles skelbridge configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Animation AnimationConfig `yaml:"animation" envPrefix:"ANIMATION_"`
	Loader    LoaderConfig    `yaml:"loader" envPrefix:"LOADER_"`
	Render    RenderConfig    `yaml:"render" envPrefix:"RENDER_"`
	Runtime   RuntimeConfig   `yaml:"runtime" envPrefix:"RUNTIME_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOGGING_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// AnimationConfig holds animation-state defaults.
type AnimationConfig struct {
	DefaultMix float32 `yaml:"default_mix" env:"DEFAULT_MIX"` // Crossfade seconds when no override matches
	TimeScale  float32 `yaml:"time_scale" env:"TIME_SCALE"`
}

// LoaderConfig holds asset loading settings.
type LoaderConfig struct {
	AssetRoot        string   `yaml:"asset_root" env:"ASSET_ROOT"`
	Packs            []string `yaml:"packs" env:"PACKS" envSeparator:","` // Asset packs mounted below the asset root
	MaxParseAttempts int      `yaml:"max_parse_attempts" env:"MAX_PARSE_ATTEMPTS"`
}

// RenderConfig holds mesh pipeline settings.
type RenderConfig struct {
	Workers       int     `yaml:"workers" env:"WORKERS"` // Controllers rendered in parallel; 0 means GOMAXPROCS
	SlotDepthStep float32 `yaml:"slot_depth_step" env:"SLOT_DEPTH_STEP"`
}

// RuntimeConfig holds the tick loop settings of cmd/skelview.
type RuntimeConfig struct {
	TickRate  time.Duration `yaml:"tick_rate" env:"TICK_RATE"`
	Frames    int           `yaml:"frames" env:"FRAMES"` // 0 runs until interrupted
	Skeleton  string        `yaml:"skeleton" env:"SKELETON"`
	Atlas     string        `yaml:"atlas" env:"ATLAS"`
	Animation string        `yaml:"animation" env:"ANIMATION"`
	Loop      bool          `yaml:"loop" env:"LOOP"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"LEVEL"`
	LogFile string `yaml:"log_file" env:"FILE"`
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			DefaultMix: 0.2,
			TimeScale:  1,
		},
		Loader: LoaderConfig{
			AssetRoot:        "assets",
			MaxParseAttempts: 3,
		},
		Render: RenderConfig{
			Workers:       0,
			SlotDepthStep: 1.1920929e-07, // float32 epsilon
		},
		Runtime: RuntimeConfig{
			TickRate:  time.Second / 60,
			Frames:    120,
			Skeleton:  "hero/hero.skel.yaml",
			Atlas:     "hero/hero.atlas.yaml",
			Animation: "walk",
			Loop:      true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "http://localhost:4318",
			ServiceName: "skelbridge",
		},
	}
}
