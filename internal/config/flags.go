package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagAssets    = flag.String("assets", "", "Asset root directory")
	flagSkeleton  = flag.String("skeleton", "", "Skeleton path relative to the asset root")
	flagAtlas     = flag.String("atlas", "", "Atlas path relative to the asset root")
	flagAnimation = flag.String("animation", "", "Animation to play on track 0")
	flagFrames    = flag.Int("frames", -1, "Ticks to run (0 runs until interrupted)")
	flagWorkers   = flag.Int("workers", -1, "Render workers (0 means GOMAXPROCS)")
	flagTrace     = flag.Bool("trace", false, "Export stage spans over OTLP")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAssets != "" {
		cfg.Loader.AssetRoot = *flagAssets
	}
	if *flagSkeleton != "" {
		cfg.Runtime.Skeleton = *flagSkeleton
	}
	if *flagAtlas != "" {
		cfg.Runtime.Atlas = *flagAtlas
	}
	if *flagAnimation != "" {
		cfg.Runtime.Animation = *flagAnimation
	}
	if *flagFrames >= 0 {
		cfg.Runtime.Frames = *flagFrames
	}
	if *flagWorkers >= 0 {
		cfg.Render.Workers = *flagWorkers
	}
	if *flagTrace {
		cfg.Telemetry.Enabled = true
	}
}
