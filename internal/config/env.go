package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. SKELBRIDGE_RENDER_WORKERS.
const EnvPrefix = "SKELBRIDGE_"

// applyEnv overlays environment variables onto cfg. Unset variables leave
// the existing values in place.
func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
