package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// LoadWithOverrides loads configuration for a target path and applies
// overrides on top of every other source. Overrides use dotted keys or the
// nested shape of the TOML file:
//
//	overrides := map[string]any{
//	  "output.format": "json",
//	  "rules": map[string]any{"exclude": []any{"style/*"}},
//	}
//
// When configPath is non-empty it is loaded instead of discovering one.
func LoadWithOverrides(targetPath, configPath string, overrides map[string]any) (*Config, error) {
	if configPath == "" {
		configPath = Discover(targetPath)
	}
	return loadWithConfigPath(configPath, overrides)
}

func loadOverrides(k *koanf.Koanf, overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	return k.Load(confmap.Provider(overrides, "."), nil)
}
