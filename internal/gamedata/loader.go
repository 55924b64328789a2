package gamedata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a game config from a YAML file. Any failure is
// fatal to startup: a missing or invalid ruleset must not boot the engine.
func Load(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game config %s: %w", path, err)
	}

	var cfg GameConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing game config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
