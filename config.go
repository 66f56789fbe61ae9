package cloudmesh

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FromConfigFile reads a YAML configuration file into a Config. A typical
// file holds one provider section plus optional client settings:
//
//	aws:
//	  region: us-east-1
//	  profile: billing
//	keyed_reservation_cache: true
func FromConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
