package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"bloomstock/internal/config"
)

// LoadConfig reads a yaml config file. Environment-based loading lives in
// config.Load; deployments that ship a file use this instead.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
