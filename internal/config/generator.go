package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.yaml.in/yaml/v3"
)

const defaultConfigPath = "configs/generator.yaml"

// GeneratorConfig holds the model parameters used for every generation.
type GeneratorConfig struct {
	Model            ModelConfig `yaml:"model"`
	MaxContentLength int         `yaml:"max_content_length"`
}

type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

func DefaultGeneratorConfig() *GeneratorConfig {
	cfg := &GeneratorConfig{}
	applyDefaults(cfg)
	return cfg
}

// LoadGeneratorConfig reads GENERATOR_CONFIG_PATH, or configs/generator.yaml
// when unset. A missing default file yields the defaults; a missing file named
// explicitly is an error.
func LoadGeneratorConfig() (*GeneratorConfig, error) {
	path := os.Getenv("GENERATOR_CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultGeneratorConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg GeneratorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *GeneratorConfig) {
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 1024
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = 0.7
	}
}

func (c *GeneratorConfig) Validate() error {
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("negative max_tokens: %d", c.Model.MaxTokens)
	}
	if c.Model.Temperature < 0.0 || c.Model.Temperature > 1.0 {
		return fmt.Errorf("invalid temperature %f: must be within [0.0, 1.0]", c.Model.Temperature)
	}
	if c.MaxContentLength < 0 {
		return fmt.Errorf("negative max_content_length: %d", c.MaxContentLength)
	}
	return nil
}
