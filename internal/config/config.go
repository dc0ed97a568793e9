package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"docktor/internal/diagnose"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultProvider        = "gemini"
	DefaultGeminiModel     = "gemini-2.0-flash"
	DefaultOpenRouterModel = "openai/gpt-4o-mini"
	DefaultCommandTimeout  = 60
	DefaultOutputDir       = "."
)

// Config is the file-backed run configuration. Zero values mean "use the
// default"; ApplyDefaults fills them in before validation.
type Config struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Kubeconfig string `yaml:"kubeconfig"`
	Context    string `yaml:"context"`
	Namespace  string `yaml:"namespace"`

	MaxAnalyses           int    `yaml:"max_analyses"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
	OutputDir             string `yaml:"output_dir"`
	Verbose               bool   `yaml:"verbose"`
}

// Load reads, parses, defaults, and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a single-document YAML config, rejecting unknown fields.
func Parse(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if err == io.EOF {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields. The model default follows the provider,
// so it runs after the provider default.
func ApplyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Model == "" {
		switch cfg.Provider {
		case "openrouter":
			cfg.Model = DefaultOpenRouterModel
		default:
			cfg.Model = DefaultGeminiModel
		}
	}
	if cfg.MaxAnalyses == 0 {
		cfg.MaxAnalyses = diagnose.MaxAnalyses
	}
	if cfg.CommandTimeoutSeconds == 0 {
		cfg.CommandTimeoutSeconds = DefaultCommandTimeout
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
}
