// Package config loads the application configuration from a yaml file, with
// sane defaults when the file or individual keys are missing. Secrets
// (GEMINI_API_KEY, DATABASE_URL) stay in the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LLMConfig struct {
	ExtractionModel string `yaml:"extraction_model"`
	ChatModel       string `yaml:"chat_model"`
	ThinkingBudget  int32  `yaml:"thinking_budget"`
	Timeout         string `yaml:"timeout"`
	OfficeName      string `yaml:"office_name"`
}

type StorageConfig struct {
	RegistryPath string `yaml:"registry_path"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
}

// Defaults mirror the models the dashboard was built against.
func defaults() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		LLM: LLMConfig{
			ExtractionModel: "gemini-3-flash-preview",
			ChatModel:       "gemini-3-pro-preview",
			ThinkingBudget:  16000,
			Timeout:         "3m",
			OfficeName:      "Divino Consultoria Financeira",
		},
		Storage: StorageConfig{RegistryPath: "data/clients.db"},
	}
}

// Load reads the yaml file at path on top of the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// TimeoutDuration parses the configured extraction timeout; zero means no
// timeout beyond the caller's context.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout duration %q: %w", c.LLM.Timeout, err)
	}
	return d, nil
}
