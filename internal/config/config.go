package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL                     string `yaml:"ttl"`
		MCQLimit                int    `yaml:"mcq_limit"`
		AssertionReasoningLimit int    `yaml:"assertion_reasoning_limit"`
		CaseStudyLimit          int    `yaml:"case_study_limit"`
	} `yaml:"questions"`
	Quiz struct {
		LoadTimeout string `yaml:"load_timeout"`
	} `yaml:"quiz"`
	Auth struct {
		ProviderURL string `yaml:"provider_url"`
		APIKey      string `yaml:"api_key"`
		Policy      string `yaml:"policy"` // "signed_in" (default) or "purchases"
	} `yaml:"auth"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
