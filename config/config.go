package config

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Hub struct {
		CertificateURL string `yaml:"certificateUrl"`
		WebsocketURL   string `yaml:"websocketUrl"`
	} `yaml:"hub"`

	RateLimit struct {
		MaxPerDay     int `yaml:"maxPerDay"`
		CooldownHours int `yaml:"cooldownHours"`
	} `yaml:"rateLimit"`
}

// LoadConfig reads the configuration file and fills in rate-limit defaults
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if cfg.RateLimit.MaxPerDay <= 0 {
		cfg.RateLimit.MaxPerDay = 5
	}
	if cfg.RateLimit.CooldownHours <= 0 {
		cfg.RateLimit.CooldownHours = 24
	}

	return &cfg, nil
}
