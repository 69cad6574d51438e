// Package config loads and validates the service configuration from a JSON or
// YAML file with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/infra/mqtt"
)

type Config struct {
	Inputs  InputsConfig   `json:"inputs"`
	Engine  EngineConfig   `json:"engine"`
	Tariff  TariffConfig   `json:"tariff"`
	Metrics metrics.Config `json:"metrics"`
	MQTT    MQTTConfig     `json:"mqtt"`
	Export  ExportConfig   `json:"export"`
	Logging LoggingConfig  `json:"logging"`
}

// MQTTConfig wraps the broker connection settings with service-level switches.
// Publishing is off unless explicitly enabled.
type MQTTConfig struct {
	Enabled           bool        `json:"enabled"`
	AckTimeoutSeconds int         `json:"ack_timeout_seconds"`
	Client            mqtt.Config `json:"client"`
}

func (c *MQTTConfig) SetDefaults() {
	if c.AckTimeoutSeconds <= 0 {
		c.AckTimeoutSeconds = 5
	}
}

// ExportConfig controls where and how results are written.
type ExportConfig struct {
	Dir     string   `json:"dir"`
	Formats []string `json:"formats"`
}

func (c *ExportConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"json"}
	}
}

func (c ExportConfig) Validate() error {
	for _, f := range c.Formats {
		if f != "json" && f != "csv" {
			return fmt.Errorf("unknown export format %s", f)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Engine.SetDefaults()
	cfg.Tariff.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Export.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Inputs.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Tariff.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Export.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
