package pushdown

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig is the file representation of Config. Absent fields keep their
// defaults, so a config file only needs to spell out the overrides.
type yamlConfig struct {
	PushDownDate             *bool  `yaml:"pushDownDate"`
	PushDownTimestamp        *bool  `yaml:"pushDownTimestamp"`
	PushDownDecimal          *bool  `yaml:"pushDownDecimal"`
	PushDownStartsWith       *bool  `yaml:"pushDownStartsWith"`
	InValueThreshold         *int   `yaml:"inValueThreshold"`
	CaseSensitiveColumnNames *bool  `yaml:"caseSensitiveColumnNames"`
	SessionTimezone          string `yaml:"sessionTimezone"`
}

// ReadConfig loads a Config from a YAML file, starting from DefaultConfig.
func ReadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer f.Close()

	var fileConfig yamlConfig
	if err := yaml.NewDecoder(f).Decode(&fileConfig); err != nil {
		return Config{}, fmt.Errorf("couldn't decode yaml configuration: %w", err)
	}

	config := DefaultConfig()
	if fileConfig.PushDownDate != nil {
		config.PushDownDate = *fileConfig.PushDownDate
	}
	if fileConfig.PushDownTimestamp != nil {
		config.PushDownTimestamp = *fileConfig.PushDownTimestamp
	}
	if fileConfig.PushDownDecimal != nil {
		config.PushDownDecimal = *fileConfig.PushDownDecimal
	}
	if fileConfig.PushDownStartsWith != nil {
		config.PushDownStartsWith = *fileConfig.PushDownStartsWith
	}
	if fileConfig.InValueThreshold != nil {
		if *fileConfig.InValueThreshold < 0 {
			return Config{}, fmt.Errorf("inValueThreshold must be non-negative, got %d", *fileConfig.InValueThreshold)
		}
		config.InValueThreshold = *fileConfig.InValueThreshold
	}
	if fileConfig.CaseSensitiveColumnNames != nil {
		config.CaseSensitiveColumnNames = *fileConfig.CaseSensitiveColumnNames
	}
	if fileConfig.SessionTimezone != "" {
		location, err := time.LoadLocation(fileConfig.SessionTimezone)
		if err != nil {
			return Config{}, fmt.Errorf("couldn't load session timezone '%s': %w", fileConfig.SessionTimezone, err)
		}
		config.SessionTimezone = location
	}
	return config, nil
}
