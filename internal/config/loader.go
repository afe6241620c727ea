package config

import (
	"os"
	"path/filepath"

	"github.com/spare00/sospy/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sospy"

// File represents the structure of the .sospy configuration file.
// All keys are optional; unset keys leave the built-in defaults in place.
type File struct {
	// Top is the default row limit for ranked report sections.
	Top *int `yaml:"top,omitempty"`

	// Unit is the default memory unit: K, M, or G.
	Unit string `yaml:"unit,omitempty"`

	// Batch is the default number of concurrent analyses.
	Batch *int `yaml:"batch,omitempty"`

	// Save records every analysis in the history database.
	Save *bool `yaml:"save,omitempty"`
}

// LoadConfigFile loads defaults from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this error based on whether the path was explicitly specified by
// the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .sospy in the current directory
// 3. Look for .sospy in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply overlays the file's values onto the config.
// Invalid values are rejected with an error rather than silently ignored.
func (cf *File) Apply(cfg *Config) error {
	if cf.Top != nil {
		cfg.Top = *cf.Top
	}
	if cf.Unit != "" {
		unit, err := model.ParseUnit(cf.Unit)
		if err != nil {
			return err
		}
		cfg.Unit = unit
	}
	if cf.Batch != nil {
		cfg.BatchSize = *cf.Batch
	}
	if cf.Save != nil {
		cfg.SaveToDB = *cf.Save
	}
	return nil
}
