package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the oscprob configuration file
// (~/.config/oscprob/config.yaml). Numeric fields are pointers so "not set"
// is distinguishable from zero.
type Config struct {
	// Oscillation parameter defaults
	Theta12 *float64 `yaml:"theta12"`
	Theta13 *float64 `yaml:"theta13"`
	Theta23 *float64 `yaml:"theta23"`
	DeltaCP *float64 `yaml:"delta_cp"`
	Dm21Sq  *float64 `yaml:"dm21_sq"`
	Dm32Sq  *float64 `yaml:"dm32_sq"`

	// Propagation
	Backend            string   `yaml:"backend"`
	DensityFile        string   `yaml:"density_file"`
	ProductionHeightKm *float64 `yaml:"production_height_km"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "oscprob", "config.yaml")
}

// applyComputeConfig applies config file defaults to compute command
// variables when the corresponding CLI flag was not explicitly set.
func applyComputeConfig(c *cli.Command, cfg Config) {
	if cfg.Theta12 != nil && !c.IsSet("theta12") {
		theta12 = *cfg.Theta12
	}
	if cfg.Theta13 != nil && !c.IsSet("theta13") {
		theta13 = *cfg.Theta13
	}
	if cfg.Theta23 != nil && !c.IsSet("theta23") {
		theta23 = *cfg.Theta23
	}
	if cfg.DeltaCP != nil && !c.IsSet("delta-cp") {
		deltaCP = *cfg.DeltaCP
	}
	if cfg.Dm21Sq != nil && !c.IsSet("dm21sq") {
		dm21Sq = *cfg.Dm21Sq
	}
	if cfg.Dm32Sq != nil && !c.IsSet("dm32sq") {
		dm32Sq = *cfg.Dm32Sq
	}
	if cfg.Backend != "" && !c.IsSet("backend") {
		backendName = cfg.Backend
	}
	if cfg.DensityFile != "" && !c.IsSet("density-file") {
		densityFile = cfg.DensityFile
	}
	if cfg.ProductionHeightKm != nil && !c.IsSet("height") {
		heightKm = *cfg.ProductionHeightKm
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
