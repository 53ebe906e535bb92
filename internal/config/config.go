// Package config loads trainer configuration from HCL files.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete trainer configuration
type Config struct {
	Server Server  `hcl:"server,block"`
	Equity Equity  `hcl:"equity,block"`
	ICM    ICM     `hcl:"icm,block"`
	Tables []Table `hcl:"table,block"`
}

// Server contains query-server settings
type Server struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// Equity contains equity-engine defaults
type Equity struct {
	Iterations      int   `hcl:"iterations,optional"`
	Workers         int   `hcl:"workers,optional"`
	Seed            int64 `hcl:"seed,optional"`
	ExhaustiveLimit int   `hcl:"exhaustive_limit,optional"`
}

// ICM contains ICM-engine defaults
type ICM struct {
	Trials     int `hcl:"trials,optional"`
	StateLimit int `hcl:"state_limit,optional"`
}

// Table names a strategy table file to serve
type Table struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: Server{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Equity: Equity{
			Iterations: 100_000,
		},
		ICM: ICM{
			Trials: 200_000,
		},
	}
}

// Load reads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Equity.Iterations == 0 {
		config.Equity.Iterations = 100_000
	}
	if config.ICM.Trials == 0 {
		config.ICM.Trials = 200_000
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Equity.Iterations < 0 {
		return fmt.Errorf("equity iterations must be positive")
	}
	if c.Equity.Workers < 0 {
		return fmt.Errorf("equity workers must be positive")
	}
	if c.ICM.Trials < 0 {
		return fmt.Errorf("icm trials must be positive")
	}

	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if table.Path == "" {
			return fmt.Errorf("table %s: path is required", table.Name)
		}
		if seen[table.Name] {
			return fmt.Errorf("duplicate table name: %s", table.Name)
		}
		seen[table.Name] = true
	}

	return nil
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
