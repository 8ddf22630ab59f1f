// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVariable names the environment variable that points at the
// config file for [Load].
const EnvVariable = "VAULTKEYS_CONFIG"

// Config is the full vaultkeys configuration.
type Config struct {
	// Vault configures the Bitwarden CLI.
	Vault VaultConfig `yaml:"vault"`

	// Agent configures the OpenSSH agent tools.
	Agent AgentConfig `yaml:"agent"`

	// Filter is a default name filter applied when the --filter flag
	// is not given. Empty means no filtering.
	Filter string `yaml:"filter"`
}

// VaultConfig configures the Bitwarden CLI.
type VaultConfig struct {
	// Binary is the bw executable. Default: "bw" from PATH.
	Binary string `yaml:"binary"`

	// Timeout bounds each bw invocation. The interactive password
	// prompt is not subject to it. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
}

// AgentConfig configures the OpenSSH agent tools.
type AgentConfig struct {
	// AddBinary is the ssh-add executable. Default: "ssh-add".
	AddBinary string `yaml:"add_binary"`

	// LaunchBinary is the ssh-agent executable. Default: "ssh-agent".
	LaunchBinary string `yaml:"launch_binary"`

	// Timeout bounds each agent invocation. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no config file is
// given. Everything resolves from PATH with a 30 second per-command
// deadline.
func Default() *Config {
	return &Config{
		Vault: VaultConfig{
			Binary:  "bw",
			Timeout: 30 * time.Second,
		},
		Agent: AgentConfig{
			AddBinary:    "ssh-add",
			LaunchBinary: "ssh-agent",
			Timeout:      30 * time.Second,
		},
	}
}

// Load loads configuration from the file named by VAULTKEYS_CONFIG,
// or returns [Default] when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merged over
// the defaults. Environment variables never override file values; the
// only expansion performed is ${VAR} and ${VAR:-default} in the
// binary path fields, for portability of shared config files.
func LoadFile(path string) (*Config, error) {
	configuration := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	configuration.expandVariables()

	if err := configuration.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return configuration, nil
}

func (c *Config) validate() error {
	if c.Vault.Binary == "" {
		return fmt.Errorf("vault.binary must not be empty")
	}
	if c.Agent.AddBinary == "" || c.Agent.LaunchBinary == "" {
		return fmt.Errorf("agent binaries must not be empty")
	}
	if c.Vault.Timeout < 0 || c.Agent.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// variablePattern matches ${VAR} and ${VAR:-default}.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

func (c *Config) expandVariables() {
	c.Vault.Binary = expand(c.Vault.Binary)
	c.Agent.AddBinary = expand(c.Agent.AddBinary)
	c.Agent.LaunchBinary = expand(c.Agent.LaunchBinary)
}

func expand(value string) string {
	return variablePattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := variablePattern.FindStringSubmatch(match)
		if resolved := os.Getenv(groups[1]); resolved != "" {
			return resolved
		}
		return groups[2]
	})
}
