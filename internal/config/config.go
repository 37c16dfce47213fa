package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all bot configuration
type Config struct {
	Server    string `yaml:"server"`
	Port      int    `yaml:"port"`
	UseTLS    bool   `yaml:"use_tls"`
	Nick      string `yaml:"nick"`
	NickPass  string `yaml:"nick_pass"`
	Alternate string `yaml:"alternate"`
	Username  string `yaml:"username"`
	IRCName   string `yaml:"irc_name"`

	Channels []string `yaml:"channels"`
	Prefix   string   `yaml:"prefix"`

	// Secret seeds the credential derivation. Empty disables all
	// moderation commands.
	Secret string   `yaml:"secret"`
	Admins []string `yaml:"admins"`

	// ServerList overrides mode-letter server detection when set.
	ServerList []string `yaml:"server_list"`
	ServerMode string   `yaml:"server_mode"`

	LegacyPasswords bool     `yaml:"legacy_passwords"`
	NewDomain       string   `yaml:"new_domain"`
	LegacyDomains   []string `yaml:"legacy_domains"`

	Cooldown int    `yaml:"cooldown"`
	Warnings int    `yaml:"warnings"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`

	admins map[string]bool
}

// Load reads, parses and validates a YAML configuration file. Any error
// here is fatal: the caller reports it and exits non-zero.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Defaults that differ from zero values are set before parsing so
	// absent keys keep them.
	cfg := Config{
		UseTLS:          true,
		LegacyPasswords: true,
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name string
		ok   bool
	}{
		{"server", c.Server != ""},
		{"port", c.Port > 0},
		{"nick", c.Nick != ""},
		{"channels", len(c.Channels) > 0},
		{"admins", len(c.Admins) > 0},
	}
	for _, r := range required {
		if !r.ok {
			return fmt.Errorf("required config value %q missing or invalid", r.name)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Prefix == "" {
		c.Prefix = c.Nick + ": "
	}
	if c.Username == "" {
		c.Username = c.Nick
	}
	if c.IRCName == "" {
		c.IRCName = c.Nick
	}
	if c.ServerMode == "" {
		c.ServerMode = "v"
	}
	if c.Cooldown == 0 {
		c.Cooldown = 15
	}
	if c.Warnings == 0 {
		c.Warnings = 2
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	c.admins = make(map[string]bool, len(c.Admins))
	for _, admin := range c.Admins {
		c.admins[strings.ToLower(strings.TrimSpace(admin))] = true
	}
}

// IsAdminAccount reports whether a host's account segment (the part
// after the last "/") names a configured admin.
func (c *Config) IsAdminAccount(host string) bool {
	parts := strings.Split(host, "/")
	return c.admins[strings.ToLower(parts[len(parts)-1])]
}

// ModerationEnabled reports whether a shared secret is configured.
func (c *Config) ModerationEnabled() bool {
	return c.Secret != ""
}
