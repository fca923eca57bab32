// Package config loads the server configuration from a .env file, an
// optional YAML file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://api.github.com/"
	DefaultTimeout = 30 * time.Second
	defaultEnvFile = ".env"
)

// Config holds the credentials and connection settings for the gateway.
type Config struct {
	Token    string        `yaml:"token"`
	Username string        `yaml:"username"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Load builds a Config. envFile is loaded with godotenv when set (it must
// exist); otherwise a .env in the working directory is loaded if present.
// Variables already in the environment are never overwritten by the file.
// configPath, when set, names a YAML file. Environment variables override
// the YAML values.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", defaultEnvFile, err)
	}

	cfg := &Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("GITHUB_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("GITHUB_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("GITHUB_TOKEN is not set; create a Personal Access Token at https://github.com/settings/tokens/new with the 'repo' and 'read:user' scopes")
	}
	if c.Username == "" {
		return errors.New("GITHUB_USERNAME is not set")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid GitHub API URL %q", c.BaseURL)
	}
	return nil
}
