package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{"GITHUB_TOKEN", "GITHUB_USERNAME", "GITHUB_API_URL", "GITHUB_TIMEOUT"}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	testCases := []struct {
		name           string
		env            map[string]string
		yaml           string
		dotenv         string
		expectedConfig *Config
		expectedErrMsg string
	}{
		{
			name: "environment only uses defaults",
			env:  map[string]string{"GITHUB_TOKEN": "ghp_env", "GITHUB_USERNAME": "alice"},
			expectedConfig: &Config{
				Token: "ghp_env", Username: "alice", BaseURL: DefaultBaseURL, Timeout: DefaultTimeout,
			},
		},
		{
			name: "yaml file supplies every field",
			yaml: "token: ghp_yaml\nusername: bob\nbase_url: https://ghe.example.com/api/v3/\ntimeout: 10s\n",
			expectedConfig: &Config{
				Token: "ghp_yaml", Username: "bob", BaseURL: "https://ghe.example.com/api/v3/", Timeout: 10 * time.Second,
			},
		},
		{
			name: "environment overrides yaml",
			env:  map[string]string{"GITHUB_USERNAME": "carol", "GITHUB_TIMEOUT": "5s"},
			yaml: "token: ghp_yaml\nusername: bob\n",
			expectedConfig: &Config{
				Token: "ghp_yaml", Username: "carol", BaseURL: DefaultBaseURL, Timeout: 5 * time.Second,
			},
		},
		{
			name:   "env file fills unset variables only",
			env:    map[string]string{"GITHUB_USERNAME": "alice"},
			dotenv: "GITHUB_TOKEN=ghp_dotenv\nGITHUB_USERNAME=mallory\n",
			expectedConfig: &Config{
				Token: "ghp_dotenv", Username: "alice", BaseURL: DefaultBaseURL, Timeout: DefaultTimeout,
			},
		},
		{
			name:           "missing token is fatal",
			env:            map[string]string{"GITHUB_USERNAME": "alice"},
			expectedErrMsg: "GITHUB_TOKEN is not set",
		},
		{
			name:           "missing username is fatal",
			env:            map[string]string{"GITHUB_TOKEN": "ghp_env"},
			expectedErrMsg: "GITHUB_USERNAME is not set",
		},
		{
			name:           "malformed timeout",
			env:            map[string]string{"GITHUB_TOKEN": "ghp_env", "GITHUB_USERNAME": "alice", "GITHUB_TIMEOUT": "soon"},
			expectedErrMsg: "invalid GITHUB_TIMEOUT",
		},
		{
			name:           "non-positive timeout",
			yaml:           "token: t\nusername: u\ntimeout: 0s\n",
			expectedErrMsg: "timeout must be positive",
		},
		{
			name:           "relative base url",
			env:            map[string]string{"GITHUB_TOKEN": "ghp_env", "GITHUB_USERNAME": "alice", "GITHUB_API_URL": "api.github.com"},
			expectedErrMsg: "invalid GitHub API URL",
		},
		{
			name:           "malformed yaml",
			yaml:           "token: [unterminated\n",
			expectedErrMsg: "failed to parse config file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			var configPath, envFile string
			if tc.yaml != "" {
				configPath = writeFile(t, "config.yaml", tc.yaml)
			}
			if tc.dotenv != "" {
				envFile = writeFile(t, "test.env", tc.dotenv)
			}

			cfg, err := Load(configPath, envFile)

			if tc.expectedErrMsg != "" {
				assert.ErrorContains(t, err, tc.expectedErrMsg)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedConfig, cfg)
		})
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_env")
	t.Setenv("GITHUB_USERNAME", "alice")
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := Load(missing, "")
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load("", missing)
	assert.ErrorContains(t, err, "failed to load env file")
}
