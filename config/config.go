package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Global GlobalConfig `yaml:"global"`
	Git    GitConfig    `yaml:"git"`
}

type GlobalConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type GitConfig struct {
	// RepositoryRoot is the single directory all repository access is
	// confined beneath. Set once at startup, immutable afterwards.
	RepositoryRoot string `yaml:"repository_root"`

	TimeoutSeconds     int `yaml:"timeout_seconds"`
	MaxOutputBytes     int `yaml:"max_output_bytes"`
	DefaultLogLimit    int `yaml:"default_log_limit"`
	MaxLogLimit        int `yaml:"max_log_limit"`
	MaxConcurrentCalls int `yaml:"max_concurrent_calls"`
}

func DefaultConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Git: GitConfig{
			RepositoryRoot:     "/repos",
			TimeoutSeconds:     30,
			MaxOutputBytes:     100000,
			DefaultLogLimit:    10,
			MaxLogLimit:        100,
			MaxConcurrentCalls: 4,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		configDir, err := os.UserConfigDir()
		if err == nil {
			path = filepath.Join(configDir, "gitrepo-mcp", "config.yaml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("GITREPO_LOG_LEVEL"); v != "" {
		config.Global.LogLevel = v
	}
	if v := os.Getenv("GITREPO_LOG_FORMAT"); v != "" {
		config.Global.LogFormat = v
	}
	// GIT_REPOS_PATH is the variable the deployment layer sets when it
	// mounts the repository volume.
	if v := os.Getenv("GIT_REPOS_PATH"); v != "" {
		config.Git.RepositoryRoot = v
	}
	if v := os.Getenv("GITREPO_TIMEOUT_SECONDS"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Git.TimeoutSeconds = timeout
		}
	}
	if v := os.Getenv("GITREPO_MAX_CONCURRENT_CALLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Git.MaxConcurrentCalls = n
		}
	}
}

func (c *Config) ExpandPaths() {
	c.Git.RepositoryRoot = os.ExpandEnv(c.Git.RepositoryRoot)
}
