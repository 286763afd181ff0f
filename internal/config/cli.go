package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CLIConfig holds compctl settings
type CLIConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	TokenFile      string        `mapstructure:"token_file"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Sync           SyncConfig    `mapstructure:"sync"`
}

// SyncConfig controls the menu sync loop
type SyncConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Pause   time.Duration `mapstructure:"pause"`
}

// StateDir is where compctl keeps its config and token file
func StateDir() string {
	if dir := os.Getenv("COMPWATCH_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".compwatch"
	}
	return filepath.Join(home, ".compwatch")
}

// LoadCLI reads config.yaml from configFile or the state dir, then
// COMPWATCH_* environment variables. A missing file is not an error.
func LoadCLI(configFile string) (*CLIConfig, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(StateDir())
	}

	v.SetEnvPrefix("COMPWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setCLIDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateCLI(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setCLIDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("token_file", filepath.Join(StateDir(), "state.json"))
	v.SetDefault("request_timeout", "2m")
	v.SetDefault("sync.timeout", "90s")
	v.SetDefault("sync.pause", "1s")
}

func validateCLI(cfg *CLIConfig) error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) url, got %q", cfg.APIURL)
	}
	if cfg.TokenFile == "" {
		return errors.New("token_file is required")
	}
	if cfg.Sync.Timeout <= 0 {
		return errors.New("sync.timeout must be positive")
	}
	if cfg.Sync.Pause < 0 {
		return errors.New("sync.pause cannot be negative")
	}
	return nil
}
