// Package config wires the viper-backed settings store: library location,
// default export target, custom marketplace sources, GitHub token, and sort
// preference. Settings come from $HOME/.skillhub/config.yaml, the working
// directory, and SKILLHUB_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultTargetFormat is the export target used when none is configured.
const DefaultTargetFormat = "claude"

// Config is a snapshot of the settings store.
type Config struct {
	LibraryPath   string   `mapstructure:"library_path"`
	DefaultTarget string   `mapstructure:"default_target"`
	CustomSources []string `mapstructure:"custom_sources"`
	GitHubToken   string   `mapstructure:"github_token"`
	SortBy        string   `mapstructure:"sort_by"`
	LogLevel      string   `mapstructure:"log_level"`
	LogFormat     string   `mapstructure:"log_format"`
}

// Init registers defaults, environment binding, and config file lookup.
// Missing config files are not an error.
func Init() {
	viper.SetEnvPrefix("SKILLHUB")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillhub")
	viper.AddConfigPath(".")

	viper.SetDefault("library_path", filepath.Join("~", ".skillhub", "library"))
	viper.SetDefault("default_target", DefaultTargetFormat)
	viper.SetDefault("sort_by", "name")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")

	_ = viper.ReadInConfig()
}

// Load decodes the current settings into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build config decoder")
	}
	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	return cfg, nil
}

// ResolvedLibraryPath expands a leading ~ in the configured library path.
func (c *Config) ResolvedLibraryPath() (string, error) {
	return ExpandPath(c.LibraryPath)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	if path == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, path[2:]), nil
}

// SourceList persists custom marketplace source URLs through viper. It
// satisfies the marketplace SourceStore interface.
type SourceList struct{}

// URLs returns the persisted custom source URLs in order.
func (SourceList) URLs() []string {
	return viper.GetStringSlice("custom_sources")
}

// SetURLs replaces the persisted custom source URLs and writes the config
// file, creating it when none exists yet.
func (SourceList) SetURLs(urls []string) error {
	viper.Set("custom_sources", urls)

	err := viper.WriteConfig()
	if err == nil {
		return nil
	}

	// No config file existed yet; create one under ~/.skillhub.
	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return errors.Wrap(homeErr, "failed to get user home directory")
	}
	if mkErr := os.MkdirAll(filepath.Join(homeDir, ".skillhub"), 0o755); mkErr != nil {
		return errors.Wrap(mkErr, "failed to create config directory")
	}
	if safeErr := viper.SafeWriteConfig(); safeErr != nil {
		return errors.Wrap(err, "failed to persist custom sources")
	}
	return nil
}
