// pattern: Imperative Shell

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "codeprojects"
	configFileName = "config.yaml"

	// EnvPrefix is prepended to every environment override (e.g. CODEPROJECTS_LOG_LEVEL).
	EnvPrefix = "CODEPROJECTS_"

	// DefaultExtensionID is the VS Code Project Manager extension whose
	// globalStorage holds projects.json and projects_cache_git.json.
	DefaultExtensionID = "alefragnani.project-manager"
)

type Config struct {
	Theme              string    `yaml:"theme" env:"THEME"`
	LogLevel           string    `yaml:"log_level" env:"LOG_LEVEL"`
	ProjectNameMatches bool      `yaml:"project_name_matches" env:"PROJECT_NAME_MATCHES"`
	AppNameMatches     bool      `yaml:"app_name_matches" env:"APP_NAME_MATCHES"`
	TriggerKeywords    []string  `yaml:"trigger_keywords" env:"TRIGGER_KEYWORDS"`
	ExtensionID        string    `yaml:"extension_id" env:"EXTENSION_ID"`
	ConfigRoot         string    `yaml:"config_root" env:"CONFIG_ROOT"`
	Watch              bool      `yaml:"watch" env:"WATCH"`
	Web                WebConfig `yaml:"web" envPrefix:"WEB_"`
}

type WebConfig struct {
	Bind string `yaml:"bind" env:"BIND"`
	Port int    `yaml:"port" env:"PORT"`
}

func DefaultConfig() Config {
	return Config{
		Theme:              "mocha",
		LogLevel:           "info",
		ProjectNameMatches: true,
		AppNameMatches:     true,
		TriggerKeywords:    []string{"vscode", "code", "vsc"},
		ExtensionID:        DefaultExtensionID,
		Watch:              true,
		Web: WebConfig{
			Bind: "127.0.0.1",
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir loads config.yaml from the given directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, configFileName))
}

// LoadFrom reads the YAML file at configPath over the defaults, then applies
// CODEPROJECTS_* environment overrides. A missing file is not an error.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}

	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// normalize fills blanks left by a partial config file.
func (c *Config) normalize() {
	if c.Theme == "" {
		c.Theme = "mocha"
	}
	if c.ExtensionID == "" {
		c.ExtensionID = DefaultExtensionID
	}
	if c.Web.Bind == "" {
		c.Web.Bind = "127.0.0.1"
	}

	keywords := c.TriggerKeywords[:0]
	for _, kw := range c.TriggerKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	c.TriggerKeywords = keywords
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port must be between 0 and 65535, got: %d", c.Web.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got: %s", c.LogLevel)
	}
	return nil
}

// ResolveConfigRoot returns the directory holding per-editor configuration
// directories (e.g. ~/.config, which contains "Code" and "Cursor").
func (c *Config) ResolveConfigRoot() string {
	if c.ConfigRoot != "" {
		return expandHome(c.ConfigRoot)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return ".config"
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultDir returns the directory holding config.yaml and runtime files.
func DefaultDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName)
	}

	return filepath.Join(home, ".config", appName)
}

func getConfigPath() string {
	return filepath.Join(DefaultDir(), configFileName)
}
