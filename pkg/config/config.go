// Package config loads gutenshelf settings from flags, the environment,
// .env files and ~/.gutenshelf.yaml, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kerbaras/gutenshelf/pkg/errors"
	"github.com/kerbaras/gutenshelf/pkg/logging"
)

const (
	EnvPrefix        = "GUTENSHELF"
	DefaultBaseURL   = "https://gutendex.com/books"
	DefaultRateLimit = 2.0
)

type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	State   StateConfig   `mapstructure:"state"`
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

type CatalogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds each catalog request. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is in requests per second. Zero disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	Languages string  `mapstructure:"languages"`
	Topic     string  `mapstructure:"topic"`
	Sort      string  `mapstructure:"sort"`
}

type StateConfig struct {
	Path string `mapstructure:"path"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Output  string `mapstructure:"output"`
	NoColor bool   `mapstructure:"no_color"`
}

// Query returns the server-side parameters for the first catalog page.
func (c CatalogConfig) Query() url.Values {
	params := url.Values{}
	if c.Languages != "" {
		params.Set("languages", c.Languages)
	}
	if c.Topic != "" {
		params.Set("topic", c.Topic)
	}
	if c.Sort != "" {
		params.Set("sort", c.Sort)
	}
	return params
}

func (c LogConfig) Logging() logging.Config {
	return logging.Config{
		Level:   c.Level,
		Format:  c.Format,
		Output:  c.Output,
		NoColor: c.NoColor || os.Getenv("NO_COLOR") != "",
	}
}

// New returns a viper instance with defaults and environment binding set
// up. Command flags are bound to it before Load is called.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	home := homeDir()

	v.SetDefault("catalog.base_url", DefaultBaseURL)
	v.SetDefault("catalog.timeout", time.Duration(0))
	v.SetDefault("catalog.rate_limit", DefaultRateLimit)
	v.SetDefault("catalog.languages", "")
	v.SetDefault("catalog.topic", "")
	v.SetDefault("catalog.sort", "")

	v.SetDefault("state.path", filepath.Join(home, ".gutenshelf", "state.db"))
	v.SetDefault("export.dir", filepath.Join(home, "Downloads"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.no_color", false)
}

// Load reads .env files, the config file and the environment into a Config.
// configFile may be empty, in which case ~/.gutenshelf.yaml and
// ./.gutenshelf.yaml are tried. A missing default file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	LoadEnvFiles(".env", ".env.local")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(".gutenshelf")
		v.SetConfigType("yaml")
		v.AddConfigPath(homeDir())
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.State.Path = ExpandHome(cfg.State.Path)
	cfg.Export.Dir = ExpandHome(cfg.Export.Dir)
	if cfg.Log.Output != "" && !isStream(cfg.Log.Output) {
		cfg.Log.Output = ExpandHome(cfg.Log.Output)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewValidationError("catalog.base_url", c.Catalog.BaseURL, "must be an absolute http(s) URL")
	}
	if c.Catalog.Timeout < 0 {
		return errors.NewValidationError("catalog.timeout", c.Catalog.Timeout, "must not be negative")
	}
	if c.Catalog.RateLimit < 0 {
		return errors.NewValidationError("catalog.rate_limit", c.Catalog.RateLimit, "must not be negative")
	}
	return nil
}

// LogFile is where the interactive browser writes its logs.
func (c *Config) LogFile() string {
	return filepath.Join(filepath.Dir(c.State.Path), "gutenshelf.log")
}

// LoadEnvFiles loads the given .env files into the process environment.
// Missing files are skipped and existing variables are never overridden.
func LoadEnvFiles(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func isStream(output string) bool {
	switch strings.ToLower(output) {
	case "stderr", "stdout", "discard", "none":
		return true
	}
	return false
}
