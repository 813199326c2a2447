// Package config resolves the client's settings from defaults, a YAML
// config file, a .env file, PLMS_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Setting keys.
const (
	KeyAPIBaseURL = "api_base_url"
	KeyTimeout    = "timeout"
	KeyStatePath  = "state_path"
)

// EnvPrefix prefixes every environment variable, e.g. PLMS_API_BASE_URL.
const EnvPrefix = "PLMS"

// Defaults.
const (
	DefaultAPIBaseURL = "http://localhost:8080"
	DefaultTimeout    = 15 * time.Second
	DefaultDotEnv     = ".env"
)

// FlagKeys maps command-line flag names to setting keys.
var FlagKeys = map[string]string{
	"api":     KeyAPIBaseURL,
	"timeout": KeyTimeout,
	"state":   KeyStatePath,
}

// ErrInvalid is returned when a resolved setting is unusable.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved client configuration.
type Config struct {
	APIBaseURL string
	Timeout    time.Duration
	StatePath  string

	// File is the config file that was read, or "" when none existed.
	File string
}

// Options says where Load looks for each layer. Zero values select the
// defaults.
type Options struct {
	// ConfigFile overrides DefaultConfigPath. An explicit file must exist
	// unless AllowMissing is set.
	ConfigFile   string
	AllowMissing bool
	// DotEnv is the .env file to read; missing files are ignored.
	DotEnv string
	// Flags are bound by name through FlagKeys. Only flags the user set
	// take precedence.
	Flags *pflag.FlagSet
}

// DefaultConfigPath is $XDG_CONFIG_HOME/plms/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "plms", "config.yaml"), nil
}

// DefaultStatePath is $XDG_STATE_HOME/plms/state.db, falling back to
// ~/.local/state.
func DefaultStatePath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate state dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "plms", "state.db"), nil
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyAPIBaseURL, DefaultAPIBaseURL)
	v.SetDefault(KeyTimeout, DefaultTimeout.String())
	statePath, err := DefaultStatePath()
	if err != nil {
		return nil, err
	}
	v.SetDefault(KeyStatePath, statePath)

	file, err := readConfigFile(v, opts.ConfigFile, opts.AllowMissing)
	if err != nil {
		return nil, err
	}
	if err := mergeDotEnv(v, opts.DotEnv); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		APIBaseURL: strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
		StatePath:  strings.TrimSpace(v.GetString(KeyStatePath)),
		File:       file,
	}
	cfg.Timeout, err = time.ParseDuration(strings.TrimSpace(v.GetString(KeyTimeout)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, KeyTimeout, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfigFile reads the YAML config layer and returns the path it read.
func readConfigFile(v *viper.Viper, explicit string, allowMissing bool) (string, error) {
	path := explicit
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return "", nil
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && (explicit == "" || allowMissing) {
			return "", nil
		}
		return "", fmt.Errorf("config file: %w", err)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	return path, nil
}

// mergeDotEnv layers PLMS_* entries of a .env file over the config file.
// The process environment still wins.
func mergeDotEnv(v *viper.Viper, path string) error {
	if path == "" {
		path = DefaultDotEnv
	}
	entries, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	layer := map[string]any{}
	for k, val := range entries {
		key, ok := strings.CutPrefix(k, EnvPrefix+"_")
		if ok {
			layer[strings.ToLower(key)] = val
		}
	}
	if len(layer) == 0 {
		return nil
	}
	return v.MergeConfigMap(layer)
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", ErrInvalid, KeyAPIBaseURL, c.APIBaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, KeyTimeout, c.Timeout)
	}
	if c.StatePath == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, KeyStatePath)
	}
	return nil
}

// fileConfig is the on-disk YAML shape.
type fileConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
	Timeout    string `yaml:"timeout"`
	StatePath  string `yaml:"state_path"`
}

// ErrExists is returned by WriteFile when the file exists and overwrite is
// false.
var ErrExists = errors.New("config file already exists")

// WriteFile saves cfg as YAML at path, creating parent directories.
func WriteFile(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	data, err := yaml.Marshal(fileConfig{
		APIBaseURL: cfg.APIBaseURL,
		Timeout:    cfg.Timeout.String(),
		StatePath:  cfg.StatePath,
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
