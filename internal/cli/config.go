package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/integrations/npm"
)

// Cache backends.
const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
	backendNone   = "none"
)

const (
	defaultCacheTTL  = 24 * time.Hour
	defaultRedisAddr = "localhost:6379"
	configFileName   = "config.toml"
)

// Config is the on-disk configuration. Flags override these values.
//
//	registry = "https://registry.npmjs.org"
//	singletons = ["react", "react-dom", "vue"]
//	concurrency = 8
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//	redis_addr = "localhost:6379"
type Config struct {
	Registry    string      `toml:"registry"`
	Singletons  []string    `toml:"singletons"`
	Concurrency int         `toml:"concurrency"`
	Cache       CacheConfig `toml:"cache"`
}

// CacheConfig selects and tunes the registry cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	TTL       duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

// duration decodes TOML strings like "12h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Registry: npm.DefaultRegistry,
		Cache: CacheConfig{
			Backend:   backendFile,
			TTL:       duration{defaultCacheTTL},
			RedisAddr: defaultRedisAddr,
		},
	}
}

// loadConfig reads path on top of the defaults. A missing file is not an
// error unless the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) && !explicit {
		return defaultConfig(), nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, keys[0].String())
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendMemory, backendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend must be one of file, redis, memory, none; got %q", c.Cache.Backend)
	}
	if c.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Registry == "" {
		c.Registry = npm.DefaultRegistry
	}
	if err := errors.ValidateURL(c.Registry); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "registry %q", c.Registry)
	}
	return nil
}

// configPath returns the config file location using XDG
// (~/.config/peerscan/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}
