package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/peerscan/pkg/cache"
	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/integrations/npm"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
registry = "https://npm.example.com/"
singletons = ["react", "vue"]
concurrency = 4

[cache]
backend = "redis"
ttl = "90m"
redis_addr = "cache:6379"
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Registry != "https://npm.example.com/" || cfg.Concurrency != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Singletons) != 2 || cfg.Singletons[1] != "vue" {
		t.Errorf("Singletons = %v", cfg.Singletons)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.TTL.Duration != 90*time.Minute || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), false)
	if err != nil {
		t.Fatalf("missing implicit config should not fail: %v", err)
	}
	if cfg.Registry != npm.DefaultRegistry || cfg.Cache.Backend != backendFile || cfg.Cache.TTL.Duration != defaultCacheTTL {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Singletons != nil {
		t.Errorf("Singletons = %v, want nil so analyzer defaults apply", cfg.Singletons)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, `concurrency = 2`), true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Concurrency != 2 || cfg.Cache.Backend != backendFile || cfg.Registry != npm.DefaultRegistry {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Syntax", `registry = `},
		{"UnknownKey", `colour = "red"`},
		{"BadBackend", "[cache]\nbackend = \"s3\""},
		{"BadTTL", "[cache]\nttl = \"soon\""},
		{"NegativeConcurrency", `concurrency = -1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body), true)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), true); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	got, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, "peerscan", "config.toml"); got != want {
		t.Errorf("configPath() = %q, want %q", got, want)
	}
}

func TestLoadConfigBadRegistry(t *testing.T) {
	_, err := loadConfig(writeConfig(t, `registry = "ftp://npm.example.com"`), true)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestMemoryBackend(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	c.Config = defaultConfig()
	c.Config.Cache.Backend = backendMemory

	got, err := c.newCache(context.Background())
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer got.Close()
	if _, ok := got.(*cache.MemoryCache); !ok {
		t.Errorf("newCache() = %T, want *cache.MemoryCache", got)
	}
}
