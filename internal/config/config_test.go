package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("http:\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Upstream.BaseURL != "https://dracor.org/api/v1" {
		t.Errorf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.SPARQLURL != "https://dracor.org/fuseki/sparql" {
		t.Errorf("SPARQLURL = %q", cfg.Upstream.SPARQLURL)
	}
	if cfg.Cache.Driver != CacheMemory {
		t.Errorf("Cache.Driver = %q, want memory", cfg.Cache.Driver)
	}
	if cfg.Upstream.IndexConcurrency != 4 || cfg.Upstream.Burst != 1 {
		t.Errorf("unexpected upstream defaults: %+v", cfg.Upstream)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("WriteTimeoutSec = %d", cfg.HTTP.WriteTimeoutSec)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{HTTP: HTTPConfig{Port: 8080}}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"relative base url", func(c *Config) { c.Upstream.BaseURL = "/api/v1" }, "upstream.base_url"},
		{"bad sparql url", func(c *Config) { c.Upstream.SPARQLURL = "fuseki" }, "upstream.sparql_url"},
		{"negative rate", func(c *Config) { c.Upstream.RateLimit = -1 }, "upstream.rate_limit"},
		{"redis without addrs", func(c *Config) { c.Cache.Driver = CacheRedis }, "cache.addrs"},
		{"redis with addrs", func(c *Config) {
			c.Cache.Driver = CacheRedis
			c.Cache.Addrs = []string{"localhost:6379"}
		}, ""},
		{"none driver", func(c *Config) { c.Cache.Driver = CacheNone }, ""},
		{"unknown driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DRACOR_TEST_PORT", "9090")

	out := string(expandEnvVars([]byte("a: ${DRACOR_TEST_PORT}\nb: ${DRACOR_TEST_UNSET:-fallback}\nc: ${DRACOR_TEST_UNSET}")))
	want := "a: 9090\nb: fallback\nc: "
	if out != want {
		t.Errorf("expandEnvVars = %q, want %q", out, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	path := filepath.Join(t.TempDir(), "test.yaml")
	body := "http:\n  port: 8081\ncache:\n  driver: redis\n  addrs:\n    - ${REDIS_ADDR}\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("Port = %d", cfg.HTTP.Port)
	}
	if len(cfg.Cache.Addrs) != 1 || cfg.Cache.Addrs[0] != "cache:6379" {
		t.Errorf("Addrs = %v", cfg.Cache.Addrs)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.Driver != CacheMemory {
		t.Errorf("local cache driver = %q", cfg.Cache.Driver)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
