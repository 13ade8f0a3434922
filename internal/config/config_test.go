package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Engine.Command != "dot" {
		t.Errorf("Engine.Command = %q", cfg.Engine.Command)
	}
	if cfg.Viewer.Width != 1024 || cfg.Viewer.Height != 768 {
		t.Errorf("Viewer size = %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if cfg.Cache.TTL.Duration != 7*24*time.Hour {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[engine]
command = "/opt/graphviz/bin/dot"
builtin = true

[viewer]
backend = "web"
width = 640
addr = ":9000"

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "2h30m"

[store]
mongo_uri = "mongodb://db:27017"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"engine.command", cfg.Engine.Command, "/opt/graphviz/bin/dot"},
		{"engine.builtin", cfg.Engine.Builtin, true},
		{"viewer.backend", cfg.Viewer.Backend, ViewerWeb},
		{"viewer.width", cfg.Viewer.Width, 640},
		{"viewer.height (default)", cfg.Viewer.Height, 768},
		{"viewer.addr", cfg.Viewer.Addr, ":9000"},
		{"cache.backend", cfg.Cache.Backend, CacheRedis},
		{"cache.redis_addr", cfg.Cache.RedisAddr, "cache:6379"},
		{"cache.ttl", cfg.Cache.TTL.Duration, 150 * time.Minute},
		{"store.mongo_uri", cfg.Store.MongoURI, "mongodb://db:27017"},
		{"store.bucket (default)", cfg.Store.Bucket, "renders"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", "[engine\ncommand = ", "load config"},
		{"unknown key", "[engine]\nflavour = \"x\"\n", "unknown key"},
		{"bad backend", "[viewer]\nbackend = \"terminal\"\n", "viewer.backend"},
		{"bad cache", "[cache]\nbackend = \"memcached\"\n", "cache.backend"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", "load config"},
		{"negative size", "[viewer]\nwidth = -1\n", "viewer size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	if p, _ := Path(); p != filepath.Join("/tmp/xdg-config", "dotview", "config.toml") {
		t.Errorf("Path() = %q", p)
	}
	if d, _ := CacheDir(); d != filepath.Join("/tmp/xdg-cache", "dotview") {
		t.Errorf("CacheDir() = %q", d)
	}

	if d, _ := DataDir(); d != filepath.Join("/tmp/xdg-data", "dotview") {
		t.Errorf("DataDir() = %q", d)
	}

	cfg := Default()
	if d, _ := cfg.ResolvedCacheDir(); d != filepath.Join("/tmp/xdg-cache", "dotview") {
		t.Errorf("ResolvedCacheDir() = %q", d)
	}
	cfg.Cache.Dir = "/var/cache/dv"
	if d, _ := cfg.ResolvedCacheDir(); d != "/var/cache/dv" {
		t.Errorf("ResolvedCacheDir() with override = %q", d)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "dotview"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "[viewer]\ntitle = \"graphs\"\n"
	if err := os.WriteFile(filepath.Join(dir, "dotview", "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowConfig().Title != "graphs" {
		t.Errorf("WindowConfig().Title = %q", cfg.WindowConfig().Title)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	want := Default()
	want.Viewer.Backend = ViewerHeadless
	want.Cache.TTL.Duration = 90 * time.Second

	var buf bytes.Buffer
	if err := want.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("Load() of written config: %v\n%s", err, buf.String())
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
