// Package config loads dotview settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/dotview/config.toml, falling back to
// ~/.config/dotview/config.toml. A missing file yields Default(). Command-line
// flags override file values.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dotview/pkg/cache"
	"github.com/matzehuels/dotview/pkg/engine"
	"github.com/matzehuels/dotview/pkg/viewer"
	"github.com/matzehuels/dotview/pkg/viewer/web"
)

// AppName names the configuration and cache directories.
const AppName = "dotview"

// Viewer backends.
const (
	ViewerDesktop  = "desktop"
	ViewerWeb      = "web"
	ViewerHeadless = "headless"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the full set of settings.
type Config struct {
	Engine Engine `toml:"engine"`
	Viewer Viewer `toml:"viewer"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
}

// Engine selects the layout engine.
type Engine struct {
	Command string `toml:"command"`
	Builtin bool   `toml:"builtin"`
	Layout  string `toml:"layout"`
}

// Viewer configures the window.
type Viewer struct {
	Backend string `toml:"backend"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Title   string `toml:"title"`
	Addr    string `toml:"addr"`
}

// Cache configures the render cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// Store configures the artifact store used by publish.
type Store struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
	Bucket   string `toml:"bucket"`
	Dir      string `toml:"dir"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine: Engine{Command: engine.DefaultCommand, Layout: "dot"},
		Viewer: Viewer{
			Backend: ViewerDesktop,
			Width:   viewer.DefaultWidth,
			Height:  viewer.DefaultHeight,
			Title:   viewer.DefaultTitle,
			Addr:    web.DefaultAddr,
		},
		Cache: Cache{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{cache.DefaultTTL},
		},
		Store: Store{
			Database: "dotview",
			Bucket:   "renders",
		},
	}
}

// Path returns the default configuration file location.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the render cache directory, honouring XDG_CACHE_HOME.
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// DataDir returns the directory for persistent data such as locally
// published artifacts, honouring XDG_DATA_HOME.
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// Load reads path over the defaults. An empty path means Path(); a missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and dimensions.
func (c Config) Validate() error {
	if !slices.Contains([]string{ViewerDesktop, ViewerWeb, ViewerHeadless}, c.Viewer.Backend) {
		return fmt.Errorf("viewer.backend %q: must be desktop, web or headless", c.Viewer.Backend)
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend %q: must be file, redis or none", c.Cache.Backend)
	}
	if c.Viewer.Width < 0 || c.Viewer.Height < 0 {
		return fmt.Errorf("viewer size %dx%d: must not be negative", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl %s: must not be negative", c.Cache.TTL)
	}
	return nil
}

// ResolvedCacheDir returns Cache.Dir, or CacheDir() when unset.
func (c Config) ResolvedCacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return CacheDir()
}

// WindowConfig returns the viewer window settings.
func (c Config) WindowConfig() viewer.Config {
	return viewer.Config{Width: c.Viewer.Width, Height: c.Viewer.Height, Title: c.Viewer.Title}
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
