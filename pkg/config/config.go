// Package config loads apilink settings from a TOML file.
//
// A missing file is not an error: every field has a default, so the tool
// works with no configuration at all. Command-line flags override values
// read here.
//
//	[site]
//	base_path = "/docs/api/"
//	root_prefix = "classy."
//
//	[mapping]
//	file = "package-mapping.yaml"
//
//	[resolve]
//	on_missing = "error"
//
//	[server]
//	addr = ":8080"
//	site_url = "https://classy.dev"
//
//	[cache]
//	enabled = true
//	ttl = "10m"
//	scope = "staging"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping/mongostore"
	"github.com/matzehuels/apilink/pkg/mapping/redisstore"
	"github.com/matzehuels/apilink/pkg/resolver"
)

// FileName is the config file looked up in the working directory.
const FileName = "apilink.toml"

// Environment variables read by ApplyEnv.
const (
	EnvRedisAddr     = "APILINK_REDIS_ADDR"
	EnvRedisPassword = "APILINK_REDIS_PASSWORD"
	EnvMongoURI      = "APILINK_MONGO_URI"
)

// Config is the complete configuration.
type Config struct {
	Site    Site    `toml:"site"`
	Mapping Mapping `toml:"mapping"`
	Resolve Resolve `toml:"resolve"`
	Server  Server  `toml:"server"`
	Cache   Cache   `toml:"cache"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Site describes where the API reference is published.
type Site struct {
	BasePath   string `toml:"base_path"`
	RootPrefix string `toml:"root_prefix"` // "" or a package path ending in "."
}

// Mapping selects the source of the package mapping table. At most one of
// File, RedisAddr and MongoURI is used, in that order of precedence.
type Mapping struct {
	File            string `toml:"file"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"-"`
	RedisKey        string `toml:"redis_key"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Resolve controls behaviour for symbols without a mapping entry.
type Resolve struct {
	OnMissing       string `toml:"on_missing"`
	FallbackPackage string `toml:"fallback_package"`
}

// Server configures the HTTP server.
type Server struct {
	Addr    string `toml:"addr"`
	SiteURL string `toml:"site_url"`
}

// Cache configures snapshot caching of remote mapping tables.
type Cache struct {
	Enabled bool          `toml:"enabled"`
	TTL     time.Duration `toml:"ttl"`
	Scope   string        `toml:"scope"` // key prefix for shared cache directories
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Site: Site{
			BasePath:   resolver.DefaultBasePath,
			RootPrefix: resolver.DefaultRootPrefix,
		},
		Mapping: Mapping{
			RedisKey:        redisstore.DefaultKey,
			MongoDatabase:   mongostore.DefaultDatabase,
			MongoCollection: mongostore.DefaultCollection,
		},
		Resolve: Resolve{OnMissing: string(resolver.MissingError)},
		Server:  Server{Addr: ":8080"},
		Cache:   Cache{Enabled: true, TTL: 10 * time.Minute},
	}
}

// Load reads the config at path on top of the defaults. An empty path
// searches FileName in the working directory and then the user config
// directory. A missing file yields the defaults; a missing file that was
// named explicitly is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = find()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return cfg, nil
}

// find returns the first existing default config path, or "".
func find() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "apilink", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ApplyEnv overrides mapping connection settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Mapping.RedisAddr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Mapping.RedisPassword = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Mapping.MongoURI = v
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := c.ResolverOptions(); err != nil {
		return err
	}
	if c.Server.SiteURL != "" {
		if err := errors.ValidateURL(c.Server.SiteURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.site_url")
		}
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// ResolverOptions converts the site and resolve sections to resolver options.
func (c *Config) ResolverOptions() (resolver.Options, error) {
	policy, err := resolver.ParseMissingPolicy(c.Resolve.OnMissing)
	if err != nil {
		return resolver.Options{}, err
	}
	opts := resolver.Options{
		BasePath:        c.Site.BasePath,
		RootPrefix:      c.Site.RootPrefix,
		OnMissing:       policy,
		FallbackPackage: c.Resolve.FallbackPackage,
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return resolver.Options{}, err
	}
	return opts, nil
}

// RedisConfig returns the redisstore settings.
func (m Mapping) RedisConfig() redisstore.Config {
	return redisstore.Config{Addr: m.RedisAddr, Password: m.RedisPassword, Key: m.RedisKey}
}

// MongoConfig returns the mongostore settings.
func (m Mapping) MongoConfig() mongostore.Config {
	return mongostore.Config{URI: m.MongoURI, Database: m.MongoDatabase, Collection: m.MongoCollection}
}

// Remote reports whether the mapping comes from Redis or MongoDB.
func (m Mapping) Remote() bool {
	return m.File == "" && (m.RedisAddr != "" || m.MongoURI != "")
}
