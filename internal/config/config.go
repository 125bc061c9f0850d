// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"strata/internal/errors"
)

// FileName is the repository configuration file, looked up at the
// repository root.
const FileName = ".strata.yaml"

// Backend names accepted for storage.backend.
const (
	BackendFiles  = "files"
	BackendBadger = "badger"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Staging StagingConfig `mapstructure:"staging"`
	Locking LockingConfig `mapstructure:"locking"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	Backend   string `mapstructure:"backend"`    // files or badger
	CacheSize int    `mapstructure:"cache_size"` // objects held in the read cache
}

type StagingConfig struct {
	// Dedupe replaces an already staged path in place instead of appending
	// a duplicate entry.
	Dedupe bool `mapstructure:"dedupe"`
}

type LockingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		Storage: StorageConfig{Backend: BackendFiles, CacheSize: 256},
		Staging: StagingConfig{Dedupe: true},
		Locking: LockingConfig{Enabled: true},
		Log:     LogConfig{Level: "warn"},
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.cache_size", def.Storage.CacheSize)
	v.SetDefault("staging.dedupe", def.Staging.Dedupe)
	v.SetDefault("locking.enabled", def.Locking.Enabled)
	v.SetDefault("log.level", def.Log.Level)
}

// Load reads the configuration for the repository at root. A missing file
// means defaults; STRATA_* environment variables override both.
func Load(root string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("STRATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.IOFailure(err, "reading config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, errors.IOFailure(err, "checking config %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.IOFailure(err, "decoding config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks loaded values against the ranges the components accept.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFiles, BackendBadger:
	default:
		return errors.IOFailure(nil, "unknown storage backend %q (want %s or %s)",
			c.Storage.Backend, BackendFiles, BackendBadger)
	}
	if c.Storage.CacheSize <= 0 {
		return errors.IOFailure(nil, "storage.cache_size must be positive, got %d", c.Storage.CacheSize)
	}
	return nil
}

// defaultTemplate is written by init when no config file exists. Everything
// except the chosen backend is a commented default.
const defaultTemplate = `# strata repository configuration.
# Commented values are the defaults.

storage:
  # Object store implementation: files or badger.
  backend: %s
  # Objects held in the in-process read cache.
  #cache_size: 256

staging:
  # Replace an already staged path in place instead of appending a
  # duplicate entry.
  #dedupe: true

locking:
  # Take the advisory repository lock for mutating commands.
  #enabled: true

log:
  # debug, info, warn, or error.
  #level: warn
`

// WriteDefault writes the default config template at root with the chosen
// storage backend filled in. An existing file is left untouched.
func WriteDefault(root, backend string) error {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.IOFailure(err, "checking config %s", path)
	}
	data := fmt.Sprintf(defaultTemplate, backend)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return errors.IOFailure(err, "writing config %s", path)
	}
	return nil
}
