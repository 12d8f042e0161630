// Package config loads CLI defaults from an optional TOML file and the
// environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	DefaultChunkType  = "stEg"
	DefaultLogLevel   = "info"
	DefaultIterations = 100000

	EnvConfig    = "STEGNO_CONFIG"
	EnvKey       = "STEGNO_KEY"
	EnvChunkType = "STEGNO_CHUNK_TYPE"
	EnvLogLevel  = "STEGNO_LOG_LEVEL"
)

// Config holds defaults for values the commands otherwise take as flags.
type Config struct {
	Key              string `toml:"key"`
	ChunkType        string `toml:"chunk_type"`
	LogLevel         string `toml:"log_level"`
	KDFIterations    int    `toml:"kdf_iterations"`
	InsertBeforeIEND bool   `toml:"insert_before_iend"`
}

func Default() *Config {
	return &Config{
		ChunkType:     DefaultChunkType,
		LogLevel:      DefaultLogLevel,
		KDFIterations: DefaultIterations,
	}
}

// Load reads path, or DefaultPath() when path is empty, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parsing config %s", path)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	cfg.Key = getEnv(EnvKey, cfg.Key)
	cfg.ChunkType = getEnv(EnvChunkType, cfg.ChunkType)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)

	if cfg.KDFIterations <= 0 {
		cfg.KDFIterations = DefaultIterations
	}

	return cfg, nil
}

// DefaultPath is $STEGNO_CONFIG, else stegno/config.toml under the user
// config directory. It is empty when neither can be resolved.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "stegno", "config.toml")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
