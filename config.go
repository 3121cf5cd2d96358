package ptar

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config holds the tunable defaults that a config file may supply,
// overridden by any flag the user set explicitly on the command line.
type Config struct {
	NThreads       int `json:"nthreads"`
	BlockingFactor int `json:"blocking-factor"`
}

// DefaultConfigPath returns $HOME/.config/ptar/config.json, or "" if
// $HOME cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.config/ptar/config.json"
}

// LoadConfig reads the JSON config file at path. A missing file is not
// an error: it yields a zero-value Config, so callers fall through to
// hardcoded defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}
