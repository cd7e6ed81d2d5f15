package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultPath is where the config file lives unless overridden on the
// command line.
const DefaultPath = "discshare.json"

// Config holds everything discshare persists between runs.
type Config struct {
	// Files is the ordered list of local files offered for sharing.
	// Entries with unsupported extensions are kept here but skipped
	// when the serving path table is built.
	Files []string `json:"files"`

	// Port is the preferred listen port. 0 means pick an ephemeral
	// port; whatever port actually binds is written back here.
	Port int `json:"port"`

	// RendezvousHost is the host:port of the match service used for
	// registration and peer lookup. Empty disables both.
	RendezvousHost string `json:"rendezvous_host,omitempty"`

	// EnableMDNS turns on mDNS advertisement while serving and mDNS
	// fallback browsing while scanning.
	EnableMDNS bool `json:"enable_mdns,omitempty"`
}

// Load reads the config at path. A missing file is not an error: it
// returns an empty config so first runs work without setup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return &cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating config dir %s", dir)
		}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing config %s", path)
	}
	return nil
}

// AddFile appends a file to the shared list unless it is already there.
// Returns true if the list changed.
func (c *Config) AddFile(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for _, f := range c.Files {
		if f == abs {
			return false
		}
	}
	c.Files = append(c.Files, abs)
	return true
}
