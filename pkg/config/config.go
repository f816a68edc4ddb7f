package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// defaultCacheSize matches the LRU capacity pkg/gdbindex.Build uses for
// its pubnames/pubtypes cache.
const defaultCacheSize = 256

// Config describes one gdb-index build, as read from a gdbindex.yml
// document.
type Config struct {
	// Target names the architecture the debug sections were produced
	// for: "amd64" or "i386". Defaults to "amd64".
	Target string `yaml:"target"`

	// ExcludePrefixes lists symbol-name prefixes the pubnames/pubtypes
	// reader drops before they reach the hash table.
	ExcludePrefixes []string `yaml:"excludePrefixes"`

	// CacheSize is decoded and defaulted here (zero means use the
	// default), but nothing passes it on: pkg/gdbindex.Build always
	// sizes its pubnames/pubtypes LRU cache to its own default.
	CacheSize int `yaml:"cacheSize"`

	// Objects names the per-object subdirectories of the CLI's
	// --sections directory, each holding decompressed pubnames/pubtypes
	// dumps and an optional offset file; only the CLI tool consumes
	// this field.
	Objects []string `yaml:"objects"`
}

// LoadConfig reads a gdbindex.yml document at path, filling in
// defaults for every unset field. It does not check field values; the
// CLI checks the target name through target.ByName.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	var c Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	if c.Target == "" {
		c.Target = "amd64"
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	return &c, nil
}
