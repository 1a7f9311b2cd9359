// Package config reads excss project configuration.
//
// Configuration is looked up in a project directory, in this order:
// excss.yaml, .excss.yaml, excss.json, and the "excss" key of package.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/excss/internal/log"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Filenames are the configuration files searched, in order
var Filenames = []string{"excss.yaml", ".excss.yaml", "excss.json"}

// DefaultAddr is the listen address of the live server
const DefaultAddr = "localhost:8765"

// ErrNotFound is returned by Find when a directory has no configuration
var ErrNotFound = errors.New("no excss configuration found")

// TokenFile is a design token file whose tokens become global variables.
// It may be written as a bare path.
type TokenFile struct {
	Path         string   `yaml:"path" json:"path"`
	Prefix       string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	GroupMarkers []string `yaml:"groupMarkers,omitempty" json:"groupMarkers,omitempty"`
}

// ServerConfig configures `excss serve`
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty"`
}

// Config is an excss project configuration
type Config struct {
	// Sources are glob patterns of .excss and .html files
	Sources []string `yaml:"sources" json:"sources"`
	// Tokens are design token files loaded before any source
	Tokens []TokenFile `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	// Output is the directory generated files are written to. Empty means
	// next to each source.
	Output     string       `yaml:"output,omitempty" json:"output,omitempty"`
	Minify     bool         `yaml:"minify,omitempty" json:"minify,omitempty"`
	Validate   bool         `yaml:"validate,omitempty" json:"validate,omitempty"`
	Instrument bool         `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	LogLevel   string       `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	Server     ServerConfig `yaml:"server,omitempty" json:"server,omitempty"`

	// Dir is the directory relative paths are resolved against
	Dir string `yaml:"-" json:"-"`
}

// Default returns the configuration used when none is found
func Default() *Config {
	return &Config{
		Sources: []string{"**/*.excss"},
		Server:  ServerConfig{Addr: DefaultAddr},
		Dir:     ".",
	}
}

// Find loads the configuration of dir. It returns ErrNotFound when dir has
// none of the configuration files and no "excss" key in package.json.
func Find(dir string) (*Config, error) {
	for _, name := range Filenames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, ErrNotFound
	}
	var pkg struct {
		Excss json.RawMessage `json:"excss"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	if len(pkg.Excss) == 0 {
		return nil, ErrNotFound
	}
	cfg, err := decode(pkg.Excss, false)
	if err != nil {
		return nil, fmt.Errorf("package.json: %w", err)
	}
	cfg.Dir = dir
	log.Debug("Loaded configuration from %s", filepath.Join(dir, "package.json"))
	return cfg, nil
}

// FindOrDefault is Find, falling back to Default rooted at dir
func FindOrDefault(dir string) (*Config, error) {
	cfg, err := Find(dir)
	if errors.Is(err, ErrNotFound) {
		cfg = Default()
		cfg.Dir = dir
		return cfg, nil
	}
	return cfg, err
}

// Load reads a configuration file. Files ending in .json are read as JSON
// with comments; anything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	isYAML := !strings.EqualFold(filepath.Ext(path), ".json")
	cfg, err := decode(data, isYAML)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	log.Debug("Loaded configuration from %s", path)
	return cfg, nil
}

func decode(data []byte, isYAML bool) (*Config, error) {
	cfg := Default()
	cfg.Sources = nil
	var err error
	if isYAML {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
	if err != nil {
		return nil, err
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = Default().Sources
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	for i, tf := range c.Tokens {
		if strings.TrimSpace(tf.Path) == "" {
			return fmt.Errorf("tokens[%d].path must not be empty", i)
		}
	}
	for _, pattern := range c.Sources {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return fmt.Errorf("invalid source pattern %q", pattern)
		}
	}
	return nil
}

// ResolveSources expands the source patterns into file paths. Files are
// returned once each, in pattern order and then lexical order.
func (c *Config) ResolveSources() ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	for _, pattern := range c.Sources {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(c.Dir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

// TokenPath resolves a token file against the configuration directory
func (c *Config) TokenPath(tf TokenFile) string {
	if filepath.IsAbs(tf.Path) {
		return tf.Path
	}
	return filepath.Join(c.Dir, tf.Path)
}

// OutputPath returns where the generated file for source is written:
// .excss sources become .css files and HTML pages keep their name.
func (c *Config) OutputPath(source string) string {
	name := filepath.Base(source)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".excss") {
		name = strings.TrimSuffix(name, ext) + ".css"
	}
	dir := filepath.Dir(source)
	if c.Output != "" {
		dir = c.Output
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(c.Dir, dir)
		}
	}
	return filepath.Join(dir, name)
}

// UnmarshalYAML accepts a bare path or a mapping
func (tf *TokenFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		tf.Path = node.Value
		return nil
	}
	type plain TokenFile
	return node.Decode((*plain)(tf))
}

// UnmarshalJSON accepts a bare path or an object
func (tf *TokenFile) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		tf.Path = path
		return nil
	}
	type plain TokenFile
	return json.Unmarshal(data, (*plain)(tf))
}
