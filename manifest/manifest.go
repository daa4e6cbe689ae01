// Package manifest handles rox.toml project configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roxlang/roxscript/rox"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "rox.toml"

// Manifest represents a rox.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Engine  Engine  `toml:"engine"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the rox.toml file (set at load time).
	Dir string `toml:"-"`
}

type Project struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// Engine holds interpreter limits. Zero means the engine default.
type Engine struct {
	StepQuota      int `toml:"step_quota"`
	RecursionLimit int `toml:"recursion_limit"`
}

// Log configures CLI logging. File is relative to Dir; empty means stderr.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Load parses the rox.toml file in dir.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a manifest at an explicit path. Keys the manifest format
// does not know are reported as errors.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	// Defaults
	if m.Project.Entry == "" {
		m.Project.Entry = "main.rox"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a rox.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) validate() error {
	var errs []error
	if m.Engine.StepQuota < 0 {
		errs = append(errs, errors.New("engine.step_quota must not be negative"))
	}
	if m.Engine.RecursionLimit < 0 {
		errs = append(errs, errors.New("engine.recursion_limit must not be negative"))
	}
	if m.Log.Verbosity < -1 {
		errs = append(errs, errors.New("log.verbosity must be -1 or greater"))
	}
	return errors.Join(errs...)
}

// EntryPath returns the absolute path of the project's entry script.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Project.Entry) {
		return m.Project.Entry
	}
	return filepath.Join(m.Dir, m.Project.Entry)
}

// LogPath returns the absolute log file path, or nil to log to stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.Log.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.Dir, path)
	}
	return &path
}

// EngineConfig maps the [engine] table onto an interpreter configuration.
func (m *Manifest) EngineConfig() rox.Config {
	return rox.Config{
		StepQuota:      m.Engine.StepQuota,
		RecursionLimit: m.Engine.RecursionLimit,
	}
}
