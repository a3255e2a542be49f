// Package config handles loading tasknotes.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/tasknotes/internal/paths"
	"github.com/amonks/tasknotes/internal/validation"
	"github.com/amonks/tasknotes/snapshot"
)

// ProjectFileName is the per-directory config file.
const ProjectFileName = "tasknotes.toml"

// Theme names a display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ValidThemes returns all valid themes.
func ValidThemes() []Theme {
	return []Theme{ThemeLight, ThemeDark}
}

// IsValid returns true if the theme is known.
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// LogLevels lists the accepted [log] level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config represents the tasknotes.toml configuration file.
type Config struct {
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
	Display Display `toml:"display"`
}

// Storage configures where notes and tasks are kept.
type Storage struct {
	// Dir holds the snapshot files. Defaults to the XDG data directory.
	Dir string `toml:"dir"`

	// Backend is jsonl or sqlite.
	Backend snapshot.Backend `toml:"backend"`

	// Backup keeps the previous snapshot next to the current one.
	Backup bool `toml:"backup"`
}

// Log configures diagnostic logging.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	// File receives log output. Empty means stderr.
	File string `toml:"file"`
}

// Display configures rendering.
type Display struct {
	// Theme is used until a theme preference has been saved.
	Theme      Theme  `toml:"theme"`
	DateFormat string `toml:"date-format"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Storage: Storage{Backend: snapshot.BackendJSONL, Backup: true},
		Log:     Log{Level: "warn"},
		Display: Display{Theme: ThemeLight, DateFormat: "02 Jan"},
	}
}

// Load loads configuration from the global config file and from
// tasknotes.toml in workDir. Values in the project file win.
// Returns the defaults if no config files exist.
func Load(workDir string) (*Config, error) {
	globalPath, err := paths.DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(workDir, ProjectFileName))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if err := merged.finish(); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadFile loads configuration from a single file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}
	cfg, meta, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(&Config{}, cfg, toml.MetaData{}, meta)
	if err := merged.finish(); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Default()

	pick := func(section, key string) (project, global bool) {
		return projectMeta.IsDefined(section, key), globalMeta.IsDefined(section, key)
	}

	p, g := pick("storage", "dir")
	merged.Storage.Dir = mergeString(p, g, projectCfg.Storage.Dir, globalCfg.Storage.Dir, merged.Storage.Dir)
	p, g = pick("storage", "backend")
	merged.Storage.Backend = snapshot.Backend(mergeString(p, g, string(projectCfg.Storage.Backend), string(globalCfg.Storage.Backend), string(merged.Storage.Backend)))
	p, g = pick("storage", "backup")
	merged.Storage.Backup = mergeValue(p, g, projectCfg.Storage.Backup, globalCfg.Storage.Backup, merged.Storage.Backup)

	p, g = pick("log", "level")
	merged.Log.Level = strings.ToLower(mergeString(p, g, projectCfg.Log.Level, globalCfg.Log.Level, merged.Log.Level))
	p, g = pick("log", "development")
	merged.Log.Development = mergeValue(p, g, projectCfg.Log.Development, globalCfg.Log.Development, merged.Log.Development)
	p, g = pick("log", "file")
	merged.Log.File = mergeString(p, g, projectCfg.Log.File, globalCfg.Log.File, merged.Log.File)

	p, g = pick("display", "theme")
	merged.Display.Theme = Theme(strings.ToLower(mergeString(p, g, string(projectCfg.Display.Theme), string(globalCfg.Display.Theme), string(merged.Display.Theme))))
	p, g = pick("display", "date-format")
	merged.Display.DateFormat = mergeString(p, g, projectCfg.Display.DateFormat, globalCfg.Display.DateFormat, merged.Display.DateFormat)

	return merged
}

func mergeString(projectDefined, globalDefined bool, projectValue, globalValue, fallback string) string {
	return strings.TrimSpace(mergeValue(projectDefined, globalDefined, projectValue, globalValue, fallback))
}

func mergeValue[T any](projectDefined, globalDefined bool, projectValue, globalValue, fallback T) T {
	switch {
	case projectDefined:
		return projectValue
	case globalDefined:
		return globalValue
	default:
		return fallback
	}
}

// finish fills the data directory default, expands ~, and validates.
func (c *Config) finish() error {
	if c.Storage.Dir == "" {
		dir, err := paths.DefaultDataDir()
		if err != nil {
			return err
		}
		c.Storage.Dir = dir
	}
	dir, err := paths.ExpandHome(c.Storage.Dir)
	if err != nil {
		return err
	}
	c.Storage.Dir = dir

	if c.Log.File != "" {
		file, err := paths.ExpandHome(c.Log.File)
		if err != nil {
			return err
		}
		c.Log.File = file
	}

	return c.Validate()
}

// Validate checks enum-valued settings.
func (c *Config) Validate() error {
	if !c.Storage.Backend.IsValid() {
		return fmt.Errorf("storage.backend: %w", validation.FormatInvalidValueError(snapshot.ErrUnknownBackend, c.Storage.Backend, snapshot.ValidBackends()))
	}
	if !validLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q: must be %s", c.Log.Level, strings.Join(LogLevels, ", "))
	}
	if !c.Display.Theme.IsValid() {
		return fmt.Errorf("display.theme %q: must be %s", c.Display.Theme, validation.FormatValidValues(ValidThemes()))
	}
	return nil
}

func validLogLevel(level string) bool {
	for _, valid := range LogLevels {
		if level == valid {
			return true
		}
	}
	return false
}
