// Package config loads mo's own settings (not the project's Mo.yaml).
//
// Settings merge, lowest to highest precedence: built-in defaults, the
// project file <root>/.mo/settings.yaml, and MO_* environment variables
// (MO_RENAME, MO_ASSUME_YES, MO_BACKUP_ENABLED, ...). CLI flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Dir is the per-project directory holding settings and the journal.
const Dir = ".mo"

// SettingsFile is the settings file name inside Dir.
const SettingsFile = "settings.yaml"

// Settings controls how mo operates on a project.
type Settings struct {
	// ManifestFile is the configuration document name, relative to the root.
	ManifestFile string `mapstructure:"manifest_file"`

	// Rename selects the rename primitive: auto, git or fs.
	Rename string `mapstructure:"rename"`

	// AssumeYes answers yes to every confirmation.
	AssumeYes bool `mapstructure:"assume_yes"`

	// TemplatesDir overrides the embedded scaffold templates file-by-file.
	TemplatesDir string `mapstructure:"templates_dir"`

	Backup  BackupSettings  `mapstructure:"backup"`
	Journal JournalSettings `mapstructure:"journal"`
}

// BackupSettings controls backups taken before destructive steps.
type BackupSettings struct {
	Enabled bool `mapstructure:"enabled"`

	// Dir is the parent directory for backups; empty means the system
	// temporary directory.
	Dir string `mapstructure:"dir"`
}

// JournalSettings controls the operation journal.
type JournalSettings struct {
	Enabled bool `mapstructure:"enabled"`

	// Path is the sqlite database path, relative to the project root unless
	// absolute.
	Path string `mapstructure:"path"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		ManifestFile: "Mo.yaml",
		Rename:       "auto",
		Backup:       BackupSettings{Enabled: true},
		Journal:      JournalSettings{Enabled: true, Path: filepath.Join(Dir, "journal.db")},
	}
}

// Load merges defaults, the project settings file under root and the
// environment.
func Load(root string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("MO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(root, Dir, SettingsFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat settings %s: %w", path, err)
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// JournalPath resolves the journal path against root.
func (s *Settings) JournalPath(root string) string {
	if filepath.IsAbs(s.Journal.Path) {
		return s.Journal.Path
	}
	return filepath.Join(root, s.Journal.Path)
}

// ManifestPath resolves the manifest path against root.
func (s *Settings) ManifestPath(root string) string {
	if filepath.IsAbs(s.ManifestFile) {
		return s.ManifestFile
	}
	return filepath.Join(root, s.ManifestFile)
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("manifest_file", d.ManifestFile)
	v.SetDefault("rename", d.Rename)
	v.SetDefault("assume_yes", d.AssumeYes)
	v.SetDefault("templates_dir", d.TemplatesDir)
	v.SetDefault("backup.enabled", d.Backup.Enabled)
	v.SetDefault("backup.dir", d.Backup.Dir)
	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.path", d.Journal.Path)
}
