package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ProfileFile is the optional per-user profile under the home directory.
const ProfileFile = ".stockctl.yaml"

// Settings are the resolved connection defaults.
// Precedence: flags, then STOCKCTL_* env, then the profile, then built-ins.
type Settings struct {
	Server  string        `yaml:"server"`
	Format  string        `yaml:"format"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultSettings are used when nothing else is configured.
func DefaultSettings() Settings {
	return Settings{
		Server:  "http://localhost:8080",
		Format:  "text",
		Timeout: 30 * time.Second,
	}
}

type envSettings struct {
	Server  string        `envconfig:"SERVER"`
	Format  string        `envconfig:"FORMAT"`
	Timeout time.Duration `envconfig:"TIMEOUT"`
	Profile string        `envconfig:"PROFILE"`
}

// DefaultProfilePath returns ~/.stockctl.yaml, or "" without a home dir.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ProfileFile)
}

// LoadSettings merges the profile at path and the STOCKCTL_* environment
// over the defaults. An empty path falls back to STOCKCTL_PROFILE and then
// to ~/.stockctl.yaml. A missing profile is not an error.
func LoadSettings(path string) (Settings, error) {
	var env envSettings
	if err := envconfig.Process("stockctl", &env); err != nil {
		return Settings{}, fmt.Errorf("read STOCKCTL environment: %w", err)
	}
	if path == "" {
		path = env.Profile
	}
	if path == "" {
		path = DefaultProfilePath()
	}

	settings := DefaultSettings()
	if path != "" {
		if err := mergeProfile(&settings, path); err != nil {
			return Settings{}, err
		}
	}

	if env.Server != "" {
		settings.Server = env.Server
	}
	if env.Format != "" {
		settings.Format = env.Format
	}
	if env.Timeout > 0 {
		settings.Timeout = env.Timeout
	}
	return settings, nil
}

func mergeProfile(settings *Settings, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read profile %s: %w", path, err)
	}
	var profile Settings
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}
	if profile.Server != "" {
		settings.Server = profile.Server
	}
	if profile.Format != "" {
		settings.Format = profile.Format
	}
	if profile.Timeout > 0 {
		settings.Timeout = profile.Timeout
	}
	return nil
}
