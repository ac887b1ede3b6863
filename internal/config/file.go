package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the optional xlm config file. Values act as defaults for the
// corresponding launch flags; flags given on the command line win.
type File struct {
	Logging struct {
		// Level overrides the default "info" log level.
		Level string `yaml:"level"`
		// File overrides the default temp-dir log file path. Set to "-"
		// to disable file logging entirely.
		File string `yaml:"file"`
	} `yaml:"logging"`

	Launch struct {
		RepoOwner        string `yaml:"repo_owner"`
		RepoName         string `yaml:"repo_name"`
		ReleaseAsset     string `yaml:"release_asset"`
		CustomReleaseURL string `yaml:"custom_release_url"`
		AriaSource       string `yaml:"aria_source"`
		InstallDirectory string `yaml:"install_directory"`
	} `yaml:"launch"`
}

// DefaultFilePath returns the config file location:
// $XDG_CONFIG_HOME/xlm/config.yaml, falling back to ~/.config/xlm/config.yaml.
func DefaultFilePath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "xlm", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "xlm", "config.yaml"), nil
}

// LoadFile reads and parses the config file at path. A missing file is
// normal and returns an empty File.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return &f, nil
}
