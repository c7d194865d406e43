// Package conf loads and holds the application configuration.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// LogConfig holds settings for a rotating log file.
type LogConfig struct {
	Enabled  bool   // true to enable this log
	Path     string // path to log file
	MaxSize  int64  // max log file size in bytes before rotation
	Rotation string // rotation policy: daily, weekly, size
}

// Log rotation policies.
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// Settings contains all runtime configuration for the platform.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name string    // name of this node, used to identify log sources
		Log  LogConfig // main logging configuration
	}

	WebServer struct {
		Debug   bool      // true to enable web server debug mode
		Enabled bool      // true to enable web server
		Port    string    // port for web server
		Log     LogConfig // logging configuration for web server
	}

	Output struct {
		SQLite struct {
			Enabled bool   // true to use the embedded SQLite store
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to use a MySQL store instead of SQLite
			Username string // MySQL database username
			Password string // MySQL database user password
			Database string // MySQL database name
			Host     string // MySQL database host
			Port     string // MySQL database port
		}
	}

	Ingest struct {
		CensusPath string // default path to the vessel census CSV
	}

	Archive struct {
		Root string // root of the read-only track archive tree
	}

	Uploads struct {
		PhotoDir string // directory for uploaded vessel photos
		FileDir  string // directory for uploaded vessel attachments
	}
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into the global Settings instance.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found, defaults apply.
	}

	return nil
}

// validateSettings rejects configurations the stores cannot work with.
func validateSettings(settings *Settings) error {
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return fmt.Errorf("no database output enabled, enable either sqlite or mysql")
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("sqlite output enabled but path is empty")
	}
	return nil
}

// Setting returns the global Settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", "fishtrack-go"),
	}, nil
}

// GetBasePath expands a possibly relative directory to an absolute one,
// creating it if needed.
func GetBasePath(path string) string {
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Printf("failed to create directory %s: %v", path, err)
	}
	return path
}
