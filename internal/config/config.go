package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultBusName is the well-known name the portal backend owns
const DefaultBusName = "org.freedesktop.impl.portal.desktop.switchshell"

// Config holds application configuration
type Config struct {
	// Data directory
	DataDir string `json:"data_dir"`

	// Locale settings
	Language     string `json:"language"`       // empty = $LANG
	WeekStartsOn int    `json:"week_starts_on"` // -1 = from locale, 0=Sunday..6=Saturday

	// Calendar settings
	ShowWeekNumbers bool   `json:"show_week_numbers"`
	EventsFile      string `json:"events_file"` // local .ics file for event markers

	// CalDAV event markers
	CalDAVURL      string `json:"caldav_url"`
	CalDAVUsername string `json:"caldav_username"`
	CalDAVPassword string `json:"caldav_password"`
	CalDAVToken    string `json:"caldav_token"` // bearer token, wins over basic auth

	// GNOME Online Accounts identity (or account object path) to read events from
	GOAAccount string `json:"goa_account"`

	// Portal settings
	BusName           string `json:"bus_name"`
	ReplaceExisting   bool   `json:"replace_existing"`
	RequireFocusedApp bool   `json:"require_focused_app"`
	RecordHistory     bool   `json:"record_history"`

	// Window state
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		DataDir:           getDefaultDataDir(),
		WeekStartsOn:      -1,
		ShowWeekNumbers:   false,
		BusName:           DefaultBusName,
		ReplaceExisting:   true,
		RequireFocusedApp: true,
		RecordHistory:     true,
		WindowWidth:       360,
		WindowHeight:      380,
	}
}

// Load loads config from the default location
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads config from configPath, writing defaults if it does not exist
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.SaveTo(configPath)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to the default location
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo saves config to configPath
func (c *Config) SaveTo(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// DatabasePath returns the path to the SQLite database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "switchshell.db")
}

// WeekNumbersEnabled reports whether the calendar shows week numbers
func (c *Config) WeekNumbersEnabled() bool {
	return c.ShowWeekNumbers
}

// Path returns the path to the config file
func Path() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "switchshell", "config.json")
}

// getDefaultDataDir returns the default data directory
func getDefaultDataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}
	return filepath.Join(dataDir, "switchshell")
}
