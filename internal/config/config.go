package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Scan      ScanConfig      `mapstructure:"scan"`
	BlockList BlockListConfig `mapstructure:"blocklist"`
	Steam     SteamConfig     `mapstructure:"steam"`
	Epic      EpicConfig      `mapstructure:"epic"`
	Ubisoft   UbisoftConfig   `mapstructure:"ubisoft"`
	Paradox   ParadoxConfig   `mapstructure:"paradox"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ScanConfig holds discovery run behavior
type ScanConfig struct {
	BulkSelect     bool     `mapstructure:"bulk_select"`     // Select every resolved add-on of a freshly scanned program
	BlockProtected bool     `mapstructure:"block_protected"` // Skip programs protected by anti-cheat
	Platforms      []string `mapstructure:"platforms"`       // Empty = every supported platform
}

// BlockListConfig drives the anti-cheat block list
type BlockListConfig struct {
	Names       []string `mapstructure:"names"`       // Exact program names
	Directories []string `mapstructure:"directories"` // Sub-directory names that mark a protected install
	Exceptions  []string `mapstructure:"exceptions"`  // Program names exempt from the directory check
}

// SteamConfig holds Steam library and metadata endpoints
type SteamConfig struct {
	InstallPath string `mapstructure:"install_path"`
	StoreURL    string `mapstructure:"store_url"` // Primary: store appdetails API
	CmdURL      string `mapstructure:"cmd_url"`   // Secondary: steamcmd info API
}

// EpicConfig holds Epic launcher paths and the catalog endpoint
type EpicConfig struct {
	ManifestsPath string `mapstructure:"manifests_path"`
	GraphQLURL    string `mapstructure:"graphql_url"`
}

// UbisoftConfig lists install roots, one sub-directory per game
type UbisoftConfig struct {
	InstallPaths []string `mapstructure:"install_paths"`
}

// ParadoxConfig locates the Paradox launcher
type ParadoxConfig struct {
	InstallPath string `mapstructure:"install_path"`
}

// CacheConfig holds the local bbolt cache location
type CacheConfig struct {
	Path string `mapstructure:"path"` // Empty = memory only
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			BulkSelect:     true,
			BlockProtected: true,
		},
		BlockList: BlockListConfig{
			Names:       []string{"PAYDAY 3", "Call to Arms", "Destiny 2", "Dead by Daylight", "Black Desert"},
			Directories: []string{"EasyAntiCheat", "BattlEye"},
			Exceptions:  []string{"Arma 3"},
		},
		Steam: SteamConfig{
			InstallPath: defaultSteamPath(),
			StoreURL:    "https://store.steampowered.com/api/appdetails",
			CmdURL:      "https://api.steamcmd.net/v1/info",
		},
		Epic: EpicConfig{
			ManifestsPath: defaultEpicManifestsPath(),
			GraphQLURL:    "https://graphql.epicgames.com/graphql",
		},
		Paradox: ParadoxConfig{
			InstallPath: defaultParadoxPath(),
		},
		Cache: CacheConfig{
			Path: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dlcscan", "dlcscan.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "dlcscan", "dlcscan.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "dlcscan")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "dlcscan")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "dlcscan", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "dlcscan", "cache")
	}
}

func defaultSteamPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramFiles(x86)"), "Steam")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".steam", "steam")
	}
}

func defaultEpicManifestsPath() string {
	if runtime.GOOS != "windows" {
		return ""
	}
	return filepath.Join(os.Getenv("ProgramData"), "Epic", "EpicGamesLauncher", "Data", "Manifests")
}

func defaultParadoxPath() string {
	if runtime.GOOS != "windows" {
		return ""
	}
	return filepath.Join(os.Getenv("LOCALAPPDATA"), "Programs", "Paradox Interactive", "launcher")
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return Load(defaultConfigPath(), ".")
}

// Load reads config.yaml from the first of dirs that has one.
// A missing file is not an error; defaults apply.
func Load(dirs ...string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// Environment variable overrides, e.g. DLCSCAN_SCAN_BULK_SELECT.
	// AutomaticEnv only sees keys viper already knows, so register them all.
	v.SetEnvPrefix("DLCSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setKeys(v.SetDefault, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to config.yaml in the default config directory
func SaveConfig(cfg *Config) error {
	return SaveTo(defaultConfigPath(), cfg)
}

// SaveTo writes cfg to dir/config.yaml
func SaveTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	setKeys(v.Set, cfg)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setKeys passes every config field to set under its snake_case key
func setKeys(set func(key string, value any), cfg *Config) {
	set("scan.bulk_select", cfg.Scan.BulkSelect)
	set("scan.block_protected", cfg.Scan.BlockProtected)
	set("scan.platforms", cfg.Scan.Platforms)

	set("blocklist.names", cfg.BlockList.Names)
	set("blocklist.directories", cfg.BlockList.Directories)
	set("blocklist.exceptions", cfg.BlockList.Exceptions)

	set("steam.install_path", cfg.Steam.InstallPath)
	set("steam.store_url", cfg.Steam.StoreURL)
	set("steam.cmd_url", cfg.Steam.CmdURL)

	set("epic.manifests_path", cfg.Epic.ManifestsPath)
	set("epic.graphql_url", cfg.Epic.GraphQLURL)

	set("ubisoft.install_paths", cfg.Ubisoft.InstallPaths)
	set("paradox.install_path", cfg.Paradox.InstallPath)

	set("cache.path", cfg.Cache.Path)

	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
}
