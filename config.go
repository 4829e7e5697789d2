package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
)

// AppConfig holds all persistent user settings.
type AppConfig struct {
	Name            string         `json:"name" env:"LAUNCHSHELL_NAME"`
	LogLevel        string         `json:"logLevel" env:"LAUNCHSHELL_LOG_LEVEL"`
	WindowWidth     int            `json:"windowWidth"`
	WindowHeight    int            `json:"windowHeight"`
	PreviewEnabled  bool           `json:"previewEnabled" env:"LAUNCHSHELL_PREVIEW"`
	PreviewPort     int            `json:"previewPort" env:"LAUNCHSHELL_PREVIEW_PORT"`
	PreviewPasscode string         `json:"previewPasscode,omitempty"` // bcrypt hash, empty = open access
	UpdateFromLAN   *bool          `json:"updateFromLan"`             // nil = true (default on)
	Splash          SplashSettings `json:"splash"`
}

// IsUpdateFromLAN returns whether LAN peers are polled for updates (default true).
func (c *AppConfig) IsUpdateFromLAN() bool {
	return c.UpdateFromLAN == nil || *c.UpdateFromLAN
}

var (
	appDataDir     string
	appDataDirOnce sync.Once
)

// DefaultConfig returns config with default values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Name:         AppName,
		LogLevel:     "error",
		WindowWidth:  1100,
		WindowHeight: 720,
		PreviewPort:  8090,
	}
}

// AppDataDir returns the path to ~/.launchshell/, creating it if needed.
// LAUNCHSHELL_DATA_DIR relocates it, which portable installs use.
func AppDataDir() string {
	appDataDirOnce.Do(func() {
		if dir := os.Getenv("LAUNCHSHELL_DATA_DIR"); dir != "" {
			appDataDir = dir
			os.MkdirAll(appDataDir, 0755)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			// Fallback to exe directory
			if exe, err2 := os.Executable(); err2 == nil {
				appDataDir = filepath.Dir(exe)
			} else {
				appDataDir = "."
			}
			return
		}
		appDataDir = filepath.Join(home, ".launchshell")
		os.MkdirAll(appDataDir, 0755)
	})
	return appDataDir
}

// DataPath returns the full path for a file inside the data directory.
func DataPath(elem ...string) string {
	parts := append([]string{AppDataDir()}, elem...)
	return filepath.Join(parts...)
}

// SplashDir returns the user splash view directory.
func SplashDir() string {
	return DataPath("splash")
}

// configPath returns the config file path.
func configPath() string {
	return DataPath("config.json")
}

// LoadConfig reads config from ~/.launchshell/config.json, applying
// environment overrides on top. Returns default config if the file doesn't
// exist.
func LoadConfig() *AppConfig {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		applyEnvOverrides(cfg)
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		fmt.Printf("配置文件解析失败，使用默认配置: %v\n", err)
		cfg = DefaultConfig()
		applyEnvOverrides(cfg)
		return cfg
	}

	// Ensure window size has valid defaults
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 1100
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 720
	}
	if cfg.PreviewPort <= 0 || cfg.PreviewPort > 65535 {
		cfg.PreviewPort = 8090
	}

	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides lets LAUNCHSHELL_* variables win over the file, so QA can
// flip settings per run without editing the config.
func applyEnvOverrides(cfg *AppConfig) {
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("环境变量解析失败: %v\n", err)
	}
}

// SaveConfig writes the config to ~/.launchshell/config.json.
func SaveConfig(cfg *AppConfig) error {
	os.MkdirAll(AppDataDir(), 0755)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(), data, 0644)
}
