package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment overrides (PROPADMIN_BACKEND, PROPADMIN_TOKEN, ...).
const EnvPrefix = "PROPADMIN"

type GlobalConfig struct {
	// Backend is the REST base URL, e.g. https://api.example.com/v1.
	Backend string `json:"backend,omitempty" envconfig:"BACKEND"`
	Token   string `json:"token,omitempty" envconfig:"TOKEN"`

	// DefaultView opens when the console starts without a view argument.
	DefaultView string `json:"defaultView,omitempty" envconfig:"VIEW"`

	LogPath  string `json:"logPath,omitempty" envconfig:"LOG"`
	LogLevel string `json:"logLevel,omitempty" envconfig:"LOG_LEVEL"`

	TimeoutSeconds int `json:"timeoutSeconds,omitempty" envconfig:"TIMEOUT_SECONDS"`

	// TUI holds optional user preferences for the interactive console.
	TUI *TUIConfig `json:"tui,omitempty" ignored:"true"`
}

type TUIConfig struct {
	// Profile is the appearance profile id (e.g. "default", "mono").
	Profile string `json:"profile,omitempty"`
}

func (c *GlobalConfig) Timeout() time.Duration {
	if c == nil || c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.propadmin).
	if v := strings.TrimSpace(os.Getenv("PROPADMIN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".propadmin"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFileConfig reads config.json only. A missing file is an empty config.
func LoadFileConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadConfig reads config.json and applies PROPADMIN_* environment overrides on top.
func LoadConfig() (*GlobalConfig, error) {
	cfg, err := LoadFileConfig()
	if err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config; errors here never block the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o600)
	}

	// The token lives here, so the file is user-only.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// ConfigKeys lists the keys accepted by SetConfigValue.
func ConfigKeys() []string {
	keys := []string{"backend", "token", "defaultView", "logPath", "logLevel", "timeoutSeconds", "tui.profile"}
	sort.Strings(keys)
	return keys
}

// SetConfigValue assigns one key; an empty value clears it.
func (c *GlobalConfig) SetConfigValue(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "backend":
		c.Backend = strings.TrimRight(value, "/")
	case "token":
		c.Token = value
	case "defaultView":
		c.DefaultView = value
	case "logPath":
		c.LogPath = value
	case "logLevel":
		c.LogLevel = value
	case "timeoutSeconds":
		if value == "" {
			c.TimeoutSeconds = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("timeoutSeconds: expected a non-negative integer, got %q", value)
		}
		c.TimeoutSeconds = n
	case "tui.profile":
		if c.TUI == nil {
			c.TUI = &TUIConfig{}
		}
		c.TUI.Profile = value
	default:
		return fmt.Errorf("unknown config key %q (expected one of: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return nil
}
