package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL         = "http://localhost:5001/api"
	DefaultTimeout        = 10 * time.Second
	DefaultMemberCacheTTL = 5 * time.Minute
	DefaultView           = "boards"
)

// Config holds the unified application configuration
type Config struct {
	APIURL          string
	BoardID         string
	Timeout         time.Duration
	SerializeWrites bool
	MemberCacheTTL  time.Duration
	LogDir          string
	DefaultView     string
}

// Settings represents the config file structure. Durations are in seconds.
type Settings struct {
	APIURL          string `json:"api_url,omitempty"`
	BoardID         string `json:"board_id,omitempty"`
	Timeout         int    `json:"timeout,omitempty"`
	SerializeWrites bool   `json:"serialize_writes,omitempty"`
	MemberCacheTTL  int    `json:"member_cache_ttl,omitempty"`
	LogDir          string `json:"log_dir,omitempty"`
	DefaultView     string `json:"default_view,omitempty"`
}

// CLIFlags holds parsed CLI flags. Zero values mean "not given".
type CLIFlags struct {
	APIURL          string
	BoardID         string
	Timeout         time.Duration
	SerializeWrites bool
	LogDir          string
	View            string
}

var globalConfig *Config

// Load loads configuration with priority: CLI flags > env vars > config file > default
func Load(flags CLIFlags) (*Config, error) {
	cfg := &Config{
		APIURL:         DefaultAPIURL,
		Timeout:        DefaultTimeout,
		MemberCacheTTL: DefaultMemberCacheTTL,
		DefaultView:    DefaultView,
	}

	defaultLogDir, err := GetDefaultLogDir()
	if err != nil {
		return nil, err
	}
	cfg.LogDir = defaultLogDir

	// Priority 3: config file
	if configPath, err := getConfigPath(); err == nil {
		if fileConfig, err := loadConfigFile(configPath); err == nil {
			cfg.applySettings(fileConfig)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	// Priority 2: environment variables, topped up from a .env file
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Priority 1: CLI flags
	if flags.APIURL != "" {
		cfg.APIURL = flags.APIURL
	}
	if flags.BoardID != "" {
		cfg.BoardID = flags.BoardID
	}
	if flags.Timeout > 0 {
		cfg.Timeout = flags.Timeout
	}
	if flags.SerializeWrites {
		cfg.SerializeWrites = true
	}
	if flags.LogDir != "" {
		cfg.LogDir = expandPath(flags.LogDir)
	}
	if flags.View != "" {
		cfg.DefaultView = flags.View
	}

	if cfg.DefaultView != "boards" && cfg.DefaultView != "board" {
		return nil, fmt.Errorf("invalid default view %q (want boards or board)", cfg.DefaultView)
	}

	globalConfig = cfg
	return cfg, nil
}

func (c *Config) applySettings(s *Settings) {
	if s.APIURL != "" {
		c.APIURL = s.APIURL
	}
	if s.BoardID != "" {
		c.BoardID = s.BoardID
	}
	if s.Timeout > 0 {
		c.Timeout = time.Duration(s.Timeout) * time.Second
	}
	if s.SerializeWrites {
		c.SerializeWrites = true
	}
	if s.MemberCacheTTL > 0 {
		c.MemberCacheTTL = time.Duration(s.MemberCacheTTL) * time.Second
	}
	if s.LogDir != "" {
		c.LogDir = expandPath(s.LogDir)
	}
	if s.DefaultView != "" {
		c.DefaultView = s.DefaultView
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CORKBOARD_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("CORKBOARD_BOARD"); v != "" {
		c.BoardID = v
	}
	if v := os.Getenv("CORKBOARD_TIMEOUT"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid CORKBOARD_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("CORKBOARD_SERIALIZE_WRITES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CORKBOARD_SERIALIZE_WRITES: %w", err)
		}
		c.SerializeWrites = b
	}
	if v := os.Getenv("CORKBOARD_LOG_DIR"); v != "" {
		c.LogDir = expandPath(v)
	}
	return nil
}

// loadDotEnv fills unset variables from CORKBOARD_ENV_FILE or ./.env.
// A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv("CORKBOARD_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// parseSeconds accepts a plain number of seconds or a Go duration string
func parseSeconds(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be greater than zero")
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be greater than zero")
	}
	return d, nil
}

// Get returns the loaded config
func Get() *Config {
	return globalConfig
}

// GetDefaultLogDir returns the directory debug.log is written to by default
func GetDefaultLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "state", "corkboard"), nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "corkboard", "config.json"), nil
}

// loadConfigFile loads configuration from the settings file
func loadConfigFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// EnsureConfigFile creates the config file with defaults if it doesn't exist
func EnsureConfigFile() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	settings := Settings{
		APIURL:         DefaultAPIURL,
		Timeout:        int(DefaultTimeout / time.Second),
		MemberCacheTTL: int(DefaultMemberCacheTTL / time.Second),
		DefaultView:    DefaultView,
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// ParseCommaSeparated splits a comma-separated string into a slice
func ParseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
