package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME at a fresh directory and clears the env overrides
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"CORKBOARD_API_URL", "CORKBOARD_BOARD", "CORKBOARD_TIMEOUT", "CORKBOARD_SERIALIZE_WRITES", "CORKBOARD_LOG_DIR"} {
		t.Setenv(key, "")
	}
	t.Setenv("CORKBOARD_ENV_FILE", filepath.Join(home, "missing.env"))
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "corkboard")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Default(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default api url, got %q", cfg.APIURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Timeout)
	}
	if cfg.SerializeWrites {
		t.Error("serialized writes should be off by default")
	}
	if cfg.DefaultView != "boards" {
		t.Errorf("expected default view 'boards', got %q", cfg.DefaultView)
	}
	if want := filepath.Join(home, ".local", "state", "corkboard"); cfg.LogDir != want {
		t.Errorf("expected log dir %q, got %q", want, cfg.LogDir)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `{"api_url":"http://file/api","board_id":"b1","timeout":3,"serialize_writes":true,"member_cache_ttl":60,"log_dir":"~/logs"}`)

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://file/api" || cfg.BoardID != "b1" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Timeout != 3*time.Second || cfg.MemberCacheTTL != time.Minute {
		t.Errorf("unexpected durations: %v %v", cfg.Timeout, cfg.MemberCacheTTL)
	}
	if !cfg.SerializeWrites {
		t.Error("expected serialized writes from file")
	}
	if cfg.LogDir != filepath.Join(home, "logs") {
		t.Errorf("expected expanded log dir, got %q", cfg.LogDir)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `{not json`)

	if _, err := Load(CLIFlags{}); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestLoad_EnvVar(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `{"api_url":"http://file/api","board_id":"b1"}`)
	t.Setenv("CORKBOARD_API_URL", "http://env/api")
	t.Setenv("CORKBOARD_TIMEOUT", "1500ms")
	t.Setenv("CORKBOARD_SERIALIZE_WRITES", "true")

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "http://env/api" {
		t.Errorf("env should override file, got %q", cfg.APIURL)
	}
	if cfg.BoardID != "b1" {
		t.Errorf("file value should survive, got %q", cfg.BoardID)
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Errorf("expected 1.5s timeout, got %v", cfg.Timeout)
	}
	if !cfg.SerializeWrites {
		t.Error("expected serialized writes from env")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := map[string]string{
		"CORKBOARD_TIMEOUT":          "-3",
		"CORKBOARD_SERIALIZE_WRITES": "sometimes",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, value)
			if _, err := Load(CLIFlags{}); err == nil {
				t.Errorf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	envFile := filepath.Join(home, "corkboard.env")
	if err := os.WriteFile(envFile, []byte("CORKBOARD_API_URL=http://dotenv/api\nCORKBOARD_BOARD=b9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CORKBOARD_ENV_FILE", envFile)
	// Unset so the file may fill it; the explicit board id must win
	os.Unsetenv("CORKBOARD_API_URL")
	t.Setenv("CORKBOARD_BOARD", "from-env")

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://dotenv/api" {
		t.Errorf("expected api url from .env, got %q", cfg.APIURL)
	}
	if cfg.BoardID != "from-env" {
		t.Errorf("expected environment to beat .env, got %q", cfg.BoardID)
	}
}

func TestLoad_CLIFlags(t *testing.T) {
	isolate(t)
	t.Setenv("CORKBOARD_API_URL", "http://env/api")
	t.Setenv("CORKBOARD_BOARD", "env-board")

	cfg, err := Load(CLIFlags{
		APIURL:  "http://cli/api",
		BoardID: "cli-board",
		Timeout: 2 * time.Second,
		View:    "board",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// CLI flags should override env vars
	if cfg.APIURL != "http://cli/api" || cfg.BoardID != "cli-board" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Timeout != 2*time.Second || cfg.DefaultView != "board" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if Get() != cfg {
		t.Error("Get should return the last loaded config")
	}
}

func TestLoad_InvalidView(t *testing.T) {
	isolate(t)
	if _, err := Load(CLIFlags{View: "calendar"}); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestEnsureConfigFile(t *testing.T) {
	home := isolate(t)

	if err := EnsureConfigFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(home, ".config", "corkboard", "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// Existing files are left alone
	if err := os.WriteFile(path, []byte(`{"board_id":"keep"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureConfigFile(); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BoardID != "keep" {
		t.Errorf("existing config overwritten, board id %q", cfg.BoardID)
	}
}

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"bug", []string{"bug"}},
		{"bug, feature ,,design", []string{"bug", "feature", "design"}},
	}

	for _, tt := range tests {
		result := ParseCommaSeparated(tt.input)
		if len(result) != len(tt.expected) {
			t.Errorf("ParseCommaSeparated(%q) = %v, want %v", tt.input, result, tt.expected)
			continue
		}
		for i := range result {
			if result[i] != tt.expected[i] {
				t.Errorf("ParseCommaSeparated(%q)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
			}
		}
	}
}
