// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HUDDLE_HOME", dir)
	for _, key := range []string{
		"HUDDLE_EMAIL", "HUDDLE_DISPLAY_NAME", "HUDDLE_STORE_PATH",
		"HUDDLE_OLLAMA_URL", "HUDDLE_MODEL", "HUDDLE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestConfig_Default(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %q, want %q", cfg.Version, CurrentVersion)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Store.MessageLimit != 100 {
		t.Errorf("Store.MessageLimit = %d, want 100", cfg.Store.MessageLimit)
	}
	if cfg.Store.Path != filepath.Join(dir, "huddle.db") {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.UI.PollIntervalSecs != 15 {
		t.Errorf("UI.PollIntervalSecs = %d, want 15", cfg.UI.PollIntervalSecs)
	}
	if cfg.UI.GroupFullHistory {
		t.Error("UI.GroupFullHistory should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Assistant.Model != "llama3.2" {
		t.Errorf("Assistant.Model = %q", cfg.Assistant.Model)
	}
}

func TestLoad_TOML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), `
[user]
email = "ada@example.com"
display_name = "Ada"

[store]
driver = "memory"
message_limit = 50

[ui]
theme = "light"
group_full_history = true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.User.Email != "ada@example.com" || cfg.User.DisplayName != "Ada" {
		t.Errorf("User = %+v", cfg.User)
	}
	if cfg.Store.Driver != "memory" || cfg.Store.MessageLimit != 50 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.UI.Theme != "light" || !cfg.UI.GroupFullHistory {
		t.Errorf("UI = %+v", cfg.UI)
	}
	// Unset values keep defaults.
	if cfg.Assistant.MaxTokens != 512 {
		t.Errorf("Assistant.MaxTokens = %d, want default 512", cfg.Assistant.MaxTokens)
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.json"), `{"user": {"email": "json@example.com"}}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.User.Email != "json@example.com" {
		t.Errorf("User.Email = %q", cfg.User.Email)
	}
}

func TestLoad_BrokenTOMLFallsBack(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), "this is = = not toml")
	writeFile(t, filepath.Join(dir, "config.json"), `{"user": {"email": "json@example.com"}}`)

	cfg, err := Load()
	if err == nil {
		t.Error("Load() should report the broken TOML file")
	}
	if cfg == nil || cfg.User.Email != "json@example.com" {
		t.Fatalf("Load() = %+v, want JSON fallback", cfg)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HUDDLE_EMAIL", "env@example.com")
	t.Setenv("HUDDLE_DISPLAY_NAME", "Env")
	t.Setenv("HUDDLE_STORE_PATH", "/tmp/env.db")
	t.Setenv("HUDDLE_OLLAMA_URL", "http://gpu-box:11434")
	t.Setenv("HUDDLE_MODEL", "qwen2.5")
	t.Setenv("HUDDLE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	checks := map[string][2]string{
		"user.email":           {cfg.User.Email, "env@example.com"},
		"user.display_name":    {cfg.User.DisplayName, "Env"},
		"store.path":           {cfg.Store.Path, "/tmp/env.db"},
		"assistant.ollama_url": {cfg.Assistant.OllamaURL, "http://gpu-box:11434"},
		"assistant.model":      {cfg.Assistant.Model, "qwen2.5"},
		"log.level":            {cfg.Log.Level, "debug"},
	}
	for key, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", key, c[0], c[1])
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad driver", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
		{"bad url scheme", func(c *Config) { c.Assistant.OllamaURL = "ftp://host" }, "assistant.ollama_url"},
		{"url without host", func(c *Config) { c.Assistant.OllamaURL = "http://" }, "assistant.ollama_url"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad email", func(c *Config) { c.User.Email = "nobody" }, "user.email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Errorf("Validate() error type = %T, want ValidateErrors", err)
			}
		})
	}
}

func TestSetDefaults_Clamps(t *testing.T) {
	cfg := &Config{}
	cfg.Store.MessageLimit = 5000
	cfg.Assistant.MaxTokens = 1
	cfg.UI.PollIntervalSecs = 1
	cfg.UI.SidebarWidth = 500
	cfg.Assistant.RequestsPerMinute = -3
	cfg.SetDefaults()

	if cfg.Store.MessageLimit != 1000 {
		t.Errorf("MessageLimit = %d, want 1000", cfg.Store.MessageLimit)
	}
	if cfg.Assistant.MaxTokens != 16 {
		t.Errorf("MaxTokens = %d, want 16", cfg.Assistant.MaxTokens)
	}
	if cfg.UI.PollIntervalSecs != 2 {
		t.Errorf("PollIntervalSecs = %d, want 2", cfg.UI.PollIntervalSecs)
	}
	if cfg.UI.SidebarWidth != 60 {
		t.Errorf("SidebarWidth = %d, want 60", cfg.UI.SidebarWidth)
	}
	if cfg.Assistant.RequestsPerMinute != 0 {
		t.Errorf("RequestsPerMinute = %d, want 0", cfg.Assistant.RequestsPerMinute)
	}
	if cfg.Store.Driver != "sqlite" || cfg.UI.Theme != "dark" || cfg.Log.Level != "info" {
		t.Errorf("empty fields not defaulted: %+v", cfg)
	}
}

func TestSetDefaults_PollZeroDisables(t *testing.T) {
	cfg := Default()
	cfg.UI.PollIntervalSecs = 0
	cfg.SetDefaults()
	if cfg.UI.PollIntervalSecs != 0 {
		t.Errorf("PollIntervalSecs = %d, want 0 (disabled)", cfg.UI.PollIntervalSecs)
	}
}

// =============================================================================
// SAVE AND DOT NOTATION
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := Default()
	cfg.User.Email = "save@example.com"
	cfg.UI.ShowTimestamps = false
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.User.Email != "save@example.com" || loaded.UI.ShowTimestamps {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("ui.theme", "light"); err != nil {
		t.Fatalf("Set(ui.theme) error = %v", err)
	}
	if err := cfg.Set("store.message_limit", "42"); err != nil {
		t.Fatalf("Set(store.message_limit) error = %v", err)
	}
	if err := cfg.Set("ui.group_full_history", "true"); err != nil {
		t.Fatalf("Set(ui.group_full_history) error = %v", err)
	}
	if err := cfg.Set("assistant.ollama_url", "http://other:11434"); err != nil {
		t.Fatalf("Set(assistant.ollama_url) error = %v", err)
	}

	if v, _ := cfg.Get("ui.theme"); v != "light" {
		t.Errorf("Get(ui.theme) = %v, want light", v)
	}
	if cfg.Store.MessageLimit != 42 {
		t.Errorf("MessageLimit = %d, want 42", cfg.Store.MessageLimit)
	}
	if !cfg.UI.GroupFullHistory {
		t.Error("GroupFullHistory not set")
	}
	if cfg.Assistant.OllamaURL != "http://other:11434" {
		t.Errorf("OllamaURL = %q", cfg.Assistant.OllamaURL)
	}

	for _, key := range []string{"nope", "ui.nope", "ui", "ui.theme.deep", ""} {
		if _, err := cfg.Get(key); err == nil {
			t.Errorf("Get(%q) should fail", key)
		}
	}
	if err := cfg.Set("store.message_limit", "many"); err == nil {
		t.Error("Set with a non-numeric value should fail")
	}
}

func TestGetAllKeys(t *testing.T) {
	keys := GetAllKeys()
	cfg := Default()
	for _, key := range keys {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
	want := []string{"user.email", "store.driver", "assistant.max_tokens", "ui.poll_interval_secs", "log.level"}
	joined := strings.Join(keys, ",")
	for _, k := range want {
		if !strings.Contains(joined, k) {
			t.Errorf("GetAllKeys() missing %q", k)
		}
	}
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[ui]\ntheme = \"dark\"\n")

	changes := make(chan *Config, 4)
	w, err := Watch(path, 20*time.Millisecond, func(cfg *Config, err error) {
		if err == nil {
			changes <- cfg
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	writeFile(t, path, "[ui]\ntheme = \"light\"\n")

	select {
	case cfg := <-changes:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q, want light", cfg.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "")

	called := make(chan struct{}, 1)
	w, err := Watch(path, 10*time.Millisecond, func(*Config, error) {
		called <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.txt"), "x")

	select {
	case <-called:
		t.Error("onChange ran for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
