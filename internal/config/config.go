// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/huddle-tui/internal/util"
)

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete huddle configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Identity used by the local auth provider
	User UserConfig `toml:"user" json:"user"`

	// Document store
	Store StoreConfig `toml:"store" json:"store"`

	// AI side panel
	Assistant AssistantConfig `toml:"assistant" json:"assistant"`

	// Terminal UI
	UI UIConfig `toml:"ui" json:"ui"`

	// Log file
	Log LogConfig `toml:"log" json:"log"`
}

// UserConfig identifies the local user.
type UserConfig struct {
	Email       string `toml:"email" json:"email"`
	DisplayName string `toml:"display_name" json:"display_name"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	// Driver is "sqlite" or "memory"
	Driver string `toml:"driver" json:"driver"`

	// Path of the SQLite database file
	Path string `toml:"path" json:"path"`

	// MessageLimit is the number of messages fetched per channel
	MessageLimit int `toml:"message_limit" json:"message_limit"`
}

// AssistantConfig configures the inference client behind the side panel.
type AssistantConfig struct {
	Enabled           bool   `toml:"enabled" json:"enabled"`
	OllamaURL         string `toml:"ollama_url" json:"ollama_url"`
	Model             string `toml:"model" json:"model"`
	MaxTokens         int    `toml:"max_tokens" json:"max_tokens"`
	TimeoutSecs       int    `toml:"timeout_secs" json:"timeout_secs"`
	RequestsPerMinute int    `toml:"requests_per_minute" json:"requests_per_minute"`
	HistoryTurns      int    `toml:"history_turns" json:"history_turns"`
	SystemPrompt      string `toml:"system_prompt" json:"system_prompt"`
}

// UIConfig contains display preferences. These are hot-reloaded.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme" json:"theme"`

	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`

	// GroupFullHistory groups filtered messages against the unfiltered list
	GroupFullHistory bool `toml:"group_full_history" json:"group_full_history"`

	// PollIntervalSecs is how often the open channel is reloaded (0 disables)
	PollIntervalSecs int `toml:"poll_interval_secs" json:"poll_interval_secs"`

	SidebarWidth int  `toml:"sidebar_width" json:"sidebar_width"`
	CompactMode  bool `toml:"compact_mode" json:"compact_mode"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" json:"level"`
	Path  string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".huddle"
	}
	return &Config{
		Version: CurrentVersion,
		Store: StoreConfig{
			Driver:       "sqlite",
			Path:         filepath.Join(dir, "huddle.db"),
			MessageLimit: 100,
		},
		Assistant: AssistantConfig{
			Enabled:           true,
			OllamaURL:         "http://127.0.0.1:11434",
			Model:             "llama3.2",
			MaxTokens:         512,
			TimeoutSecs:       60,
			RequestsPerMinute: 20,
			HistoryTurns:      12,
		},
		UI: UIConfig{
			Theme:            "dark",
			ShowTimestamps:   true,
			PollIntervalSecs: 15,
			SidebarWidth:     24,
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(dir, "huddle.log"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the huddle configuration directory. HUDDLE_HOME overrides
// the default of ~/.huddle.
func ConfigDir() (string, error) {
	if dir := os.Getenv("HUDDLE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".huddle"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// A file that exists but cannot be decoded is skipped; the returned config is
// still usable and the error says which file was ignored.
func Load() (*Config, error) {
	var loadErr error

	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			loadErr = errors.Join(loadErr, err)
			continue
		}
		return cfg, loadErr
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Values missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# huddle configuration file")
	fmt.Fprintln(&buf, "# Generated by huddle - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file atomically.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validDrivers   = map[string]bool{"sqlite": true, "memory": true}
	validThemes    = map[string]bool{"dark": true, "light": true, "auto": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate reports settings that cannot be corrected automatically. Numeric
// ranges are clamped by SetDefaults rather than rejected.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !validDrivers[strings.ToLower(c.Store.Driver)] {
		errs = append(errs, ValidationError{
			Field:   "store.driver",
			Message: fmt.Sprintf("invalid driver '%s', must be one of: sqlite, memory", c.Store.Driver),
		})
	}
	if strings.EqualFold(c.Store.Driver, "sqlite") && strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, ValidationError{Field: "store.path", Message: "path is required for the sqlite driver"})
	}

	if email := strings.TrimSpace(c.User.Email); email != "" && !strings.Contains(email, "@") {
		errs = append(errs, ValidationError{Field: "user.email", Message: fmt.Sprintf("invalid email '%s'", email)})
	}

	if err := validateURL(c.Assistant.OllamaURL); err != nil {
		errs = append(errs, ValidationError{Field: "assistant.ollama_url", Message: err.Error()})
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme '%s', must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL has no host")
	}
	return nil
}

// SetDefaults fills empty values and clamps numbers into their valid ranges.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	c.Store.Path = ExpandPath(c.Store.Path)
	c.Store.MessageLimit = clampOrDefault(c.Store.MessageLimit, 1, 1000, d.Store.MessageLimit)

	c.Assistant.OllamaURL = strings.TrimRight(strings.TrimSpace(c.Assistant.OllamaURL), "/")
	if c.Assistant.OllamaURL == "" {
		c.Assistant.OllamaURL = d.Assistant.OllamaURL
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = d.Assistant.Model
	}
	c.Assistant.MaxTokens = clampOrDefault(c.Assistant.MaxTokens, 16, 8192, d.Assistant.MaxTokens)
	c.Assistant.TimeoutSecs = clampOrDefault(c.Assistant.TimeoutSecs, 5, 600, d.Assistant.TimeoutSecs)
	c.Assistant.RequestsPerMinute = clamp(c.Assistant.RequestsPerMinute, 0, 600)
	c.Assistant.HistoryTurns = clamp(c.Assistant.HistoryTurns, 0, 100)

	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.PollIntervalSecs != 0 {
		c.UI.PollIntervalSecs = clamp(c.UI.PollIntervalSecs, 2, 3600)
	}
	c.UI.SidebarWidth = clampOrDefault(c.UI.SidebarWidth, 16, 60, d.UI.SidebarWidth)

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Path == "" {
		c.Log.Path = d.Log.Path
	}
	c.Log.Path = ExpandPath(c.Log.Path)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampOrDefault(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	return clamp(v, lo, hi)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - HUDDLE_EMAIL: overrides user.email
//   - HUDDLE_DISPLAY_NAME: overrides user.display_name
//   - HUDDLE_STORE_PATH: overrides store.path
//   - HUDDLE_OLLAMA_URL: overrides assistant.ollama_url
//   - HUDDLE_MODEL: overrides assistant.model
//   - HUDDLE_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if email := os.Getenv("HUDDLE_EMAIL"); email != "" {
		c.User.Email = email
	}
	if name := os.Getenv("HUDDLE_DISPLAY_NAME"); name != "" {
		c.User.DisplayName = name
	}
	if path := os.Getenv("HUDDLE_STORE_PATH"); path != "" {
		c.Store.Path = path
	}
	if u := os.Getenv("HUDDLE_OLLAMA_URL"); u != "" {
		c.Assistant.OllamaURL = u
	}
	if model := os.Getenv("HUDDLE_MODEL"); model != "" {
		c.Assistant.Model = model
	}
	if level := os.Getenv("HUDDLE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent. Acronyms are matched case-insensitively by the caller.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.ToLower(strVal))
			if err != nil {
				boolVal = strings.EqualFold(strVal, "yes")
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("toml"), ",")[0]
			if name == "" || name == "-" {
				continue
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, prefix+name+".")
				continue
			}
			keys = append(keys, prefix+name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// String returns an indented JSON rendering for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
