// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/huddle-tui/internal/auth"
	"github.com/jeranaias/huddle-tui/internal/config"
	"github.com/jeranaias/huddle-tui/internal/conversation"
)

// =============================================================================
// HELPERS
// =============================================================================

// writeConfig creates a config file backed by a SQLite store in a temp dir
// and points HUDDLE_HOME there.
func writeConfig(t *testing.T, email string, assistant bool) (string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HUDDLE_HOME", dir)
	t.Setenv("HUDDLE_EMAIL", "")
	t.Setenv("HUDDLE_STORE_PATH", "")

	content := fmt.Sprintf(`[user]
email = %q
display_name = "Ada"

[store]
driver = "sqlite"
path = %q

[assistant]
enabled = %t

[log]
path = %q
`, email, filepath.Join(dir, "huddle.db"), assistant, filepath.Join(dir, "huddle.log"))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path, dir
}

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type channelsResponse struct {
	Success bool            `json:"success"`
	Data    []WorkspaceData `json:"data"`
}

// =============================================================================
// TESTS
// =============================================================================

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "huddle "+Version)

	out, err = execute(t, "", "version", "--json")
	require.NoError(t, err)
	var resp struct {
		Success bool        `json:"success"`
		Data    VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, Version, resp.Data.Version)
}

func TestChannelsBootstrapsGeneral(t *testing.T) {
	cfgPath, _ := writeConfig(t, "ada@example.com", false)

	out, err := execute(t, "", "--config", cfgPath, "channels", "--json")
	require.NoError(t, err)

	var resp channelsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "General", resp.Data[0].Name)
	assert.True(t, resp.Data[0].Active)
	require.Len(t, resp.Data[0].Channels, 1)
	assert.Equal(t, "general", resp.Data[0].Channels[0].Name)

	// A second run finds the existing workspace instead of creating another.
	out, err = execute(t, "", "--config", cfgPath, "channels", "--json")
	require.NoError(t, err)
	resp = channelsResponse{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data, 1)

	out, err = execute(t, "", "--config", cfgPath, "channels")
	require.NoError(t, err)
	assert.Contains(t, out, "General *")
	assert.Contains(t, out, "#general")
}

func TestSendThenExport(t *testing.T) {
	cfgPath, dir := writeConfig(t, "ada@example.com", false)

	out, err := execute(t, "", "--config", cfgPath, "send", "#general", "hello", "team")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent to #general in General")

	_, err = execute(t, "from a pipe\n", "--config", cfgPath, "send", "General")
	require.NoError(t, err)

	outDir := filepath.Join(dir, "exports")
	out, err = execute(t, "", "--config", cfgPath, "export", "general", "--format", "md", "--out", outDir, "--json")
	require.NoError(t, err)

	var resp struct {
		Success bool       `json:"success"`
		Data    ExportData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.Messages)
	assert.Equal(t, "md", resp.Data.Format)

	data, err := os.ReadFile(resp.Data.Path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "hello team")
	assert.Contains(t, text, "from a pipe")
	assert.Less(t, strings.Index(text, "hello team"), strings.Index(text, "from a pipe"))
}

func TestSendErrors(t *testing.T) {
	cfgPath, _ := writeConfig(t, "ada@example.com", false)

	tests := []struct {
		name   string
		stdin  string
		args   []string
		target error
	}{
		{
			name:   "unknown channel",
			args:   []string{"send", "random", "hi"},
			target: ErrChannelMissing,
		},
		{
			name:   "unknown workspace",
			args:   []string{"send", "general", "hi", "--workspace", "Nowhere"},
			target: ErrWorkspaceMissing,
		},
		{
			name:   "blank body",
			stdin:  "   \n",
			args:   []string{"send", "general"},
			target: conversation.ErrEmptyMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, append([]string{"--config", cfgPath}, tt.args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestSendRequiresIdentity(t *testing.T) {
	cfgPath, _ := writeConfig(t, "", false)

	_, err := execute(t, "", "--config", cfgPath, "send", "general", "hi")
	assert.ErrorIs(t, err, auth.ErrNoIdentity)
}

func TestExportUnknownFormat(t *testing.T) {
	cfgPath, _ := writeConfig(t, "ada@example.com", false)

	_, err := execute(t, "", "--config", cfgPath, "export", "general", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestAskDisabled(t *testing.T) {
	cfgPath, _ := writeConfig(t, "ada@example.com", false)

	_, err := execute(t, "", "--config", cfgPath, "ask", "what", "is", "new")
	assert.ErrorIs(t, err, ErrAssistantDisabled)
}

func TestConfigCommands(t *testing.T) {
	cfgPath, _ := writeConfig(t, "ada@example.com", false)

	out, err := execute(t, "", "--config", cfgPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath, strings.TrimSpace(out))

	_, err = execute(t, "", "--config", cfgPath, "config", "set", "ui.theme", "light")
	require.NoError(t, err)

	out, err = execute(t, "", "--config", cfgPath, "config", "get", "ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "light", strings.TrimSpace(out))

	cfg, err := config.LoadFromPath(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "ada@example.com", cfg.User.Email)

	out, err = execute(t, "", "--config", cfgPath, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ui.theme = light")
	assert.Contains(t, out, "store.driver = sqlite")
}

func TestConfigSetRejects(t *testing.T) {
	cfgPath, _ := writeConfig(t, "ada@example.com", false)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "ui.colour", "red"},
		{"invalid theme", "ui.theme", "neon"},
		{"not a number", "ui.sidebar_width", "wide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", "--config", cfgPath, "config", "set", tt.key, tt.value)
			assert.Error(t, err)
		})
	}

	cfg, err := config.LoadFromPath(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HUDDLE_HOME", dir)

	_, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	_, err = execute(t, "", "config", "init")
	assert.Error(t, err)
}

func TestFindChannel(t *testing.T) {
	cfgPath, _ := writeConfig(t, "ada@example.com", false)
	cfg, err := config.LoadFromPath(cfgPath)
	require.NoError(t, err)

	s, err := openSession(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.signIn(t.Context())
	require.NoError(t, err)

	for _, key := range []string{"general", "#general", " General ", "#GENERAL"} {
		assert.NotNil(t, findChannel(s.nav.Channels(), key), key)
	}
	assert.Nil(t, findChannel(s.nav.Channels(), "random"))
	assert.NotNil(t, findWorkspace(s.nav.Workspaces(), "general"))
}

func TestOpenStoreDrivers(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "memory"
	store, err := openStore(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	cfg.Store.Driver = "postgres"
	_, err = openStore(cfg)
	assert.Error(t, err)
}
