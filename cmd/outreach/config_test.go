// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/outreach/pkg/types"
)

func resetViper(t *testing.T, file string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigFile(file)
	viper.SetEnvPrefix("OUTREACH")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()
	require.NoError(t, setDefaults(types.DefaultConfig()))
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outreach.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
	resetViper(t, path)

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), c)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outreach.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  model: gemini-2.5-pro
  timeout: 30s
search:
  defaults:
    niche: Dentists
store:
  backend: sqlite
`), 0o644))
	resetViper(t, path)
	t.Setenv("OUTREACH_SERVER_ADDR", ":9090")
	t.Setenv("OUTREACH_PROFILE_BUSINESS", "Acme Growth")

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", c.AI.Model)
	assert.Equal(t, 30*time.Second, c.AI.Timeout)
	assert.Equal(t, "Dentists", c.Search.Defaults.Niche)
	assert.Equal(t, "Marketing Agencies", c.Search.Defaults.Role, "unset fields keep defaults")
	assert.Equal(t, types.StoreSQLite, c.Store.Backend)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "Acme Growth", c.Profile.Business)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	resetViper(t, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := loadConfig()
	require.Error(t, err)
}

func TestRedact(t *testing.T) {
	c := types.DefaultConfig()
	c.AI.APIKey = "secret"
	c.Mail.Password = "hunter2"

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, redact(c)))
	assert.NotContains(t, buf.String(), "secret")
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), redacted)
	assert.Equal(t, "secret", c.AI.APIKey, "redact copies")
}
