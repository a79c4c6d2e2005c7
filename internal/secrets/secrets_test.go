// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/outreach/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "  gk_abc123  \n")
				writeFile(t, dir, SMTPPassword, "hunter2\n")
				return dir
			},
			want: map[string]string{
				GeminiAPIKey: "gk_abc123",
				SMTPPassword: "hunter2",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{GeminiAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, SMTPPassword, "pw")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{SMTPPassword: "pw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	core, logs := observer.New(zap.WarnLevel)
	got, err := Load(dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
	assert.Equal(t, 1, logs.FilterMessage("could not read secret").Len())
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "OUTREACH_TEST_FROM_FILE=file\nOUTREACH_TEST_PRESET=file\n")

	t.Setenv("OUTREACH_TEST_PRESET", "env")
	t.Setenv("OUTREACH_TEST_FROM_FILE", "")
	os.Unsetenv("OUTREACH_TEST_FROM_FILE")

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "file", os.Getenv("OUTREACH_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("OUTREACH_TEST_PRESET"), "existing variables win")
}

func TestApply(t *testing.T) {
	t.Run("secret file fills empty key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("API_KEY", "")
		cfg := types.DefaultConfig()
		Apply(&cfg, map[string]string{GeminiAPIKey: "from-file", SMTPPassword: "pw"})
		assert.Equal(t, "from-file", cfg.AI.APIKey)
		assert.Equal(t, "pw", cfg.Mail.Password)
	})

	t.Run("configured key wins", func(t *testing.T) {
		cfg := types.DefaultConfig()
		cfg.AI.APIKey = "configured"
		Apply(&cfg, map[string]string{GeminiAPIKey: "from-file"})
		assert.Equal(t, "configured", cfg.AI.APIKey)
	})

	t.Run("env fallback order", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("API_KEY", "legacy")
		cfg := types.DefaultConfig()
		Apply(&cfg, map[string]string{})
		assert.Equal(t, "legacy", cfg.AI.APIKey)

		t.Setenv("GEMINI_API_KEY", "gemini")
		cfg = types.DefaultConfig()
		Apply(&cfg, map[string]string{})
		assert.Equal(t, "gemini", cfg.AI.APIKey)
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
