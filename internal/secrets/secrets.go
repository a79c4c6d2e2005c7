// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files
// and from .env files. Each file in the directory holds one secret: the
// filename is the key name and the trimmed contents are the value.
//
// Recognized key files: gemini-api-key, smtp-password.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pdiddy/outreach/pkg/types"
)

// Key file names.
const (
	GeminiAPIKey = "gemini-api-key"
	SMTPPassword = "smtp-password"
)

// APIKeyEnvVars are checked in order when no key is configured.
var APIKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY"}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no arguments it reads ".env".
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Apply fills credentials in cfg that are still empty, first from the
// secret files then from the API key environment variables.
func Apply(cfg *types.Config, secrets map[string]string) {
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = secrets[GeminiAPIKey]
	}
	if cfg.AI.APIKey == "" {
		for _, name := range APIKeyEnvVars {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				cfg.AI.APIKey = v
				break
			}
		}
	}
	if cfg.Mail.Password == "" {
		cfg.Mail.Password = secrets[SMTPPassword]
	}
}
