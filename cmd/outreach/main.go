// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the outreach CLI. It runs grounded
// prospect searches from the terminal and serves the HTTP API.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	yaml "go.yaml.in/yaml/v3"

	"github.com/pdiddy/outreach/internal/logging"
	"github.com/pdiddy/outreach/internal/secrets"
	"github.com/pdiddy/outreach/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Loaded in PersistentPreRunE.
var (
	cfg    types.Config
	logger = zap.NewNop()
)

// rootCmd is the base command for the outreach CLI.
var rootCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Find prospects with grounded web search and draft cold emails",
	Long: `outreach finds prospective clients matching a role, niche and location
using a web-grounded Gemini search, turns the answer into structured leads,
and drafts personalized cold emails for them.

Use "search" for a one-shot run in the terminal and "serve" to expose the
same pipeline as an HTTP API for the browser front end.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := secrets.LoadEnv(envFile); err != nil {
			return err
		}

		c, err := loadConfig()
		if err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logging.New(c.Log, verbose)
		if err != nil {
			return err
		}
		logger = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		secrets.Apply(&c, s)

		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		cfg = c
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./outreach.yaml or ~/.config/outreach/outreach.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files (gemini-api-key, smtp-password)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("outreach")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "outreach"))
		}
	}

	viper.SetEnvPrefix("OUTREACH")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	if err := setDefaults(types.DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not register config defaults:", err)
	}
}

// loadConfig reads the config file, if any, and unmarshals the merged
// defaults, file and OUTREACH_* environment into a Config.
func loadConfig() (types.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// envReplacer maps nested keys to OUTREACH_SECTION_FIELD variables.
var envReplacer = strings.NewReplacer(".", "_")

// optionalKeys are omitted from the default YAML but must still be known
// to viper so the environment can set them.
var optionalKeys = []string{
	"ai.api_key",
	"ai.base_url",
	"mail.password",
	"profile.business",
}

// setDefaults registers every field of def as a viper default. Unmarshal
// only sees environment overrides for keys viper already knows.
func setDefaults(def types.Config) error {
	raw, err := yaml.Marshal(def)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return err
	}
	flatten("", tree, viper.SetDefault)
	for _, k := range optionalKeys {
		if !viper.IsSet(k) {
			viper.SetDefault(k, "")
		}
	}
	return nil
}

func flatten(prefix string, tree map[string]any, set func(string, any)) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, v)
	}
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
