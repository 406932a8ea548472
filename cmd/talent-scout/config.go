// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/talent-scout/internal/secrets"
	"github.com/pdiddy/talent-scout/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration a run would use: the defaults, overridden
by the config file, then by TALENT_SCOUT_* environment variables, then by
.secrets/ files. API keys are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := cfg
		shown.AI.APIKey = mask(shown.AI.APIKey)
		shown.Search.SemanticScholarAPIKey = mask(shown.Search.SemanticScholarAPIKey)
		out := cmd.OutOrStdout()
		if names := loadedSecrets.Names(); len(names) > 0 {
			fmt.Fprintf(out, "# secrets loaded from .secrets/: %s\n", strings.Join(names, ", "))
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(shown)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// loadConfig layers the config file and environment over DefaultConfig.
// The defaults are fed to viper as a YAML document so every key is known
// to AutomaticEnv.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	defaults, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return types.Config{}, fmt.Errorf("encoding defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return types.Config{}, fmt.Errorf("reading defaults: %w", err)
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("talent-scout")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "talent-scout"))
		}
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		logger.Info("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	v.SetEnvPrefix("TALENT_SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	c := types.DefaultConfig()
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// applySecrets fills keys and endpoints the configuration leaves empty or
// at their defaults.
func applySecrets(c types.Config, s secrets.Secrets) types.Config {
	switch c.AI.Provider {
	case types.ProviderAnthropic:
		c.AI.APIKey = s.Resolve(c.AI.APIKey, secrets.AnthropicAPIKey)
	case types.ProviderOpenAI:
		c.AI.APIKey = s.Resolve(c.AI.APIKey, secrets.OpenAIAPIKey)
	}
	c.Search.SemanticScholarAPIKey = s.Resolve(c.Search.SemanticScholarAPIKey, secrets.SemanticScholarAPIKey)
	if c.Search.SearXNGURL == types.DefaultConfig().Search.SearXNGURL {
		c.Search.SearXNGURL = s.Resolve("", secrets.SearXNGURL)
		if c.Search.SearXNGURL == "" {
			c.Search.SearXNGURL = types.DefaultConfig().Search.SearXNGURL
		}
	}
	return c
}

func mask(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
