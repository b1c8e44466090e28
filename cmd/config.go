package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tomlrepo "github.com/bnema/vault-kv-cli/internal/adapters/repo/toml"
	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/bnema/vault-kv-cli/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "VKV"

	secretsBackendKey = "secrets.backend"
	secretsDirKey     = "secrets.dir"
	logLevelKey       = "log.level"
	logFormatKey      = "log.format"
	profileKey        = "profile"
	tokenKey          = "token"
)

// loadConfig reads ~/.vkv/config.toml when present and layers VKV_* env
// vars and the root persistent flags over it.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, tomlrepo.ConfigDir)

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	defaults := logging.DefaultConfig()
	cfg.SetDefault(secretsBackendKey, secretsBackendChain)
	cfg.SetDefault(secretsDirKey, filepath.Join(configDir, "secrets"))
	cfg.SetDefault(logLevelKey, defaults.Level)
	cfg.SetDefault(logFormatKey, defaults.Format)
	cfg.SetDefault(profileKey, string(domain.DefaultProfileID))

	flags := cmd.Root().PersistentFlags()
	if err := cfg.BindPFlag(logLevelKey, flags.Lookup("log-level")); err != nil {
		return nil, fmt.Errorf("bind log-level flag: %w", err)
	}
	if err := cfg.BindPFlag(profileKey, flags.Lookup("profile")); err != nil {
		return nil, fmt.Errorf("bind profile flag: %w", err)
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}
