package cmd

import (
	"fmt"

	"github.com/bnema/vault-kv-cli/internal/adapters/kv/vault"
	profilesrender "github.com/bnema/vault-kv-cli/internal/adapters/render/profiles"
	tomlrepo "github.com/bnema/vault-kv-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/vault-kv-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/vault-kv-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/vault-kv-cli/internal/adapters/secrets/pass"
	"github.com/bnema/vault-kv-cli/internal/application"
	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/bnema/vault-kv-cli/internal/logging"
	"github.com/bnema/vault-kv-cli/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	secretsBackendChain = "chain"
	secretsBackendPass  = "pass"
	secretsBackendFile  = "file"
)

type app struct {
	service         *application.Service
	config          *viper.Viper
	logger          *zap.Logger
	profileRenderer func([]domain.Profile, profilesrender.RenderOptions) (string, error)
}

func (a *app) wire(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.GetString(logLevelKey),
		Format: cfg.GetString(logFormatKey),
	}, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return fmt.Errorf("wire profile repository: %w", err)
	}

	secrets, err := newSecretStore(cfg.GetString(secretsBackendKey), cfg.GetString(secretsDirKey), logger)
	if err != nil {
		return fmt.Errorf("wire secret store: %w", err)
	}

	a.config = cfg
	a.logger = logger
	a.service = application.NewService(repo, secrets, vault.NewFactory(nil, logger))
	a.profileRenderer = profilesrender.Render

	logger.Debug("wired application",
		zap.String("profiles", repo.Path()),
		zap.String("secrets_backend", cfg.GetString(secretsBackendKey)))
	return nil
}

func (a *app) profileID() domain.ProfileID {
	return domain.ProfileID(a.config.GetString(profileKey))
}

func newSecretStore(backend string, dir string, logger *zap.Logger) (ports.SecretStore, error) {
	switch backend {
	case secretsBackendChain, "":
		return chainstore.NewPassFirstWithFileFallback(dir, logger)
	case secretsBackendPass:
		return passstore.NewStore(logger), nil
	case secretsBackendFile:
		return filestore.NewStore(dir, logger), nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend %q (chain|pass|file)", backend)
	}
}
