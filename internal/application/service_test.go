package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tomlrepo "github.com/bnema/vault-kv-cli/internal/adapters/repo/toml"
	filestore "github.com/bnema/vault-kv-cli/internal/adapters/secrets/file"
	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/bnema/vault-kv-cli/internal/ports"
	"github.com/bnema/vault-kv-cli/internal/ports/mocks"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const prodURL = "http://host/v1/secret/app"

var prodProfile = domain.Profile{
	ID:       "prod",
	BaseURL:  prodURL,
	TokenRef: "vkv/profiles/prod/token",
	Timeout:  2 * time.Second,
}

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

// recordingFactory returns kv for every target and remembers the last one.
func recordingFactory(kv ports.KeyValueStore, got *domain.Target) ports.KeyValueStoreFactory {
	return func(target domain.Target) ports.KeyValueStore {
		*got = target
		return kv
	}
}

func unusedFactory(t *testing.T) ports.KeyValueStoreFactory {
	return func(domain.Target) ports.KeyValueStore {
		t.Fatal("store factory must not be called")
		return nil
	}
}

func TestServiceAddProfileStoresTokenThenProfile(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	secrets.EXPECT().Put(mockAnyContext(), "vkv/profiles/prod/token", "T").Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), prodProfile).Return(nil).Once()

	err := service.AddProfile(context.Background(), AddProfileCommand{
		ID:      "prod",
		BaseURL: prodURL,
		Token:   "T",
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
}

func TestServiceAddProfileWithoutTokenKeepsStoredToken(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	secrets.EXPECT().Get(mockAnyContext(), "vkv/profiles/prod/token").Return("T", nil).Once()
	repo.EXPECT().Save(mockAnyContext(), prodProfile).Return(nil).Once()

	err := service.AddProfile(context.Background(), AddProfileCommand{ID: "prod", BaseURL: prodURL, Timeout: 2 * time.Second})
	require.NoError(t, err)
}

func TestServiceAddProfileWithoutAnyTokenLeavesTokenRefEmpty(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	bare := prodProfile
	bare.TokenRef = ""

	secrets.EXPECT().Get(mockAnyContext(), "vkv/profiles/prod/token").
		Return("", fmt.Errorf("read secret: %w", domain.ErrSecretNotFound)).Once()
	repo.EXPECT().Save(mockAnyContext(), bare).Return(nil).Once()

	err := service.AddProfile(context.Background(), AddProfileCommand{ID: "prod", BaseURL: prodURL, Timeout: 2 * time.Second})
	require.NoError(t, err)
}

func TestServiceAddProfileWithoutTokenFailsWhenSecretStoreFails(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	storeErr := errors.New("gpg: decryption failed")
	secrets.EXPECT().Get(mockAnyContext(), "vkv/profiles/prod/token").Return("", storeErr).Once()

	err := service.AddProfile(context.Background(), AddProfileCommand{ID: "prod", BaseURL: prodURL})
	require.ErrorIs(t, err, storeErr)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestServiceAddProfileRejectsInvalidProfile(t *testing.T) {
	service := NewService(mocks.NewMockProfileRepository(t), mocks.NewMockSecretStore(t), unusedFactory(t))

	err := service.AddProfile(context.Background(), AddProfileCommand{ID: "prod", BaseURL: "vault:8200", Token: "T"})
	require.ErrorIs(t, err, domain.ErrInvalidProfile)
}

func TestServiceAddProfileRollsBackTokenWhenSaveFails(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	saveErr := errors.New("disk full")
	secrets.EXPECT().Put(mockAnyContext(), "vkv/profiles/prod/token", "T").Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr).Once()
	secrets.EXPECT().Delete(mockAnyContext(), "vkv/profiles/prod/token").Return(nil).Once()

	err := service.AddProfile(context.Background(), AddProfileCommand{ID: "prod", BaseURL: prodURL, Token: "T"})
	require.ErrorIs(t, err, saveErr)
	assert.ErrorContains(t, err, "save profile")
}

func TestServiceAddProfileReportsFailedRollback(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	saveErr := errors.New("disk full")
	rollbackErr := errors.New("pass locked")
	secrets.EXPECT().Put(mockAnyContext(), "vkv/profiles/prod/token", "T").Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr).Once()
	secrets.EXPECT().Delete(mockAnyContext(), "vkv/profiles/prod/token").Return(rollbackErr).Once()

	err := service.AddProfile(context.Background(), AddProfileCommand{ID: "prod", BaseURL: prodURL, Token: "T"})
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, rollbackErr)
	assert.ErrorContains(t, err, "rollback stored token")
}

func TestServiceRemoveProfileDeletesProfileAndToken(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	repo.EXPECT().GetByID(mockAnyContext(), domain.ProfileID("prod")).Return(prodProfile, nil).Once()
	repo.EXPECT().Delete(mockAnyContext(), domain.ProfileID("prod")).Return(nil).Once()
	secrets.EXPECT().Delete(mockAnyContext(), "vkv/profiles/prod/token").Return(nil).Once()

	require.NoError(t, service.RemoveProfile(context.Background(), "prod"))
}

func TestServiceRemoveProfileNotFound(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	service := NewService(repo, mocks.NewMockSecretStore(t), unusedFactory(t))

	repo.EXPECT().GetByID(mockAnyContext(), domain.ProfileID("prod")).Return(domain.Profile{}, domain.ErrProfileNotFound).Once()

	err := service.RemoveProfile(context.Background(), "prod")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestServiceSetStateUsesProfileTarget(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	kv := mocks.NewMockKeyValueStore(t)
	var target domain.Target
	service := NewService(repo, secrets, recordingFactory(kv, &target))

	repo.EXPECT().GetByID(mockAnyContext(), domain.ProfileID("prod")).Return(prodProfile, nil).Once()
	secrets.EXPECT().Get(mockAnyContext(), "vkv/profiles/prod/token").Return("T", nil).Once()
	kv.EXPECT().SetValue(mockAnyContext(), "member1", `{"k":"v"}`).Return(nil).Once()

	err := service.SetState(context.Background(), SetStateCommand{Profile: "prod", Name: "member1", Value: `{"k":"v"}`})
	require.NoError(t, err)
	assert.Equal(t, domain.Target{BaseURL: prodURL, Token: "T", Timeout: 2 * time.Second}, target)
}

func TestServiceSetStateReturnsStoreErrorUnwrapped(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	kv := mocks.NewMockKeyValueStore(t)
	var target domain.Target
	service := NewService(repo, secrets, recordingFactory(kv, &target))

	storeErr := errors.New("failed to persist with status code 500")
	repo.EXPECT().GetByID(mockAnyContext(), domain.ProfileID("prod")).Return(prodProfile, nil).Once()
	secrets.EXPECT().Get(mockAnyContext(), "vkv/profiles/prod/token").Return("T", nil).Once()
	kv.EXPECT().SetValue(mockAnyContext(), "member1", "v").Return(storeErr).Once()

	err := service.SetState(context.Background(), SetStateCommand{Profile: "prod", Name: "member1", Value: "v"})
	assert.Same(t, storeErr, err)
}

func TestServiceGetStateFoundAndAbsent(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	kv := mocks.NewMockKeyValueStore(t)
	var target domain.Target
	service := NewService(repo, secrets, recordingFactory(kv, &target))

	repo.EXPECT().GetByID(mockAnyContext(), domain.ProfileID("prod")).Return(prodProfile, nil).Twice()
	secrets.EXPECT().Get(mockAnyContext(), "vkv/profiles/prod/token").Return("T", nil).Twice()
	kv.EXPECT().GetValue(mockAnyContext(), "member1").Return(`{"k":"v"}`, true, nil).Once()
	kv.EXPECT().GetValue(mockAnyContext(), "member2").Return("", false, nil).Once()

	result, err := service.GetState(context.Background(), GetStateQuery{Profile: "prod", Name: "member1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateResult{Name: "member1", Found: true, State: `{"k":"v"}`}, result)

	result, err = service.GetState(context.Background(), GetStateQuery{Profile: "prod", Name: "member2"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateResult{Name: "member2"}, result)
}

func TestServiceGetStateWithoutStoredToken(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	service := NewService(repo, secrets, unusedFactory(t))

	repo.EXPECT().GetByID(mockAnyContext(), domain.ProfileID("prod")).Return(prodProfile, nil).Once()
	secrets.EXPECT().Get(mockAnyContext(), "vkv/profiles/prod/token").Return("", domain.ErrSecretNotFound).Once()

	_, err := service.GetState(context.Background(), GetStateQuery{Profile: "prod", Name: "member1"})
	require.ErrorIs(t, err, ErrNoToken)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestServiceGetStateUnknownProfile(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	service := NewService(repo, mocks.NewMockSecretStore(t), unusedFactory(t))

	repo.EXPECT().GetByID(mockAnyContext(), domain.ProfileID("staging")).Return(domain.Profile{}, domain.ErrProfileNotFound).Once()

	_, err := service.GetState(context.Background(), GetStateQuery{Profile: "staging", Name: "member1"})
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestServiceWithTOMLRepositoryAndFileSecrets(t *testing.T) {
	dir := t.TempDir()
	config := viper.New()
	config.Set(tomlrepo.ProfilesPathKey, filepath.Join(dir, "profiles.toml"))
	repo, err := tomlrepo.NewRepository(config)
	require.NoError(t, err)

	secrets := filestore.NewStore(filepath.Join(dir, "secrets"), nil)
	kv := mocks.NewMockKeyValueStore(t)
	var target domain.Target
	service := NewService(repo, secrets, recordingFactory(kv, &target))

	require.NoError(t, service.AddProfile(context.Background(), AddProfileCommand{ID: "prod", BaseURL: prodURL, Token: "T"}))

	kv.EXPECT().GetValue(mockAnyContext(), "member1").Return("v", true, nil).Once()
	result, err := service.GetState(context.Background(), GetStateQuery{Profile: "prod", Name: "member1"})
	require.NoError(t, err)
	assert.Equal(t, "v", result.State)
	assert.Equal(t, "T", target.Token)
	assert.Zero(t, target.Timeout)

	profiles, err := service.ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	require.NoError(t, service.RemoveProfile(context.Background(), "prod"))
	_, err = secrets.Get(context.Background(), "vkv/profiles/prod/token")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}
