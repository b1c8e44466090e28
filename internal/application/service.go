package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/bnema/vault-kv-cli/internal/ports"
)

var ErrNoToken = errors.New("profile has no token")

type Service struct {
	profiles ports.ProfileRepository
	secrets  ports.SecretStore
	open     ports.KeyValueStoreFactory
}

func NewService(profiles ports.ProfileRepository, secrets ports.SecretStore, open ports.KeyValueStoreFactory) *Service {
	return &Service{
		profiles: profiles,
		secrets:  secrets,
		open:     open,
	}
}

func (s *Service) AddProfile(ctx context.Context, cmd AddProfileCommand) error {
	profile := domain.Profile{
		ID:       cmd.ID,
		BaseURL:  cmd.BaseURL,
		TokenRef: domain.TokenSecretKey(cmd.ID),
		Timeout:  cmd.Timeout,
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	if cmd.Token == "" {
		if _, err := s.secrets.Get(ctx, profile.TokenRef); err != nil {
			if !errors.Is(err, domain.ErrSecretNotFound) {
				return fmt.Errorf("check stored profile token: %w", err)
			}
			profile.TokenRef = ""
		}
		if err := s.profiles.Save(ctx, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		return nil
	}

	if err := s.secrets.Put(ctx, profile.TokenRef, cmd.Token); err != nil {
		return fmt.Errorf("store profile token: %w", err)
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		if rollbackErr := s.secrets.Delete(ctx, profile.TokenRef); rollbackErr != nil {
			return fmt.Errorf("save profile and rollback stored token: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

func (s *Service) RemoveProfile(ctx context.Context, id domain.ProfileID) error {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get profile by id: %w", err)
	}

	if err := s.profiles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	if profile.TokenRef == "" {
		return nil
	}
	if err := s.secrets.Delete(ctx, profile.TokenRef); err != nil {
		return fmt.Errorf("delete profile token: %w", err)
	}

	return nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, nil
}

// SetState writes one state value through the store of the given profile.
// Errors from the store itself are returned unwrapped.
func (s *Service) SetState(ctx context.Context, cmd SetStateCommand) error {
	store, err := s.storeFor(ctx, cmd.Profile)
	if err != nil {
		return err
	}

	return store.SetValue(ctx, cmd.Name, cmd.Value)
}

// GetState reads one state value. An absent entry yields Found=false and a
// nil error.
func (s *Service) GetState(ctx context.Context, query GetStateQuery) (domain.StateResult, error) {
	store, err := s.storeFor(ctx, query.Profile)
	if err != nil {
		return domain.StateResult{}, err
	}

	value, found, err := store.GetValue(ctx, query.Name)
	if err != nil {
		return domain.StateResult{}, err
	}

	return domain.StateResult{Name: query.Name, Found: found, State: value}, nil
}

func (s *Service) storeFor(ctx context.Context, id domain.ProfileID) (ports.KeyValueStore, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile by id: %w", err)
	}

	if profile.TokenRef == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoToken, id)
	}

	token, err := s.secrets.Get(ctx, profile.TokenRef)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return nil, fmt.Errorf("%w: %q: %w", ErrNoToken, id, err)
		}
		return nil, fmt.Errorf("load profile token: %w", err)
	}

	return s.open(domain.Target{
		BaseURL: profile.BaseURL,
		Token:   token,
		Timeout: profile.Timeout,
	}), nil
}
