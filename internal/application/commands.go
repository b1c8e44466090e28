package application

import (
	"time"

	"github.com/bnema/vault-kv-cli/internal/domain"
)

type AddProfileCommand struct {
	ID      domain.ProfileID
	BaseURL string
	// Token is stored in the secret store when set. An empty Token keeps
	// whatever is already stored for the profile; with nothing stored the
	// profile is saved without a token reference.
	Token   string
	Timeout time.Duration
}

type SetStateCommand struct {
	Profile domain.ProfileID
	Name    string
	Value   string
}

type GetStateQuery struct {
	Profile domain.ProfileID
	Name    string
}
