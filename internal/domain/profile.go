package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DefaultProfileID ProfileID = "default"

type ProfileID string

// Profile names one remote store: where it lives, where its token is kept
// locally, and how long a single request may take.
type Profile struct {
	ID       ProfileID
	BaseURL  string
	TokenRef string
	Timeout  time.Duration
}

func (p Profile) Validate() error {
	id := string(p.ID)
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: profile id is empty", ErrInvalidProfile)
	}
	if strings.ContainsAny(id, " \t\r\n/") {
		return fmt.Errorf("%w: profile id %q contains whitespace or slash", ErrInvalidProfile, id)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidProfile)
	}

	parsed, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: parse base url: %v", ErrInvalidProfile, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: base url must use http or https", ErrInvalidProfile)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: base url host is required", ErrInvalidProfile)
	}

	return nil
}

// TokenSecretKey is the local secret-store key holding the token of a profile.
func TokenSecretKey(id ProfileID) string {
	return "vkv/profiles/" + string(id) + "/token"
}
