package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrSecretNotFound  = errors.New("secret not found")
)
