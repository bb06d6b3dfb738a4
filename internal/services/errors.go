package services

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is wrapped by every validation failure so handlers can
// map the whole family to 422.
var ErrInvalidRequest = errors.New("invalid request")

var (
	ErrUsernameRequired   = fmt.Errorf("%w: username is required", ErrInvalidRequest)
	ErrRecipientRequired  = fmt.Errorf("%w: to is required", ErrInvalidRequest)
	ErrIVRequired         = fmt.Errorf("%w: iv is required", ErrInvalidRequest)
	ErrCiphertextRequired = fmt.Errorf("%w: ciphertext is required", ErrInvalidRequest)
	ErrInvalidTTL         = fmt.Errorf("%w: ttl_sec must not be negative", ErrInvalidRequest)
	ErrPubKeyRequired     = fmt.Errorf("%w: pubkey is required", ErrInvalidRequest)
)

var (
	ErrMissingCredentials       = errors.New("missing Authorization header")
	ErrInvalidCredentialsFormat = errors.New("invalid auth header")
	ErrInvalidToken             = errors.New("invalid token")
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrPubKeyNotFound    = errors.New("no pubkey")
	ErrUserNotFound      = errors.New("user not found")
)
