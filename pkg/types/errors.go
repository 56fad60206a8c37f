package types

import "errors"

var (
	ErrSignerUnavailable  = errors.New("signer is needed to interact with this endpoint")
	ErrMissingCredentials = errors.New("api credentials are needed to interact with this endpoint")
	ErrConfigUnsupported  = errors.New("config is not supported on the chainId")
	ErrInvalidAmount      = errors.New("order amount must be positive")
	ErrInvalidPrice       = errors.New("order price must be inside (0, 1)")
)
