package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownIdentity    = errors.New("unknown identity")
	ErrNoPendingChallenge = errors.New("no pending challenge")
	ErrAuthFailed         = errors.New("authentication failed")
	ErrNotFound           = errors.New("auction item not found")
	ErrUnauthorized       = errors.New("not the owner of the auction item")

	// ErrTokenInvalid is wrapped by every token validation failure
	ErrTokenInvalid  = errors.New("invalid token")
	ErrNoToken       = fmt.Errorf("%w: no token issued", ErrTokenInvalid)
	ErrTokenMismatch = fmt.Errorf("%w: token mismatch", ErrTokenInvalid)
	ErrTokenExpired  = fmt.Errorf("%w: token has expired", ErrTokenInvalid)

	ErrStoreOperationFailed = errors.New("store operation failed")
)
