package ports

import "time"

// TokenMinter produces session token values
type TokenMinter interface {
	Mint(owner uint64, expiresAt time.Time) (string, error)
}
