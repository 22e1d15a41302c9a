package tokenizer

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/ports"
)

const AudienceSession = "auction:session"

// JWTTokenizer mints session token values as ES256 JWTs.
// The token manager still treats the value as opaque; the JWT form only lets
// downstream consumers read the owner and expiry without a lookup.
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer. signKey must be a P-256 key.
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) *JWTTokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// Mint signs a fresh token for owner
func (j *JWTTokenizer) Mint(owner uint64, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(owner, 10),
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Owner parses a token minted by this tokenizer and returns its subject
func (j *JWTTokenizer) Owner(tokenStr string) (uint64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", core.ErrTokenInvalid)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return 0, core.ErrTokenInvalid
	}

	owner, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject: %w", core.ErrTokenInvalid)
	}
	return owner, nil
}

// OpaqueTokenizer mints random uuid token values
type OpaqueTokenizer struct{}

// NewOpaqueTokenizer creates a new opaque tokenizer
func NewOpaqueTokenizer() ports.TokenMinter {
	return OpaqueTokenizer{}
}

// Mint returns a random value; owner and expiry live only in the token store
func (OpaqueTokenizer) Mint(owner uint64, expiresAt time.Time) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return id.String(), nil
}
