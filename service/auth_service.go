package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/internal/metrics"
	"github.com/layer-3/auctioneer/ports"
)

// Authenticator runs the mutual challenge-response exchange.
//
// Challenge proves the server's identity to the caller by signing the caller's nonce and
// hands out a server nonce. Authenticate checks the caller's signature over that nonce with
// the registered public key and issues a session token on success.
//
// Only the most recently issued nonce of an identity can be authenticated. Concurrent
// challenges for one identity race and the last one wins.
type Authenticator struct {
	registry *Registry
	signer   ports.Signer
	verifier ports.Verifier
	tokens   *TokenManager

	log     *slog.Logger
	metrics metrics.Recorder
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(
	registry *Registry,
	signer ports.Signer,
	verifier ports.Verifier,
	tokens *TokenManager,
	opts ...Option,
) *Authenticator {
	o := newOptions(opts)
	return &Authenticator{
		registry: registry,
		signer:   signer,
		verifier: verifier,
		tokens:   tokens,
		log:      o.log,
		metrics:  o.metrics,
	}
}

// Challenge signs clientNonce and issues a fresh server nonce, replacing any pending one
func (a *Authenticator) Challenge(ctx context.Context, id uint64, clientNonce string) (core.ChallengeResponse, error) {
	if _, err := a.registry.Lookup(ctx, id); err != nil {
		return core.ChallengeResponse{}, err
	}

	response, err := a.signer.Sign([]byte(clientNonce))
	if err != nil {
		return core.ChallengeResponse{}, fmt.Errorf("failed to sign client nonce: %w", err)
	}

	nonce, err := uuid.NewRandom()
	if err != nil {
		return core.ChallengeResponse{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	if err := a.registry.setChallenge(ctx, id, nonce.String()); err != nil {
		return core.ChallengeResponse{}, err
	}

	return core.ChallengeResponse{
		SignedResponse: response,
		ServerNonce:    nonce.String(),
	}, nil
}

// Authenticate verifies signature over the pending nonce and issues a session token.
// A failed verification keeps the pending nonce so the caller may retry.
func (a *Authenticator) Authenticate(ctx context.Context, id uint64, signature []byte) (core.SessionToken, error) {
	identity, err := a.registry.Lookup(ctx, id)
	if err != nil {
		return core.SessionToken{}, err
	}

	if !identity.HasPendingChallenge() {
		return core.SessionToken{}, core.ErrNoPendingChallenge
	}

	if err := a.verifier.Verify(identity.PublicKey, []byte(identity.PendingChallenge), signature); err != nil {
		a.metrics.RecordAuthAttempt(metrics.ResultFailure)
		a.log.WarnContext(ctx, "challenge signature rejected",
			slog.Uint64("identity_id", id),
			slog.String("reason", err.Error()))
		return core.SessionToken{}, fmt.Errorf("%w: %v", core.ErrAuthFailed, err)
	}

	// The nonce may have been replaced or consumed since it was read
	cleared, err := a.registry.clearChallenge(ctx, id, identity.PendingChallenge)
	if err != nil {
		return core.SessionToken{}, err
	}
	if !cleared {
		a.metrics.RecordAuthAttempt(metrics.ResultFailure)
		a.log.WarnContext(ctx, "challenge superseded during authentication", slog.Uint64("identity_id", id))
		return core.SessionToken{}, fmt.Errorf("%w: challenge superseded", core.ErrAuthFailed)
	}

	a.metrics.RecordAuthAttempt(metrics.ResultSuccess)

	token, err := a.tokens.Generate(ctx, id)
	if err != nil {
		return core.SessionToken{}, err
	}

	return token, nil
}
