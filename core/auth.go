package core

import "time"

// Identity represents a registered participant
type Identity struct {
	ID               uint64 // Assigned on registration, starting at 1
	Email            string // Contact address, not required to be unique
	PublicKey        []byte // Key used to verify challenge signatures
	PendingChallenge string // Last server nonce issued, empty when none is outstanding
}

// HasPendingChallenge reports whether a challenge is waiting to be signed
func (i Identity) HasPendingChallenge() bool {
	return i.PendingChallenge != ""
}

// ChallengeResponse is returned to a caller that asked for a challenge
type ChallengeResponse struct {
	SignedResponse []byte // Server signature over the caller's nonce
	ServerNonce    string // Nonce the caller must sign back
}

// SessionToken authorizes exactly one privileged call
type SessionToken struct {
	Owner     uint64    // Identity the token was issued to
	Value     string    // Opaque token value presented by the caller
	ExpiresAt time.Time // Token is rejected at or after this instant
}

// Expired reports whether the token can no longer be used at the given time
func (t SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
