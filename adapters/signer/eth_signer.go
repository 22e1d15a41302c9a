package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/auctioneer/ports"
)

var (
	// ErrInvalidSignature is returned when a signature does not verify
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidKey is returned when key material cannot be parsed
	ErrInvalidKey = errors.New("invalid key material")
)

// EthSigner signs messages with a secp256k1 key.
// Messages are hashed the way personal_sign does (EIP-191) so wallets can answer challenges.
type EthSigner struct {
	key *ecdsa.PrivateKey
}

// NewEthSigner creates a signer for the given private key
func NewEthSigner(key *ecdsa.PrivateKey) *EthSigner {
	return &EthSigner{key: key}
}

// GenerateKey creates a fresh secp256k1 private key
func GenerateKey() (*ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// KeyFromHex parses a hex encoded secp256k1 private key, with or without 0x prefix
func KeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	if len(hexKey) >= 2 && hexKey[0] == '0' && (hexKey[1] == 'x' || hexKey[1] == 'X') {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// Sign returns a 65 byte [R || S || V] signature over the EIP-191 hash of message
func (s *EthSigner) Sign(message []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig, nil
}

// PublicKey returns the uncompressed public key
func (s *EthSigner) PublicKey() []byte {
	return crypto.FromECDSAPub(&s.key.PublicKey)
}

// EthVerifier verifies signatures produced by EthSigner or an Ethereum wallet
type EthVerifier struct{}

// NewEthVerifier creates a new verifier
func NewEthVerifier() ports.Verifier {
	return EthVerifier{}
}

// Verify checks signature over message against a compressed or uncompressed public key
func (EthVerifier) Verify(publicKey, message, signature []byte) error {
	switch len(signature) {
	case crypto.SignatureLength:
		signature = signature[:crypto.SignatureLength-1]
	case crypto.SignatureLength - 1:
	default:
		return fmt.Errorf("signature must be 64 or 65 bytes: %w", ErrInvalidSignature)
	}

	if !crypto.VerifySignature(publicKey, accounts.TextHash(message), signature) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyServerResponse lets a client check the server's answer to its challenge nonce
func VerifyServerResponse(serverPublicKey []byte, clientNonce string, signedResponse []byte) error {
	return EthVerifier{}.Verify(serverPublicKey, []byte(clientNonce), signedResponse)
}
