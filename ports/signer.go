package ports

// Signer signs with the server's private key
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() []byte
}

// Verifier checks a signature against a registered public key
type Verifier interface {
	Verify(publicKey, message, signature []byte) error
}
