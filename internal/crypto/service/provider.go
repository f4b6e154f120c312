package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"
)

// Provider implements CryptoProvider with a single symmetric key.
//
// Encryption always uses the provider's configured algorithm and writes the
// matching envelope version. Decryption dispatches on the envelope's version,
// so envelopes produced under either supported scheme remain readable after
// the configured algorithm changes.
//
// The provider holds the raw key material for its lifetime; Close zeroes it.
type Provider struct {
	key         []byte
	algorithm   cryptoDomain.Algorithm
	aeadManager AEADManager
}

// NewProvider constructs a Provider from a base64-encoded 32-byte key.
//
// Key validation happens here, never at first use: an empty key fails with
// ErrKeyNotSet, malformed encoding with ErrInvalidKeyBase64, and a wrong
// decoded length with ErrInvalidKeySize. The algorithm selects the scheme
// for newly produced envelopes.
func NewProvider(encodedKey string, algorithm cryptoDomain.Algorithm) (*Provider, error) {
	key, err := cryptoDomain.ParseKey(encodedKey)
	if err != nil {
		return nil, err
	}

	// Reject unknown algorithms at construction as well.
	if _, err := algorithm.EnvelopeVersion(); err != nil {
		cryptoDomain.Zero(key)
		return nil, err
	}

	return &Provider{
		key:         key,
		algorithm:   algorithm,
		aeadManager: NewAEADManager(),
	}, nil
}

// Encrypt encrypts plaintext into an envelope string.
//
// Any input is valid, including the empty string and arbitrary Unicode. Two
// calls with identical plaintext produce different envelopes because the
// nonce is fresh per call.
func (p *Provider) Encrypt(plaintext string) (string, error) {
	cipher, err := p.aeadManager.CreateCipher(p.key, p.algorithm)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := cipher.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}

	version, err := p.algorithm.EnvelopeVersion()
	if err != nil {
		return "", err
	}

	envelope := &cryptoDomain.Envelope{
		Version: version,
		Nonce:   nonce,
		Data:    ciphertext,
	}
	return envelope.Encode()
}

// Decrypt recovers the plaintext from an envelope string.
//
// Fails with ErrMalformedEnvelope when the envelope cannot be parsed,
// ErrUnsupportedVersion when it declares an unknown scheme, and
// ErrDecryptionFailed when authentication fails (wrong key or tampered
// data). Garbage is never returned as plaintext; tag verification gates
// output.
func (p *Provider) Decrypt(encoded string) (string, error) {
	envelope, err := cryptoDomain.DecodeEnvelope(encoded)
	if err != nil {
		return "", err
	}

	algorithm, err := cryptoDomain.AlgorithmForVersion(envelope.Version)
	if err != nil {
		return "", err
	}

	cipher, err := p.aeadManager.CreateCipher(p.key, algorithm)
	if err != nil {
		return "", err
	}

	plaintext, err := cipher.Decrypt(envelope.Data, envelope.Nonce, nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// Close zeroes the provider's key material. The provider must not be used
// afterwards.
func (p *Provider) Close() {
	cryptoDomain.Zero(p.key)
}
