// Package service implements the vault's authenticated encryption: AEAD
// ciphers (AES-256-GCM, ChaCha20-Poly1305) and the envelope Provider built
// on top of them.
package service

import (
	cryptoDomain "github.com/allisson/vaultlite/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// CryptoProvider turns plaintext strings into opaque envelopes and back,
// authenticated so tampering and wrong-key attempts are detected rather than
// silently accepted.
type CryptoProvider interface {
	// Encrypt produces an envelope for any plaintext, including the empty
	// string. A fresh random nonce is generated per call.
	Encrypt(plaintext string) (string, error)

	// Decrypt recovers the plaintext from an envelope. Fails when the
	// envelope is malformed, the authentication tag does not verify, or the
	// envelope's scheme version is unsupported.
	Decrypt(envelope string) (string, error)

	// Close zeroes the provider's key material.
	Close()
}
