package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// KeySize is the required key length in bytes for both supported AEAD
// schemes (256 bits).
const KeySize = 32

// ParseKey decodes a base64-encoded vault key and validates its length.
//
// The returned slice is fresh key material; callers own it and should Zero
// it when done. Fails with ErrKeyNotSet for an empty string,
// ErrInvalidKeyBase64 for malformed encoding, and ErrInvalidKeySize when the
// decoded key is not exactly KeySize bytes.
func ParseKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyBase64, err)
	}
	if len(key) != KeySize {
		Zero(key)
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	return key, nil
}

// GenerateKey produces a fresh cryptographically-random vault key encoded as
// standard base64. Every call returns a different key.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	defer Zero(key)

	return base64.StdEncoding.EncodeToString(key), nil
}
