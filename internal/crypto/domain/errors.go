package domain

import (
	"github.com/allisson/vaultlite/internal/errors"
)

// Cryptographic operation error definitions.
//
// Key errors are raised at provider construction, never deferred to first
// use. Decryption errors deliberately do not disclose whether the key was
// wrong or the data tampered with.
var (
	// ErrKeyNotSet indicates no key material was supplied.
	ErrKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "vault key not set")

	// ErrInvalidKeyBase64 indicates the key is not valid standard base64.
	ErrInvalidKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "vault key is not valid base64")

	// ErrInvalidKeySize indicates the decoded key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrUnsupportedAlgorithm indicates the requested AEAD scheme is unknown.
	// Supported: aes-gcm, chacha20-poly1305.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrMalformedEnvelope indicates the stored envelope cannot be parsed:
	// bad base64 wrapper, invalid JSON, or missing nonce/ciphertext.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrUnsupportedVersion indicates the envelope declares a scheme version
	// this build does not know. Decryption never guesses a fallback scheme.
	ErrUnsupportedVersion = errors.Wrap(errors.ErrInvalidInput, "unsupported envelope version")

	// ErrDecryptionFailed indicates authentication failed during decryption:
	// wrong key, tampered ciphertext/nonce/tag, or corrupted data. The
	// plaintext is never partially returned.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
