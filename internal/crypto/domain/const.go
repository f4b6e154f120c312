// Package domain defines the key material, envelope format and error taxonomy
// for the vault's authenticated encryption.
package domain

// Algorithm represents the AEAD scheme used to produce an envelope.
//
// Both supported schemes provide authenticated encryption: confidentiality
// plus tamper detection via a 16-byte authentication tag appended to the
// ciphertext. Use AESGCM on CPUs with AES-NI, ChaCha20 elsewhere.
type Algorithm string

const (
	// AESGCM is AES-256-GCM: 32-byte key, 12-byte random nonce.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305: 32-byte key, 12-byte random nonce,
	// constant-time without hardware acceleration.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Envelope versions. Each version pins the AEAD scheme that produced the
// envelope so old envelopes stay decryptable after the configured algorithm
// changes. Unknown versions are a hard decrypt failure, never a fallback.
const (
	EnvelopeVersionAESGCM   = 1
	EnvelopeVersionChaCha20 = 2
)

// EnvelopeVersion returns the envelope version written for this algorithm.
func (a Algorithm) EnvelopeVersion() (int, error) {
	switch a {
	case AESGCM:
		return EnvelopeVersionAESGCM, nil
	case ChaCha20:
		return EnvelopeVersionChaCha20, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}

// AlgorithmForVersion maps an envelope version back to its AEAD scheme.
func AlgorithmForVersion(version int) (Algorithm, error) {
	switch version {
	case EnvelopeVersionAESGCM:
		return AESGCM, nil
	case EnvelopeVersionChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedVersion
	}
}
