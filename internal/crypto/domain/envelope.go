package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Envelope is the self-describing encrypted package stored in place of a
// plaintext value: scheme version, per-operation random nonce, and the
// ciphertext with the authentication tag appended.
//
// The storage form is the JSON encoding of this struct wrapped in standard
// base64, so the whole envelope travels as a single opaque string. Two
// envelopes produced for identical plaintext and key differ with
// overwhelming probability because the nonce is fresh per encryption.
type Envelope struct {
	Version int    `json:"version"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

// Encode serializes the envelope to its single-string storage form.
func (e *Envelope) Encode() (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeEnvelope parses the storage form back into an Envelope.
//
// Structural problems (bad base64, invalid JSON, missing nonce or
// ciphertext) fail with ErrMalformedEnvelope. Version support is not checked
// here; decrypt dispatches on it and rejects unknown versions.
func DecodeEnvelope(encoded string) (*Envelope, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(envelope.Nonce) == 0 || len(envelope.Data) == 0 {
		return nil, fmt.Errorf("%w: missing nonce or ciphertext", ErrMalformedEnvelope)
	}

	return &envelope, nil
}
