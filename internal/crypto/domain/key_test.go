package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/vaultlite/internal/errors"
)

func TestParseKey(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		raw := make([]byte, KeySize)
		for i := range raw {
			raw[i] = byte(i)
		}
		encoded := base64.StdEncoding.EncodeToString(raw)

		key, err := ParseKey(encoded)
		require.NoError(t, err)
		assert.Equal(t, raw, key)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, err := ParseKey("")
		assert.ErrorIs(t, err, ErrKeyNotSet)
	})

	t.Run("InvalidBase64", func(t *testing.T) {
		_, err := ParseKey("not-valid-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidKeyBase64)
	})

	t.Run("WrongSize", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString(make([]byte, 16))
		_, err := ParseKey(short)
		assert.ErrorIs(t, err, ErrInvalidKeySize)

		long := base64.StdEncoding.EncodeToString(make([]byte, 64))
		_, err = ParseKey(long)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})

	t.Run("KeyErrorsAreInvalidInput", func(t *testing.T) {
		_, err := ParseKey("")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestGenerateKey(t *testing.T) {
	t.Run("DecodesToKeySize", func(t *testing.T) {
		encoded, err := GenerateKey()
		require.NoError(t, err)

		key, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
	})

	t.Run("UniquePerCall", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 10 {
			encoded, err := GenerateKey()
			require.NoError(t, err)
			assert.False(t, seen[encoded], "generated keys should be unique")
			seen[encoded] = true
		}
	})

	t.Run("RoundTripsThroughParseKey", func(t *testing.T) {
		encoded, err := GenerateKey()
		require.NoError(t, err)

		key, err := ParseKey(encoded)
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
	})
}
