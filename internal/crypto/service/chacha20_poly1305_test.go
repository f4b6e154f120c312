package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaCha20Poly1305(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewChaCha20Poly1305(key)
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		plaintext := []byte("chacha plaintext")
		aad := []byte("record-id")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)
		assert.Len(t, nonce, 12)
		assert.NotEqual(t, plaintext, ciphertext)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("WrongAADFails", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("value"), []byte("aad-1"))
		require.NoError(t, err)

		_, err = cipher.Decrypt(ciphertext, nonce, []byte("aad-2"))
		assert.Error(t, err)
	})

	t.Run("InvalidKeySize", func(t *testing.T) {
		_, err := NewChaCha20Poly1305(make([]byte, 16))
		assert.Error(t, err)
	})
}
