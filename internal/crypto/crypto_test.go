package crypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

const testKeeperURL = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

func TestOpenKeeper_InvalidURL(t *testing.T) {
	_, err := OpenKeeper(context.Background(), "bogus://nope")
	assert.Error(t, err)
}

func TestKeeper_EncryptDecryptRoundTrip(t *testing.T) {
	ctx := context.Background()
	keeper, err := OpenKeeper(ctx, testKeeperURL)
	require.NoError(t, err)
	defer keeper.Close()

	plaintext := []byte("customer-key-material")

	ciphertext, err := keeper.Encrypt(ctx, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := keeper.Decrypt(ctx, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestKeeper_DecryptGarbage(t *testing.T) {
	ctx := context.Background()
	keeper, err := OpenKeeper(ctx, testKeeperURL)
	require.NoError(t, err)
	defer keeper.Close()

	_, err = keeper.Decrypt(ctx, []byte("not-a-ciphertext"))
	assert.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	master := []byte("master-secret")
	salt := []byte("ticket-id")

	key, err := DeriveKey(master, salt, CustomerKeyInfo)
	require.NoError(t, err)
	assert.Len(t, key, DerivedKeyLength)

	t.Run("deterministic", func(t *testing.T) {
		again, err := DeriveKey(master, salt, CustomerKeyInfo)
		require.NoError(t, err)
		assert.Equal(t, key, again)
	})

	t.Run("different salt yields different key", func(t *testing.T) {
		other, err := DeriveKey(master, []byte("other-ticket"), CustomerKeyInfo)
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("different info yields different key", func(t *testing.T) {
		other, err := DeriveKey(master, salt, EventKeyInfo)
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("empty master secret", func(t *testing.T) {
		_, err := DeriveKey(nil, salt, CustomerKeyInfo)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyMasterSecret)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
