// Package crypto provides the key material services of the issuing backend:
// at-rest encryption of ticket keys through a gocloud.dev secrets keeper and
// deterministic derivation of per-ticket TOTP keys from a master secret.
package crypto

import (
	"context"

	"gocloud.dev/secrets"

	apperrors "github.com/allisson/entrypass/internal/errors"

	// Register keeper drivers.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper encrypts and decrypts key material at rest. It wraps a
// gocloud.dev secrets keeper, so the backing key can live in a cloud KMS or,
// for local development, in a base64key:// URL.
type Keeper struct {
	keeper *secrets.Keeper
}

// OpenKeeper opens the keeper for the given URL
// (e.g., "base64key://<base64-encoded-32-bytes>", "gcpkms://...", "awskms://...").
func OpenKeeper(ctx context.Context, keeperURL string) (*Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open secrets keeper")
	}
	return &Keeper{keeper: keeper}, nil
}

// Encrypt encrypts plaintext key material for storage.
func (k *Keeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	ciphertext, err := k.keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt key material")
	}
	return ciphertext, nil
}

// Decrypt decrypts key material loaded from storage.
func (k *Keeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	plaintext, err := k.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt key material")
	}
	return plaintext, nil
}

// Close releases the keeper resources.
func (k *Keeper) Close() error {
	return k.keeper.Close()
}
