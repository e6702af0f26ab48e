package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

// DerivedKeyLength is the length of derived TOTP keys in bytes.
const DerivedKeyLength = 20

// Derivation contexts. Changing these breaks verification of every
// previously issued ticket.
const (
	CustomerKeyInfo = "entrypass/customer-key/v1"
	EventKeyInfo    = "entrypass/event-key/v1"
)

// ErrEmptyMasterSecret indicates key derivation was attempted without a master secret.
var ErrEmptyMasterSecret = apperrors.Wrap(apperrors.ErrInvalidInput, "master secret is empty")

// DeriveKey derives a TOTP key from the master secret using HKDF-SHA256.
// salt binds the key to a single ticket or event; info separates the
// customer and event key domains.
func DeriveKey(masterSecret, salt []byte, info string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrEmptyMasterSecret
	}

	reader := hkdf.New(sha256.New, masterSecret, salt, []byte(info))
	key := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive key")
	}
	return key, nil
}
