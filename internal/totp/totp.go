// Package totp derives the short-lived one-time codes used inside rotating
// barcode payloads. The construction is standard RFC 6238 TOTP (HMAC-SHA1,
// fixed-width digits) over the raw key bytes carried by the secure token.
package totp

import (
	"encoding/base32"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

const (
	// StepSeconds is the fixed TOTP time-step size. Every code is stable
	// within a step and changes at the step boundary.
	StepSeconds = 15

	// CodeDigits is the fixed width of a generated code.
	CodeDigits = 6
)

// ErrInvalidKey indicates the secret key is empty or unusable for code
// generation. Callers treat this the same as a token decode failure.
var ErrInvalidKey = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid totp key")

// Code is a one-time code together with the validity window it was derived
// for. Values are recomputed every refresh tick and never mutated.
type Code struct {
	// Value is the fixed-width digit string.
	Value string
	// StepStart is the instant the validity window opened.
	StepStart time.Time
	// StepEnd is the instant the validity window closes.
	StepEnd time.Time
}

// Remaining reports how long the code stays valid from the given instant.
func (c Code) Remaining(now time.Time) time.Duration {
	return c.StepEnd.Sub(now)
}

// Generate derives the code for the given secret at the given instant.
// It is deterministic: two calls within the same time step yield the same
// code, and the code changes once the instant crosses a step boundary.
func Generate(secret []byte, at time.Time) (Code, error) {
	if len(secret) == 0 {
		return Code{}, ErrInvalidKey
	}

	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret)
	value, err := totp.GenerateCodeCustom(encoded, at, totp.ValidateOpts{
		Period:    StepSeconds,
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return Code{}, apperrors.Wrap(ErrInvalidKey, err.Error())
	}

	counter := at.Unix() / StepSeconds
	stepStart := time.Unix(counter*StepSeconds, 0).UTC()

	return Code{
		Value:     value,
		StepStart: stepStart,
		StepEnd:   stepStart.Add(StepSeconds * time.Second),
	}, nil
}
