// Package payload composes the string handed to the barcode encoder for
// rotating tickets. The composition grammar is an integration contract with
// the verifying backend and must not change independently.
package payload

import (
	"strconv"
	"strings"

	apperrors "github.com/allisson/entrypass/internal/errors"
	"github.com/allisson/entrypass/internal/token"
	"github.com/allisson/entrypass/internal/totp"
)

// Separator joins the payload fields. The constituent fields are opaque
// base64 or numeric values, so it never appears unescaped inside them.
const Separator = "::"

// ErrNotRotating indicates Compose was called with a non-rotating token,
// which is a caller precondition violation.
var ErrNotRotating = apperrors.Wrap(apperrors.ErrInvalidInput, "token is not a rotating credential")

// Payload is the composed string to hand to the barcode encoder.
type Payload struct {
	Value string
}

// Compose builds the rotating payload for the given token and codes. With an
// event code present the grammar is
//
//	sourceToken::eventCode::customerCode::eventStepStartUnix
//
// where the trailing literal is the decimal unix second the event code's
// window opened, exposing the rotation boundary to backend verification.
// Without an event code the grammar is
//
//	sourceToken::customerCode
func Compose(tok *token.SecureToken, customerCode totp.Code, eventCode *totp.Code) (Payload, error) {
	if tok == nil || !tok.Rotating() {
		return Payload{}, ErrNotRotating
	}

	if eventCode == nil {
		return Payload{
			Value: tok.Source + Separator + customerCode.Value,
		}, nil
	}

	var b strings.Builder
	b.WriteString(tok.Source)
	b.WriteString(Separator)
	b.WriteString(eventCode.Value)
	b.WriteString(Separator)
	b.WriteString(customerCode.Value)
	b.WriteString(Separator)
	b.WriteString(strconv.FormatInt(eventCode.StepStart.Unix(), 10))
	return Payload{Value: b.String()}, nil
}

// Split breaks a composed payload back into its fields. Used by the verifier.
func Split(value string) []string {
	return strings.Split(value, Separator)
}
