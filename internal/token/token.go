// Package token decodes the opaque secure entry token that a ticketing
// backend hands to a client. The token is a base64-encoded JSON envelope
// carrying the segment kind, the raw barcode payload and the key material
// used for rotating barcode derivation.
package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

// Segment represents the decoded token's category, which determines whether
// the ticket shows a static barcode or a rotating one.
type Segment string

const (
	SegmentBarcode  Segment = "barcode"
	SegmentRotating Segment = "rotating_symbology"
	SegmentInvalid  Segment = "invalid"
)

// InvalidReason enumerates why a token collapsed to SegmentInvalid.
type InvalidReason string

const (
	ReasonNone               InvalidReason = ""
	ReasonEmptyToken         InvalidReason = "empty_token"
	ReasonBadEncoding        InvalidReason = "bad_encoding"
	ReasonBadEnvelope        InvalidReason = "bad_envelope"
	ReasonUnknownSegment     InvalidReason = "unknown_segment"
	ReasonMissingBarcode     InvalidReason = "missing_barcode"
	ReasonMissingCustomerKey InvalidReason = "missing_customer_key"
)

// Domain-specific errors for token operations.
var (
	// ErrCustomerKeyRequired indicates a rotating token was encoded without a customer key.
	ErrCustomerKeyRequired = apperrors.Wrap(apperrors.ErrInvalidInput, "customer key is required")

	// ErrBarcodeRequired indicates a static token was encoded without a barcode payload.
	ErrBarcodeRequired = apperrors.Wrap(apperrors.ErrInvalidInput, "barcode payload is required")

	// ErrUnknownSegment indicates an unsupported segment kind was supplied.
	ErrUnknownSegment = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown segment kind")
)

// SecureToken is the decoded, validated form of an opaque secure entry token.
// It is immutable once parsed; a new token string produces a new value.
type SecureToken struct {
	// Segment is the token category. Any parse failure collapses the whole
	// value to SegmentInvalid; no partial structures are ever exposed.
	Segment Segment
	// Barcode is the literal value to encode when not rotating, or the static
	// fallback payload used inside rotation.
	Barcode []byte
	// CustomerKey is the raw customer TOTP key. Non-empty whenever Segment is
	// SegmentRotating.
	CustomerKey []byte
	// EventKey is the optional raw event TOTP key. Its presence switches the
	// rotating composition grammar.
	EventKey []byte
	// Source is the original opaque token string, included verbatim in
	// rotating payloads.
	Source string
	// Reason records why the token is invalid. Empty for valid tokens.
	Reason InvalidReason
}

// Rotating reports whether the token drives a rotating barcode.
func (t *SecureToken) Rotating() bool {
	return t.Segment == SegmentRotating
}

// Invalid reports whether the token failed to decode.
func (t *SecureToken) Invalid() bool {
	return t.Segment == SegmentInvalid
}

// HasEventKey reports whether the token carries an event key.
func (t *SecureToken) HasEventKey() bool {
	return len(t.EventKey) > 0
}

// envelope is the wire format inside the base64 wrapper. This schema is an
// integration contract with the issuing backend (see Encode).
type envelope struct {
	Barcode     string `json:"b,omitempty"`
	CustomerKey string `json:"ck,omitempty"`
	EventKey    string `json:"ek,omitempty"`
	Segment     string `json:"rt,omitempty"`
}

// Decode parses an opaque secure entry token string. It is a total, pure
// function: every input yields exactly one SecureToken (possibly invalid),
// it never fails loudly and identical inputs yield identical results.
func Decode(tokenString string) *SecureToken {
	source := strings.TrimSpace(tokenString)
	if source == "" {
		return invalid(tokenString, ReasonEmptyToken)
	}

	raw, ok := decodeBase64(source)
	if !ok {
		return invalid(source, ReasonBadEncoding)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return invalid(source, ReasonBadEnvelope)
	}

	switch env.Segment {
	case string(SegmentRotating):
		return decodeRotating(source, env)
	case "", string(SegmentBarcode):
		return decodeBarcode(source, env)
	default:
		return invalid(source, ReasonUnknownSegment)
	}
}

// Encode builds the opaque token string for the given fields. It is the
// inverse of Decode and is used by the issuing backend.
func Encode(segment Segment, barcode string, customerKey, eventKey []byte) (string, error) {
	env := envelope{Barcode: barcode}

	switch segment {
	case SegmentRotating:
		if len(customerKey) == 0 {
			return "", ErrCustomerKeyRequired
		}
		env.Segment = string(SegmentRotating)
		env.CustomerKey = base64.StdEncoding.EncodeToString(customerKey)
		if len(eventKey) > 0 {
			env.EventKey = base64.StdEncoding.EncodeToString(eventKey)
		}
	case SegmentBarcode:
		if barcode == "" {
			return "", ErrBarcodeRequired
		}
	default:
		return "", ErrUnknownSegment
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal token envelope")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decodeRotating(source string, env envelope) *SecureToken {
	customerKey, ok := decodeBase64(env.CustomerKey)
	if !ok || len(customerKey) == 0 {
		return invalid(source, ReasonMissingCustomerKey)
	}

	// Event key extraction is independent and optional: a corrupt or absent
	// event key never invalidates the token, it only changes the composition
	// grammar downstream.
	var eventKey []byte
	if key, ok := decodeBase64(env.EventKey); ok {
		eventKey = key
	}

	return &SecureToken{
		Segment:     SegmentRotating,
		Barcode:     []byte(env.Barcode),
		CustomerKey: customerKey,
		EventKey:    eventKey,
		Source:      source,
	}
}

func decodeBarcode(source string, env envelope) *SecureToken {
	if env.Barcode == "" {
		return invalid(source, ReasonMissingBarcode)
	}
	return &SecureToken{
		Segment: SegmentBarcode,
		Barcode: []byte(env.Barcode),
		Source:  source,
	}
}

func invalid(source string, reason InvalidReason) *SecureToken {
	return &SecureToken{
		Segment: SegmentInvalid,
		Source:  source,
		Reason:  reason,
	}
}

// decodeBase64 accepts standard and URL-safe base64, padded or not. Issuing
// backends are not consistent about which alphabet they use.
func decodeBase64(s string) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if raw, err := enc.DecodeString(s); err == nil {
			return raw, true
		}
	}
	return nil, false
}
