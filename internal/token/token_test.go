package token

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

func mustEncode(t *testing.T, segment Segment, barcode string, customerKey, eventKey []byte) string {
	t.Helper()
	encoded, err := Encode(segment, barcode, customerKey, eventKey)
	require.NoError(t, err)
	return encoded
}

func TestDecode_RotatingWithBothKeys(t *testing.T) {
	customerKey := []byte("customer-key-material")
	eventKey := []byte("event-key-material")
	encoded := mustEncode(t, SegmentRotating, "FALLBACK123", customerKey, eventKey)

	decoded := Decode(encoded)

	assert.Equal(t, SegmentRotating, decoded.Segment)
	assert.True(t, decoded.Rotating())
	assert.False(t, decoded.Invalid())
	assert.True(t, decoded.HasEventKey())
	assert.Equal(t, customerKey, decoded.CustomerKey)
	assert.Equal(t, eventKey, decoded.EventKey)
	assert.Equal(t, []byte("FALLBACK123"), decoded.Barcode)
	assert.Equal(t, encoded, decoded.Source)
	assert.Equal(t, ReasonNone, decoded.Reason)
}

func TestDecode_RotatingWithoutEventKey(t *testing.T) {
	encoded := mustEncode(t, SegmentRotating, "FALLBACK123", []byte("customer-key"), nil)

	decoded := Decode(encoded)

	assert.Equal(t, SegmentRotating, decoded.Segment)
	assert.False(t, decoded.HasEventKey())
	assert.Empty(t, decoded.EventKey)
}

func TestDecode_Barcode(t *testing.T) {
	encoded := mustEncode(t, SegmentBarcode, "QRPAYLOAD456", nil, nil)

	decoded := Decode(encoded)

	assert.Equal(t, SegmentBarcode, decoded.Segment)
	assert.False(t, decoded.Rotating())
	assert.Equal(t, []byte("QRPAYLOAD456"), decoded.Barcode)
}

func TestDecode_URLSafeAndUnpaddedBase64(t *testing.T) {
	encoded := mustEncode(t, SegmentRotating, "FALLBACK", []byte("customer-key"), nil)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	variants := map[string]string{
		"url-safe":     base64.URLEncoding.EncodeToString(raw),
		"raw-std":      base64.RawStdEncoding.EncodeToString(raw),
		"raw-url-safe": base64.RawURLEncoding.EncodeToString(raw),
	}

	for name, variant := range variants {
		t.Run(name, func(t *testing.T) {
			decoded := Decode(variant)
			assert.Equal(t, SegmentRotating, decoded.Segment)
			assert.Equal(t, []byte("customer-key"), decoded.CustomerKey)
		})
	}
}

func TestDecode_InvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason InvalidReason
	}{
		{"empty string", "", ReasonEmptyToken},
		{"whitespace only", "   ", ReasonEmptyToken},
		{"garbage base64", "!!!not-base64!!!", ReasonBadEncoding},
		{
			"base64 but not json",
			base64.StdEncoding.EncodeToString([]byte("plain text")),
			ReasonBadEnvelope,
		},
		{
			"unknown segment kind",
			base64.StdEncoding.EncodeToString([]byte(`{"rt":"hologram","b":"X"}`)),
			ReasonUnknownSegment,
		},
		{
			"barcode segment without payload",
			base64.StdEncoding.EncodeToString([]byte(`{}`)),
			ReasonMissingBarcode,
		},
		{
			"rotating without customer key",
			base64.StdEncoding.EncodeToString([]byte(`{"rt":"rotating_symbology","b":"X"}`)),
			ReasonMissingCustomerKey,
		},
		{
			"rotating with corrupt customer key",
			base64.StdEncoding.EncodeToString(
				[]byte(`{"rt":"rotating_symbology","ck":"%%%bad%%%"}`),
			),
			ReasonMissingCustomerKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := Decode(tt.input)
			assert.Equal(t, SegmentInvalid, decoded.Segment)
			assert.True(t, decoded.Invalid())
			assert.Equal(t, tt.reason, decoded.Reason)
			assert.Empty(t, decoded.CustomerKey)
			assert.Empty(t, decoded.EventKey)
		})
	}
}

func TestDecode_CorruptEventKeyIsTreatedAsAbsent(t *testing.T) {
	raw := `{"rt":"rotating_symbology","ck":"` +
		base64.StdEncoding.EncodeToString([]byte("customer-key")) +
		`","ek":"%%%corrupt%%%"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))

	decoded := Decode(encoded)

	assert.Equal(t, SegmentRotating, decoded.Segment)
	assert.False(t, decoded.HasEventKey())
	assert.Equal(t, []byte("customer-key"), decoded.CustomerKey)
}

func TestDecode_Deterministic(t *testing.T) {
	encoded := mustEncode(t, SegmentRotating, "FALLBACK", []byte("customer-key"), []byte("event-key"))

	first := Decode(encoded)
	second := Decode(encoded)

	assert.Equal(t, first, second)
}

func TestEncode_Validation(t *testing.T) {
	t.Run("rotating without customer key", func(t *testing.T) {
		_, err := Encode(SegmentRotating, "X", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("barcode without payload", func(t *testing.T) {
		_, err := Encode(SegmentBarcode, "", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown segment", func(t *testing.T) {
		_, err := Encode(Segment("hologram"), "X", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownSegment)
	})
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	encoded := mustEncode(t, SegmentRotating, "PDF417-FALLBACK", []byte("ck-bytes"), []byte("ek-bytes"))

	decoded := Decode(encoded)

	require.False(t, decoded.Invalid())
	assert.Equal(t, []byte("ck-bytes"), decoded.CustomerKey)
	assert.Equal(t, []byte("ek-bytes"), decoded.EventKey)
	assert.Equal(t, []byte("PDF417-FALLBACK"), decoded.Barcode)
}
