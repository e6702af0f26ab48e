// Package display owns the presentation state of a secure entry ticket view:
// what string the barcode renderer should encode at any instant and whether
// the view shows a loading indicator, an error, a static code or a rotating
// code. Transitions are expressed as a pure function over a tagged state
// value; a thin controller drives timers and clock-synced recomputation.
package display

import "unicode/utf8"

// Kind tags the active display state variant.
type Kind string

const (
	// KindNone means no token is assigned.
	KindNone Kind = "none"
	// KindLoading means a token assignment is in flight.
	KindLoading Kind = "loading"
	// KindError means the view shows an error message.
	KindError Kind = "error"
	// KindStatic means the view shows a fixed, non-rotating barcode.
	KindStatic Kind = "static"
	// KindRotating means the view shows a periodically recomputed barcode.
	KindRotating Kind = "rotating"
)

const (
	// DefaultErrorText is shown when a token fails to decode and the caller
	// did not configure an error message.
	DefaultErrorText = "Reload ticket"

	// maxErrorRunes caps the error message length; longer messages are cut
	// and marked with an ellipsis.
	maxErrorRunes = 64
	ellipsis      = "…"
)

// State is the tagged display state. Exactly one variant is active, selected
// by Kind; only the fields of the active variant are meaningful. Values are
// replaced wholesale on every transition and never mutated in place.
type State struct {
	Kind Kind

	// Error variant.
	Message string
	Icon    string

	// Static variant.
	Payload  string
	Subtitle string

	// Rotating variant. FallbackPayload is the static representation the
	// user can toggle to; ToggledToStatic reports that manual override.
	RotatingPayload string
	FallbackPayload string
	PDF417Subtitle  string
	QRSubtitle      string
	ToggledToStatic bool
}

// VisiblePayload returns the string the barcode renderer should encode right
// now, honoring the static toggle. Empty when nothing should be rendered.
func (s State) VisiblePayload() string {
	switch s.Kind {
	case KindStatic:
		return s.Payload
	case KindRotating:
		if s.ToggledToStatic {
			return s.FallbackPayload
		}
		return s.RotatingPayload
	default:
		return ""
	}
}

// truncateMessage cuts msg to maxErrorRunes runes, appending an ellipsis
// marker when the message was longer.
func truncateMessage(msg string) string {
	if utf8.RuneCountInString(msg) <= maxErrorRunes {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:maxErrorRunes]) + ellipsis
}
