package display

// event is a request to move the display state machine. Events carry any
// payload strings already computed by the driver, keeping transition a pure
// function with no clock or key material access.
type event interface {
	isEvent()
}

// clearEvent drops the assigned token.
type clearEvent struct{}

// loadingEvent marks a token assignment in flight.
type loadingEvent struct{}

// errorEvent displays an error, overriding whatever is currently shown.
type errorEvent struct {
	message string
	icon    string
}

// staticEvent enters the static barcode state.
type staticEvent struct {
	payload  string
	subtitle string
}

// rotatingEvent enters the rotating state with a freshly computed payload.
type rotatingEvent struct {
	payload        string
	fallback       string
	pdf417Subtitle string
	qrSubtitle     string
}

// refreshEvent replaces the rotating payload on a periodic tick. It never
// changes the toggle flag.
type refreshEvent struct {
	payload string
}

// toggleEvent flips between the rotating code and its static fallback.
// payload carries a freshly recomputed rotating value for the flip back.
type toggleEvent struct {
	payload string
}

// revertEvent is the auto-revert timer flipping the toggle back.
type revertEvent struct {
	payload string
}

// subtitlesEvent updates the subtitle texts on the visible state.
type subtitlesEvent struct {
	pdf417 string
	qr     string
}

func (clearEvent) isEvent()     {}
func (loadingEvent) isEvent()   {}
func (errorEvent) isEvent()     {}
func (staticEvent) isEvent()    {}
func (rotatingEvent) isEvent()  {}
func (refreshEvent) isEvent()   {}
func (toggleEvent) isEvent()    {}
func (revertEvent) isEvent()    {}
func (subtitlesEvent) isEvent() {}

// transition computes the next display state for an event. It is pure and
// total: events that do not apply to the current state leave it unchanged.
// Side effects (starting and canceling timers) are derived by the controller
// from comparing the old and new state, never performed here.
func transition(st State, ev event) State {
	switch ev := ev.(type) {
	case clearEvent:
		return State{Kind: KindNone}

	case loadingEvent:
		return State{Kind: KindLoading}

	case errorEvent:
		return State{
			Kind:    KindError,
			Message: ev.message,
			Icon:    ev.icon,
		}

	case staticEvent:
		return State{
			Kind:     KindStatic,
			Payload:  ev.payload,
			Subtitle: ev.subtitle,
		}

	case rotatingEvent:
		return State{
			Kind:            KindRotating,
			RotatingPayload: ev.payload,
			FallbackPayload: ev.fallback,
			PDF417Subtitle:  ev.pdf417Subtitle,
			QRSubtitle:      ev.qrSubtitle,
		}

	case refreshEvent:
		if st.Kind != KindRotating {
			return st
		}
		next := st
		next.RotatingPayload = ev.payload
		return next

	case toggleEvent:
		if st.Kind != KindRotating {
			return st
		}
		next := st
		next.ToggledToStatic = !st.ToggledToStatic
		if !next.ToggledToStatic && ev.payload != "" {
			next.RotatingPayload = ev.payload
		}
		return next

	case revertEvent:
		if st.Kind != KindRotating || !st.ToggledToStatic {
			return st
		}
		next := st
		next.ToggledToStatic = false
		if ev.payload != "" {
			next.RotatingPayload = ev.payload
		}
		return next

	case subtitlesEvent:
		switch st.Kind {
		case KindStatic:
			next := st
			next.Subtitle = ev.qr
			return next
		case KindRotating:
			next := st
			next.PDF417Subtitle = ev.pdf417
			next.QRSubtitle = ev.qr
			return next
		default:
			return st
		}

	default:
		return st
	}
}
