package display

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/allisson/entrypass/internal/clock"
	"github.com/allisson/entrypass/internal/payload"
	"github.com/allisson/entrypass/internal/token"
	"github.com/allisson/entrypass/internal/totp"
)

const (
	// DefaultRefreshInterval is the cadence of rotating payload recomputation.
	DefaultRefreshInterval = time.Second

	// DefaultRevertDelay is how long the static toggle stays active before
	// flipping back to the rotating code on its own.
	DefaultRevertDelay = 10 * time.Second
)

// Option configures a Controller.
type Option func(*Controller)

// WithRefreshInterval overrides the rotating refresh cadence.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Controller) { c.refreshInterval = d }
}

// WithRevertDelay overrides the toggle auto-revert delay.
func WithRevertDelay(d time.Duration) Option {
	return func(c *Controller) { c.revertDelay = d }
}

// WithErrorText overrides the message shown when a token fails to decode.
func WithErrorText(text string) Option {
	return func(c *Controller) { c.errorText = text }
}

// WithErrorIcon sets the icon reference attached to decode-failure errors.
func WithErrorIcon(icon string) Option {
	return func(c *Controller) { c.errorIcon = icon }
}

// WithToggleDisabled removes the manual static toggle; Toggle becomes a no-op.
func WithToggleDisabled() Option {
	return func(c *Controller) { c.toggleDisabled = true }
}

// WithStateHandler registers a callback invoked after every state
// replacement, including ones that only change the preferred display size.
func WithStateHandler(fn func(State)) Option {
	return func(c *Controller) { c.onState = fn }
}

// WithErrorHandler registers a callback invoked whenever the error state is
// entered.
func WithErrorHandler(fn func(State)) Option {
	return func(c *Controller) { c.onError = fn }
}

// Controller drives the display state machine. All transitions are applied
// under a single lock, so a toggle action and a refresh tick arriving
// together are serialized; timer callbacks check the state generation they
// were scheduled for and no-op when a transition superseded them.
type Controller struct {
	clock  *clock.SyncedClock
	logger *slog.Logger

	refreshInterval time.Duration
	revertDelay     time.Duration
	errorText       string
	errorIcon       string
	toggleDisabled  bool

	onState func(State)
	onError func(State)

	mu             sync.Mutex
	state          State
	tok            *token.SecureToken
	pdf417Subtitle string
	qrSubtitle     string
	generation     uint64
	refreshTimer   *time.Timer
	revertTimer    *time.Timer
	closed         bool
}

// NewController creates a display controller bound to the given synchronized
// clock. The initial state is None.
func NewController(clk *clock.SyncedClock, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		clock:           clk,
		logger:          logger,
		refreshInterval: DefaultRefreshInterval,
		revertDelay:     DefaultRevertDelay,
		errorText:       DefaultErrorText,
		state:           State{Kind: KindNone},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current display state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AssignToken decodes a new token and moves the machine to the matching
// state. An empty string clears the token. The first rotating payload is
// computed synchronously as part of the transition, so the rotating state is
// never entered without a payload.
func (c *Controller) AssignToken(tokenString string) {
	if tokenString == "" {
		c.mu.Lock()
		c.tok = nil
		notify := c.apply(clearEvent{})
		c.mu.Unlock()
		notify()
		return
	}

	c.mu.Lock()
	notify := c.apply(loadingEvent{})
	c.mu.Unlock()
	notify()

	decoded := token.Decode(tokenString)

	c.mu.Lock()
	c.tok = decoded
	var next event
	switch decoded.Segment {
	case token.SegmentBarcode:
		next = staticEvent{payload: string(decoded.Barcode), subtitle: c.qrSubtitle}

	case token.SegmentRotating:
		value, err := c.computeRotating(decoded)
		if err != nil {
			c.logger.Warn("rotating payload computation failed",
				slog.Any("error", err),
			)
			next = errorEvent{message: truncateMessage(c.errorText), icon: c.errorIcon}
			break
		}
		next = rotatingEvent{
			payload:        value,
			fallback:       string(decoded.Barcode),
			pdf417Subtitle: c.pdf417Subtitle,
			qrSubtitle:     c.qrSubtitle,
		}

	default:
		c.logger.Warn("token decode failed",
			slog.String("reason", string(decoded.Reason)),
		)
		next = errorEvent{message: truncateMessage(c.errorText), icon: c.errorIcon}
	}
	notify = c.apply(next)
	c.mu.Unlock()
	notify()
}

// ShowError displays an explicit error, overriding whatever is currently
// shown and canceling any active timers. Messages beyond the maximum length
// are truncated with an ellipsis marker.
func (c *Controller) ShowError(message, icon string) {
	c.mu.Lock()
	notify := c.apply(errorEvent{message: truncateMessage(message), icon: icon})
	c.mu.Unlock()
	notify()
}

// Toggle flips a rotating view between the rotating code and its static
// fallback. Flipping back recomputes the rotating payload immediately, so a
// stale value is never shown. Outside the rotating state it is a no-op.
func (c *Controller) Toggle() {
	if c.toggleDisabled {
		return
	}

	c.mu.Lock()
	var fresh string
	if c.state.Kind == KindRotating && c.state.ToggledToStatic {
		// Flipping back to the rotating code: recompute now.
		fresh = c.recomputeLocked()
	}
	notify := c.apply(toggleEvent{payload: fresh})
	c.mu.Unlock()
	notify()
}

// SetSubtitles updates the subtitle texts used by the static and rotating
// states. The update applies to the currently visible state as well as any
// state entered later.
func (c *Controller) SetSubtitles(pdf417Text, qrText string) {
	c.mu.Lock()
	c.pdf417Subtitle = pdf417Text
	c.qrSubtitle = qrText
	notify := c.apply(subtitlesEvent{pdf417: pdf417Text, qr: qrText})
	c.mu.Unlock()
	notify()
}

// RequestClockSync starts a background clock sync. Safe to call repeatedly.
func (c *Controller) RequestClockSync(ctx context.Context) {
	c.clock.RequestSync(ctx)
}

// Close cancels all pending timers. The controller must not be used after
// Close; a closed controller leaks no periodic work.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	c.stopTimersLocked()
}

// apply runs one transition under the held lock, reconciles timers against
// the new state and returns the notification callback to run after the lock
// is released. Every applied event advances the state generation, which is
// what invalidates already-fired-but-waiting timer callbacks.
func (c *Controller) apply(ev event) func() {
	oldState := c.state
	newState := transition(oldState, ev)
	c.state = newState
	c.generation++
	c.syncTimersLocked()

	onState := c.onState
	onError := c.onError
	enteredError := newState.Kind == KindError
	return func() {
		if onState != nil {
			onState(newState)
		}
		if enteredError && onError != nil {
			onError(newState)
		}
	}
}

// syncTimersLocked re-arms timers for the current state: a periodic refresh
// while the rotating code is visible, a single-shot auto-revert while the
// static fallback is toggled on, nothing otherwise.
func (c *Controller) syncTimersLocked() {
	c.stopTimersLocked()
	if c.closed {
		return
	}

	gen := c.generation
	switch {
	case c.state.Kind == KindRotating && !c.state.ToggledToStatic:
		c.refreshTimer = time.AfterFunc(c.refreshInterval, func() { c.onRefresh(gen) })
	case c.state.Kind == KindRotating && c.state.ToggledToStatic:
		c.revertTimer = time.AfterFunc(c.revertDelay, func() { c.onRevert(gen) })
	}
}

func (c *Controller) stopTimersLocked() {
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	if c.revertTimer != nil {
		c.revertTimer.Stop()
		c.revertTimer = nil
	}
}

// onRefresh is the periodic tick. A failed recomputation keeps the previous
// payload on screen and retries on the next tick.
func (c *Controller) onRefresh(gen uint64) {
	c.mu.Lock()
	if c.generation != gen || c.closed {
		c.mu.Unlock()
		return
	}

	value := c.recomputeLocked()
	if value == "" {
		// Keep the last-known-good payload and rearm the timer.
		c.generation++
		c.syncTimersLocked()
		c.mu.Unlock()
		return
	}

	notify := c.apply(refreshEvent{payload: value})
	c.mu.Unlock()
	notify()
}

// onRevert is the auto-revert timer flipping the static toggle back off.
func (c *Controller) onRevert(gen uint64) {
	c.mu.Lock()
	if c.generation != gen || c.closed {
		c.mu.Unlock()
		return
	}

	notify := c.apply(revertEvent{payload: c.recomputeLocked()})
	c.mu.Unlock()
	notify()
}

// recomputeLocked derives the current rotating payload for the assigned
// token, or "" when derivation is impossible.
func (c *Controller) recomputeLocked() string {
	if c.tok == nil || !c.tok.Rotating() {
		return ""
	}
	value, err := c.computeRotating(c.tok)
	if err != nil {
		c.logger.Warn("rotating payload refresh failed", slog.Any("error", err))
		return ""
	}
	return value
}

// computeRotating derives TOTP codes at the synced current instant and
// composes the rotating payload.
func (c *Controller) computeRotating(tok *token.SecureToken) (string, error) {
	now := c.clock.Now()

	customerCode, err := totp.Generate(tok.CustomerKey, now)
	if err != nil {
		return "", err
	}

	var eventCode *totp.Code
	if tok.HasEventKey() {
		code, err := totp.Generate(tok.EventKey, now)
		if err != nil {
			return "", err
		}
		eventCode = &code
	}

	composed, err := payload.Compose(tok, customerCode, eventCode)
	if err != nil {
		return "", err
	}
	return composed.Value, nil
}
