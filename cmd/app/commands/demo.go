package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allisson/entrypass/internal/clock"
	"github.com/allisson/entrypass/internal/display"
)

// RunDemo drives the display state machine with the given secure token,
// printing every state change. The clock syncs against the server time
// endpoint in the background, so rotating codes stay correct even when the
// local clock is skewed. Runs until the duration elapses or an interrupt
// arrives.
func RunDemo(ctx context.Context, tokenString, timeURL string, duration time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	clk := clock.NewSyncedClock(clock.NewHTTPTimeSource(timeURL), logger)

	out := DefaultIO()
	controller := display.NewController(clk, logger,
		display.WithStateHandler(func(state display.State) {
			switch state.Kind {
			case display.KindError:
				fmt.Fprintf(out.Writer, "[%s] error: %s\n", state.Kind, state.Message)
			case display.KindStatic, display.KindRotating:
				fmt.Fprintf(out.Writer, "[%s] %s\n", state.Kind, state.VisiblePayload())
			default:
				fmt.Fprintf(out.Writer, "[%s]\n", state.Kind)
			}
		}),
	)
	defer controller.Close()

	controller.RequestClockSync(ctx)
	controller.AssignToken(tokenString)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(duration):
	}

	final := controller.State()
	if final.Kind == display.KindError {
		return fmt.Errorf("display ended in error state: %s", final.Message)
	}
	return nil
}
