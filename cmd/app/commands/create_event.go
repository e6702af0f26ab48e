package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/allisson/entrypass/internal/app"
	"github.com/allisson/entrypass/internal/config"
	"github.com/allisson/entrypass/internal/entry/usecase"
)

// RunCreateEvent creates an event and prints it in the requested format. An
// empty startsAt defaults to the current time.
func RunCreateEvent(ctx context.Context, name, startsAt string, rotating bool, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	startTime := time.Now().UTC()
	if startsAt != "" {
		parsed, err := time.Parse(time.RFC3339, startsAt)
		if err != nil {
			return fmt.Errorf("invalid starts-at value (expected RFC3339): %w", err)
		}
		startTime = parsed
	}

	entryUseCase, err := container.EntryUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize entry use case: %w", err)
	}

	event, err := entryUseCase.CreateEvent(ctx, usecase.CreateEventInput{
		Name:     name,
		StartsAt: startTime,
		Rotating: rotating,
	})
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	out := DefaultIO()
	output := map[string]any{
		"id":        event.ID.String(),
		"name":      event.Name,
		"starts_at": event.StartsAt.Format(time.RFC3339),
		"rotating":  event.HasEventKey(),
	}
	return writeOutput(out.Writer, format, output, func(w io.Writer) {
		fmt.Fprintf(w, "Event created\n")
		fmt.Fprintf(w, "ID:        %s\n", event.ID)
		fmt.Fprintf(w, "Name:      %s\n", event.Name)
		fmt.Fprintf(w, "Starts at: %s\n", event.StartsAt.Format(time.RFC3339))
		fmt.Fprintf(w, "Rotating:  %t\n", event.HasEventKey())
	})
}
