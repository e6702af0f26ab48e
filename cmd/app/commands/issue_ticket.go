package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/app"
	"github.com/allisson/entrypass/internal/config"
	"github.com/allisson/entrypass/internal/entry/usecase"
)

// IssueTicketOptions holds the parameters of the issue-ticket command.
type IssueTicketOptions struct {
	EventID  string
	Barcode  string
	Section  string
	RowLabel string
	Seat     string
	Rotating bool
	Format   string
}

// RunIssueTicket issues a ticket for an event and prints its ID and opaque
// secure token. The token is the only place the plaintext keys ever appear,
// hand it to the ticket holder's device.
func RunIssueTicket(ctx context.Context, opts IssueTicketOptions) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	eventID, err := uuid.Parse(opts.EventID)
	if err != nil {
		return fmt.Errorf("invalid event-id: %w", err)
	}

	entryUseCase, err := container.EntryUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize entry use case: %w", err)
	}

	ticket, err := entryUseCase.IssueTicket(ctx, usecase.IssueTicketInput{
		EventID:  eventID,
		Section:  opts.Section,
		RowLabel: opts.RowLabel,
		Seat:     opts.Seat,
		Barcode:  opts.Barcode,
		Rotating: opts.Rotating,
	})
	if err != nil {
		return fmt.Errorf("failed to issue ticket: %w", err)
	}

	out := DefaultIO()
	output := map[string]any{
		"id":       ticket.ID.String(),
		"event_id": ticket.EventID.String(),
		"rotating": ticket.Rotating(),
		"token":    ticket.Token,
	}
	return writeOutput(out.Writer, opts.Format, output, func(w io.Writer) {
		fmt.Fprintf(w, "Ticket issued\n")
		fmt.Fprintf(w, "ID:       %s\n", ticket.ID)
		fmt.Fprintf(w, "Event ID: %s\n", ticket.EventID)
		fmt.Fprintf(w, "Rotating: %t\n", ticket.Rotating())
		fmt.Fprintf(w, "Token:    %s\n", ticket.Token)
	})
}
