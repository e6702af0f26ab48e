// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/entrypass/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "entrypass",
		Usage:   "Rotating secure entry credential service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-event",
				Usage: "Create a new event",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Event name",
					},
					&cli.StringFlag{
						Name:    "starts-at",
						Aliases: []string{"s"},
						Usage:   "Event start time in RFC3339 format (defaults to now)",
					},
					&cli.BoolFlag{
						Name:    "rotating",
						Aliases: []string{"r"},
						Value:   false,
						Usage:   "Assign the event an event-level rotation key",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateEvent(
						ctx,
						cmd.String("name"),
						cmd.String("starts-at"),
						cmd.Bool("rotating"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "issue-ticket",
				Usage: "Issue a ticket and print its secure token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "event-id",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "Event ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "barcode",
						Aliases:  []string{"b"},
						Required: true,
						Usage:    "Static barcode payload",
					},
					&cli.StringFlag{
						Name:  "section",
						Usage: "Seating section",
					},
					&cli.StringFlag{
						Name:  "row",
						Usage: "Seating row label",
					},
					&cli.StringFlag{
						Name:  "seat",
						Usage: "Seat number",
					},
					&cli.BoolFlag{
						Name:    "rotating",
						Aliases: []string{"r"},
						Value:   false,
						Usage:   "Issue as a rotating credential",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunIssueTicket(ctx, commands.IssueTicketOptions{
						EventID:  cmd.String("event-id"),
						Barcode:  cmd.String("barcode"),
						Section:  cmd.String("section"),
						RowLabel: cmd.String("row"),
						Seat:     cmd.String("seat"),
						Rotating: cmd.Bool("rotating"),
						Format:   cmd.String("format"),
					})
				},
			},
			{
				Name:  "demo",
				Usage: "Drive the display state machine with a secure token and print states",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Opaque secure token from issue-ticket",
					},
					&cli.StringFlag{
						Name:  "time-url",
						Value: "http://localhost:8080/v1/time",
						Usage: "Server time endpoint for clock synchronization",
					},
					&cli.DurationFlag{
						Name:    "duration",
						Aliases: []string{"d"},
						Value:   30 * time.Second,
						Usage:   "How long to run the demo",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDemo(
						ctx,
						cmd.String("token"),
						cmd.String("time-url"),
						cmd.Duration("duration"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
