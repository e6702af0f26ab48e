package dto

import (
	"time"

	"github.com/allisson/entrypass/internal/entry/domain"
)

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	Rotating  bool      `json:"rotating"`
	CreatedAt time.Time `json:"created_at"`
}

// MapEventToResponse converts a domain event to an API response.
func MapEventToResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:        event.ID.String(),
		Name:      event.Name,
		StartsAt:  event.StartsAt,
		Rotating:  event.HasEventKey(),
		CreatedAt: event.CreatedAt,
	}
}

// TicketResponse represents a ticket in API responses.
// The Token field carries the opaque secure token the holder's device needs
// and is only included when the ticket is issued.
type TicketResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Section   string    `json:"section,omitempty"`
	RowLabel  string    `json:"row_label,omitempty"`
	Seat      string    `json:"seat,omitempty"`
	Barcode   string    `json:"barcode"`
	Rotating  bool      `json:"rotating"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MapTicketToIssueResponse converts a domain ticket to an API response for
// issuance, including the secure token.
func MapTicketToIssueResponse(ticket *domain.Ticket) TicketResponse {
	response := MapTicketToGetResponse(ticket)
	response.Token = ticket.Token
	return response
}

// MapTicketToGetResponse converts a domain ticket to an API response without
// the secure token.
func MapTicketToGetResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID.String(),
		EventID:   ticket.EventID.String(),
		Section:   ticket.Section,
		RowLabel:  ticket.RowLabel,
		Seat:      ticket.Seat,
		Barcode:   ticket.Barcode,
		Rotating:  ticket.Rotating(),
		CreatedAt: ticket.CreatedAt,
	}
}

// ListTicketsResponse represents a paginated list of tickets in API responses.
type ListTicketsResponse struct {
	Data []TicketResponse `json:"data"`
}

// MapTicketsToListResponse converts a slice of domain tickets to a list
// response. Secure tokens are never included in listings.
func MapTicketsToListResponse(tickets []*domain.Ticket) ListTicketsResponse {
	data := make([]TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		data = append(data, MapTicketToGetResponse(ticket))
	}

	return ListTicketsResponse{
		Data: data,
	}
}

// VerifyResponse represents a successful payload verification.
type VerifyResponse struct {
	Valid      bool      `json:"valid"`
	TicketID   string    `json:"ticket_id"`
	EventID    string    `json:"event_id"`
	Section    string    `json:"section,omitempty"`
	RowLabel   string    `json:"row_label,omitempty"`
	Seat       string    `json:"seat,omitempty"`
	VerifiedAt time.Time `json:"verified_at"`
}

// MapVerificationToResponse converts a verification result to an API response.
func MapVerificationToResponse(ticket *domain.Ticket, verifiedAt time.Time) VerifyResponse {
	return VerifyResponse{
		Valid:      true,
		TicketID:   ticket.ID.String(),
		EventID:    ticket.EventID.String(),
		Section:    ticket.Section,
		RowLabel:   ticket.RowLabel,
		Seat:       ticket.Seat,
		VerifiedAt: verifiedAt,
	}
}

// TimeResponse carries the server time clients synchronize their rotation
// clocks against.
type TimeResponse struct {
	UnixMS int64 `json:"unix_ms"`
}
