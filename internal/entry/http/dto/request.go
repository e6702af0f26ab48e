// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/entrypass/internal/validation"
)

// CreateEventRequest contains the parameters for creating a new event.
type CreateEventRequest struct {
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	// Rotating assigns the event an event-level rotation key.
	Rotating bool `json:"rotating"`
}

// Validate checks if the create event request is valid.
func (r *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// IssueTicketRequest contains the parameters for issuing a ticket.
type IssueTicketRequest struct {
	EventID  string `json:"event_id"`
	Section  string `json:"section"`
	RowLabel string `json:"row_label"`
	Seat     string `json:"seat"`
	Barcode  string `json:"barcode"`
	// Rotating issues the ticket as a rotating credential.
	Rotating bool `json:"rotating"`
}

// Validate checks if the issue ticket request is valid.
func (r *IssueTicketRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EventID,
			validation.Required,
			validation.By(validateUUID),
		),
		validation.Field(&r.Barcode,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Section, validation.Length(0, 64)),
		validation.Field(&r.RowLabel, validation.Length(0, 64)),
		validation.Field(&r.Seat, validation.Length(0, 64)),
	)
}

// VerifyPayloadRequest contains a presented rotating payload.
type VerifyPayloadRequest struct {
	Value string `json:"value"`
}

// Validate checks if the verify payload request is valid.
func (r *VerifyPayloadRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// validateUUID checks that a string field holds a parseable UUID.
func validateUUID(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}
