// Package http provides HTTP handlers for secure entry operations: event and
// ticket management, rotating payload verification and clock synchronization.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/entry/http/dto"
	"github.com/allisson/entrypass/internal/entry/usecase"
	"github.com/allisson/entrypass/internal/httputil"

	customValidation "github.com/allisson/entrypass/internal/validation"
)

// EntryHandler handles HTTP requests for secure entry operations.
type EntryHandler struct {
	entryUseCase usecase.EntryUseCase
	// verifyMiddleware guards the verification endpoint, nil disables it.
	verifyMiddleware gin.HandlerFunc
	logger           *slog.Logger
}

// NewEntryHandler creates a new entry handler with required dependencies.
func NewEntryHandler(
	entryUseCase usecase.EntryUseCase,
	verifyMiddleware gin.HandlerFunc,
	logger *slog.Logger,
) *EntryHandler {
	return &EntryHandler{
		entryUseCase:     entryUseCase,
		verifyMiddleware: verifyMiddleware,
		logger:           logger,
	}
}

// RegisterRoutes registers the entry routes on the versioned API group.
func (h *EntryHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/events", h.CreateEventHandler)
	group.GET("/events/:id", h.GetEventHandler)
	group.GET("/events/:id/tickets", h.ListTicketsHandler)
	group.POST("/tickets", h.IssueTicketHandler)
	group.GET("/tickets/:id", h.GetTicketHandler)
	group.GET("/time", h.TimeHandler)

	if h.verifyMiddleware != nil {
		group.POST("/verify", h.verifyMiddleware, h.VerifyPayloadHandler)
	} else {
		group.POST("/verify", h.VerifyPayloadHandler)
	}
}

// CreateEventHandler creates a new event.
// POST /v1/events
// Returns 201 Created with event metadata.
func (h *EntryHandler) CreateEventHandler(c *gin.Context) {
	var req dto.CreateEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	event, err := h.entryUseCase.CreateEvent(c.Request.Context(), usecase.CreateEventInput{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		Rotating: req.Rotating,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapEventToResponse(event))
}

// GetEventHandler retrieves an event by ID.
// GET /v1/events/:id
func (h *EntryHandler) GetEventHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	event, err := h.entryUseCase.GetEvent(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventToResponse(event))
}

// ListTicketsHandler retrieves an event's tickets with pagination support.
// GET /v1/events/:id/tickets?offset=0&limit=50
// Secure tokens are never included in listings.
func (h *EntryHandler) ListTicketsHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	tickets, err := h.entryUseCase.ListTickets(c.Request.Context(), id, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTicketsToListResponse(tickets))
}

// IssueTicketHandler issues a new ticket for an event.
// POST /v1/tickets
// Returns 201 Created including the opaque secure token. The token carries
// the keys the holder's device needs, treat the response as sensitive.
func (h *EntryHandler) IssueTicketHandler(c *gin.Context) {
	var req dto.IssueTicketRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Validated above
	eventID := uuid.MustParse(req.EventID)

	ticket, err := h.entryUseCase.IssueTicket(c.Request.Context(), usecase.IssueTicketInput{
		EventID:  eventID,
		Section:  req.Section,
		RowLabel: req.RowLabel,
		Seat:     req.Seat,
		Barcode:  req.Barcode,
		Rotating: req.Rotating,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTicketToIssueResponse(ticket))
}

// GetTicketHandler retrieves a ticket by ID, without its secure token.
// GET /v1/tickets/:id
func (h *EntryHandler) GetTicketHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	ticket, err := h.entryUseCase.GetTicket(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTicketToGetResponse(ticket))
}

// VerifyPayloadHandler verifies a presented rotating payload.
// POST /v1/verify
// Returns 200 OK when the payload verifies, 401 when it does not.
func (h *EntryHandler) VerifyPayloadHandler(c *gin.Context) {
	var req dto.VerifyPayloadRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.entryUseCase.VerifyPayload(c.Request.Context(), req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerificationToResponse(result.Ticket, result.VerifiedAt))
}

// TimeHandler returns the server time for client clock synchronization.
// GET /v1/time
func (h *EntryHandler) TimeHandler(c *gin.Context) {
	now := h.entryUseCase.CurrentTime()
	c.JSON(http.StatusOK, dto.TimeResponse{UnixMS: now.UnixMilli()})
}
