package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/entrypass/internal/entry/domain"
	"github.com/allisson/entrypass/internal/entry/http/dto"
	"github.com/allisson/entrypass/internal/entry/usecase"
)

// MockEntryUseCase is a mock implementation of usecase.EntryUseCase
type MockEntryUseCase struct {
	mock.Mock
}

func (m *MockEntryUseCase) CreateEvent(ctx context.Context, input usecase.CreateEventInput) (*domain.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEntryUseCase) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEntryUseCase) IssueTicket(ctx context.Context, input usecase.IssueTicketInput) (*domain.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockEntryUseCase) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockEntryUseCase) ListTickets(ctx context.Context, eventID uuid.UUID, offset, limit int) ([]*domain.Ticket, error) {
	args := m.Called(ctx, eventID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockEntryUseCase) VerifyPayload(ctx context.Context, value string) (*usecase.VerificationResult, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VerificationResult), args.Error(1)
}

func (m *MockEntryUseCase) CurrentTime() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// setupTestRouter creates a router with the handler routes registered.
func setupTestRouter(t *testing.T) (*gin.Engine, *MockEntryUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockEntryUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewEntryHandler(mockUseCase, nil, logger)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/v1"))

	return router, mockUseCase
}

func doJSONRequest(t *testing.T, router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEntryHandler_CreateEventHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		startsAt := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC)
		expectedEvent := &domain.Event{
			ID:                eventID,
			Name:              "Cup Final",
			StartsAt:          startsAt,
			EncryptedEventKey: []byte("sealed"),
		}

		mockUseCase.On("CreateEvent", mock.Anything, usecase.CreateEventInput{
			Name:     "Cup Final",
			StartsAt: startsAt,
			Rotating: true,
		}).Return(expectedEvent, nil).Once()

		w := doJSONRequest(t, router, http.MethodPost, "/v1/events", dto.CreateEventRequest{
			Name:     "Cup Final",
			StartsAt: startsAt,
			Rotating: true,
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.EventResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, eventID.String(), response.ID)
		assert.True(t, response.Rotating)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_BlankName", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doJSONRequest(t, router, http.MethodPost, "/v1/events", dto.CreateEventRequest{Name: "  "})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewReader([]byte("{not-json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEntryHandler_GetEventHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		mockUseCase.On("GetEvent", mock.Anything, eventID).
			Return(&domain.Event{ID: eventID, Name: "Cup Final"}, nil).Once()

		w := doJSONRequest(t, router, http.MethodGet, "/v1/events/"+eventID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		mockUseCase.On("GetEvent", mock.Anything, eventID).
			Return(nil, domain.ErrEventNotFound).Once()

		w := doJSONRequest(t, router, http.MethodGet, "/v1/events/"+eventID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doJSONRequest(t, router, http.MethodGet, "/v1/events/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEntryHandler_IssueTicketHandler(t *testing.T) {
	t.Run("Success_RotatingTicket", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		ticketID := uuid.Must(uuid.NewV7())
		expectedTicket := &domain.Ticket{
			ID:                   ticketID,
			EventID:              eventID,
			Section:              "114",
			Barcode:              "9282193842",
			EncryptedCustomerKey: []byte("sealed"),
			Token:                "opaque-token",
		}

		mockUseCase.On("IssueTicket", mock.Anything, usecase.IssueTicketInput{
			EventID:  eventID,
			Section:  "114",
			Barcode:  "9282193842",
			Rotating: true,
		}).Return(expectedTicket, nil).Once()

		w := doJSONRequest(t, router, http.MethodPost, "/v1/tickets", dto.IssueTicketRequest{
			EventID:  eventID.String(),
			Section:  "114",
			Barcode:  "9282193842",
			Rotating: true,
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.TicketResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, ticketID.String(), response.ID)
		assert.Equal(t, "opaque-token", response.Token)
		assert.True(t, response.Rotating)
	})

	t.Run("Error_InvalidEventID", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doJSONRequest(t, router, http.MethodPost, "/v1/tickets", dto.IssueTicketRequest{
			EventID: "not-a-uuid",
			Barcode: "9282193842",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MissingBarcode", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doJSONRequest(t, router, http.MethodPost, "/v1/tickets", dto.IssueTicketRequest{
			EventID: uuid.Must(uuid.NewV7()).String(),
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_DuplicateBarcode", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		mockUseCase.On("IssueTicket", mock.Anything, mock.AnythingOfType("usecase.IssueTicketInput")).
			Return(nil, domain.ErrTicketAlreadyExists).Once()

		w := doJSONRequest(t, router, http.MethodPost, "/v1/tickets", dto.IssueTicketRequest{
			EventID: eventID.String(),
			Barcode: "9282193842",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestEntryHandler_GetTicketHandler(t *testing.T) {
	t.Run("Success_TokenOmitted", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		ticketID := uuid.Must(uuid.NewV7())
		mockUseCase.On("GetTicket", mock.Anything, ticketID).
			Return(&domain.Ticket{
				ID:      ticketID,
				EventID: uuid.Must(uuid.NewV7()),
				Barcode: "9282193842",
				Token:   "opaque-token",
			}, nil).Once()

		w := doJSONRequest(t, router, http.MethodGet, "/v1/tickets/"+ticketID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.TicketResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Empty(t, response.Token)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		ticketID := uuid.Must(uuid.NewV7())
		mockUseCase.On("GetTicket", mock.Anything, ticketID).
			Return(nil, domain.ErrTicketNotFound).Once()

		w := doJSONRequest(t, router, http.MethodGet, "/v1/tickets/"+ticketID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEntryHandler_ListTicketsHandler(t *testing.T) {
	t.Run("Success_DefaultPagination", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		tickets := []*domain.Ticket{
			{ID: uuid.Must(uuid.NewV7()), EventID: eventID, Barcode: "111", Token: "opaque-token-1"},
			{ID: uuid.Must(uuid.NewV7()), EventID: eventID, Barcode: "222", Token: "opaque-token-2"},
		}
		mockUseCase.On("ListTickets", mock.Anything, eventID, 0, 50).
			Return(tickets, nil).Once()

		w := doJSONRequest(t, router, http.MethodGet, "/v1/events/"+eventID.String()+"/tickets", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListTicketsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 2)
		assert.Empty(t, response.Data[0].Token)
		assert.Empty(t, response.Data[1].Token)
	})

	t.Run("Success_CustomPagination", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		mockUseCase.On("ListTickets", mock.Anything, eventID, 10, 5).
			Return([]*domain.Ticket{}, nil).Once()

		w := doJSONRequest(t, router, http.MethodGet,
			"/v1/events/"+eventID.String()+"/tickets?offset=10&limit=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListTicketsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Empty(t, response.Data)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		w := doJSONRequest(t, router, http.MethodGet,
			"/v1/events/"+eventID.String()+"/tickets?limit=500", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "ListTickets")
	})

	t.Run("Error_UnknownEvent", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		eventID := uuid.Must(uuid.NewV7())
		mockUseCase.On("ListTickets", mock.Anything, eventID, 0, 50).
			Return(nil, domain.ErrEventNotFound).Once()

		w := doJSONRequest(t, router, http.MethodGet, "/v1/events/"+eventID.String()+"/tickets", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEntryHandler_VerifyPayloadHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		ticket := &domain.Ticket{
			ID:      uuid.Must(uuid.NewV7()),
			EventID: uuid.Must(uuid.NewV7()),
			Section: "114",
		}
		verifiedAt := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC)

		mockUseCase.On("VerifyPayload", mock.Anything, "token::123456").
			Return(&usecase.VerificationResult{Ticket: ticket, VerifiedAt: verifiedAt}, nil).Once()

		w := doJSONRequest(t, router, http.MethodPost, "/v1/verify", dto.VerifyPayloadRequest{
			Value: "token::123456",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VerifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Valid)
		assert.Equal(t, ticket.ID.String(), response.TicketID)
	})

	t.Run("Error_VerificationFailed", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("VerifyPayload", mock.Anything, "token::000000").
			Return(nil, domain.ErrVerificationFailed).Once()

		w := doJSONRequest(t, router, http.MethodPost, "/v1/verify", dto.VerifyPayloadRequest{
			Value: "token::000000",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_MalformedPayload", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("VerifyPayload", mock.Anything, "garbage").
			Return(nil, domain.ErrMalformedPayload).Once()

		w := doJSONRequest(t, router, http.MethodPost, "/v1/verify", dto.VerifyPayloadRequest{
			Value: "garbage",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_EmptyValue", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doJSONRequest(t, router, http.MethodPost, "/v1/verify", dto.VerifyPayloadRequest{})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEntryHandler_TimeHandler(t *testing.T) {
	router, mockUseCase := setupTestRouter(t)

	now := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC)
	mockUseCase.On("CurrentTime").Return(now).Once()

	w := doJSONRequest(t, router, http.MethodGet, "/v1/time", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.TimeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, now.UnixMilli(), response.UnixMS)
}
