package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/entrypass/internal/entry/domain"
	"github.com/allisson/entrypass/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockEntryUseCase is a mock implementation of EntryUseCase for decorator tests.
type mockEntryUseCase struct {
	mock.Mock
}

func (m *mockEntryUseCase) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEntryUseCase) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEntryUseCase) IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockEntryUseCase) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockEntryUseCase) ListTickets(ctx context.Context, eventID uuid.UUID, offset, limit int) ([]*domain.Ticket, error) {
	args := m.Called(ctx, eventID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *mockEntryUseCase) VerifyPayload(ctx context.Context, value string) (*VerificationResult, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerificationResult), args.Error(1)
}

func (m *mockEntryUseCase) CurrentTime() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func TestNewEntryUseCaseWithMetrics(t *testing.T) {
	decorator := NewEntryUseCaseWithMetrics(&mockEntryUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*EntryUseCase)(nil), decorator)
}

func TestMetricsDecorator_RecordsOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("success status on event creation", func(t *testing.T) {
		next := &mockEntryUseCase{}
		m := &mockBusinessMetrics{}
		decorator := NewEntryUseCaseWithMetrics(next, m)

		event := &domain.Event{ID: uuid.Must(uuid.NewV7()), Name: "Cup Final"}
		input := CreateEventInput{Name: "Cup Final"}

		next.On("CreateEvent", ctx, input).Return(event, nil).Once()
		m.On("RecordOperation", ctx, "entry", "event_create", "success").Once()
		m.On("RecordDuration", ctx, "entry", "event_create", mock.AnythingOfType("time.Duration"), "success").Once()

		got, err := decorator.CreateEvent(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, event, got)
		m.AssertExpectations(t)
	})

	t.Run("error status on failed verification", func(t *testing.T) {
		next := &mockEntryUseCase{}
		m := &mockBusinessMetrics{}
		decorator := NewEntryUseCaseWithMetrics(next, m)

		next.On("VerifyPayload", ctx, "bad-payload").
			Return(nil, domain.ErrVerificationFailed).Once()
		m.On("RecordOperation", ctx, "entry", "payload_verify", "error").Once()
		m.On("RecordDuration", ctx, "entry", "payload_verify", mock.AnythingOfType("time.Duration"), "error").Once()

		_, err := decorator.VerifyPayload(ctx, "bad-payload")
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
		m.AssertExpectations(t)
	})

	t.Run("ticket listing records metrics", func(t *testing.T) {
		next := &mockEntryUseCase{}
		m := &mockBusinessMetrics{}
		decorator := NewEntryUseCaseWithMetrics(next, m)

		eventID := uuid.Must(uuid.NewV7())
		next.On("ListTickets", ctx, eventID, 0, 50).
			Return([]*domain.Ticket{}, nil).Once()
		m.On("RecordOperation", ctx, "entry", "ticket_list", "success").Once()
		m.On("RecordDuration", ctx, "entry", "ticket_list", mock.AnythingOfType("time.Duration"), "success").Once()

		_, err := decorator.ListTickets(ctx, eventID, 0, 50)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("current time passes through without metrics", func(t *testing.T) {
		next := &mockEntryUseCase{}
		m := &mockBusinessMetrics{}
		decorator := NewEntryUseCaseWithMetrics(next, m)

		fixed := time.Unix(1700000010, 0).UTC()
		next.On("CurrentTime").Return(fixed).Once()

		assert.Equal(t, fixed, decorator.CurrentTime())
		m.AssertNotCalled(t, "RecordOperation")
		m.AssertNotCalled(t, "RecordDuration")
	})
}
