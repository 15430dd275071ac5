package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/repository/memory"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/messaging"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}

func (m *mockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *mockBroker) Close() error { return nil }

type mockEmail struct {
	mock.Mock
}

func (m *mockEmail) SendCustom(ctx context.Context, to, subject, content string) error {
	return m.Called(ctx, to, subject, content).Error(0)
}

func conflictAt(store *memory.Store, opsEmail string, ids ...string) model.Conflict {
	clinic := store.AddClinic("North", opsEmail, "UTC")
	return model.Conflict{
		ClinicID:       clinic.ID,
		Date:           "2024-05-01",
		Provider:       "Dr. Chen",
		Start:          "09:00",
		End:            "09:45",
		AppointmentIDs: ids,
	}
}

func isConflictMessage(c model.Conflict) interface{} {
	return mock.MatchedBy(func(msg messaging.Message) bool {
		got, ok := msg.Payload.(model.Conflict)
		return ok && msg.Type == MessageTypeConflict && got.Key() == c.Key()
	})
}

func TestNotifyConflicts_PublishesAndEmailsOnce(t *testing.T) {
	store := memory.NewStore()
	c := conflictAt(store, "ops@north.test", "a", "b")

	broker := new(mockBroker)
	broker.On("Publish", mock.Anything, ConflictChannel, isConflictMessage(c)).Return(nil).Once()
	mailer := new(mockEmail)
	mailer.On("SendCustom", mock.Anything, "ops@north.test", "1 schedule conflict(s) at North", mock.AnythingOfType("string")).
		Return(nil).Once()

	n := NewService(broker, mailer, store.Clinics(), metrics.New("test"), logger.Nop(), time.Hour)

	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{c}))
	// already announced
	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{c}))

	broker.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestNotifyConflicts_ChangedMembershipIsNew(t *testing.T) {
	store := memory.NewStore()
	c := conflictAt(store, "", "a", "b")
	grown := c
	grown.AppointmentIDs = []string{"a", "b", "c"}

	broker := new(mockBroker)
	broker.On("Publish", mock.Anything, ConflictChannel, mock.Anything).Return(nil).Twice()

	n := NewService(broker, nil, store.Clinics(), metrics.New("test"), logger.Nop(), time.Hour)
	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{c}))
	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{grown}))

	broker.AssertExpectations(t)
}

func TestNotifyConflicts_PublishFailureIsRetried(t *testing.T) {
	store := memory.NewStore()
	c := conflictAt(store, "", "a", "b")

	broker := new(mockBroker)
	broker.On("Publish", mock.Anything, ConflictChannel, mock.Anything).Return(errors.New("breaker open")).Once()
	broker.On("Publish", mock.Anything, ConflictChannel, mock.Anything).Return(nil).Once()

	n := NewService(broker, nil, store.Clinics(), metrics.New("test"), logger.Nop(), time.Hour)

	err := n.NotifyConflicts(context.Background(), []model.Conflict{c})
	assert.ErrorContains(t, err, "breaker open")
	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{c}))

	broker.AssertExpectations(t)
}

func TestNotifyConflicts_EmailFailureIsRetried(t *testing.T) {
	store := memory.NewStore()
	c := conflictAt(store, "ops@north.test", "a", "b")

	mailer := new(mockEmail)
	mailer.On("SendCustom", mock.Anything, "ops@north.test", mock.Anything, mock.Anything).
		Return(errors.New("smtp: 421 try later")).Once()
	mailer.On("SendCustom", mock.Anything, "ops@north.test", mock.Anything, mock.Anything).
		Return(nil).Once()

	n := NewService(nil, mailer, store.Clinics(), metrics.New("test"), logger.Nop(), time.Hour)

	err := n.NotifyConflicts(context.Background(), []model.Conflict{c})
	assert.ErrorContains(t, err, "421")
	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{c}))
	// delivered now, so the next detection is a duplicate
	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{c}))

	mailer.AssertExpectations(t)
	mailer.AssertNumberOfCalls(t, "SendCustom", 2)
}

func TestNotifyConflicts_NoOpsEmailSkipsMail(t *testing.T) {
	store := memory.NewStore()
	c := conflictAt(store, "", "a", "b")
	mailer := new(mockEmail)

	n := NewService(nil, mailer, store.Clinics(), metrics.New("test"), logger.Nop(), time.Hour)
	require.NoError(t, n.NotifyConflicts(context.Background(), []model.Conflict{c}))

	mailer.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConflictBody(t *testing.T) {
	body := conflictBody([]model.Conflict{{
		Date: "2024-05-01", Provider: "Dr. Chen", Start: "09:00", End: "09:45",
		AppointmentIDs: []string{"a", "b"},
	}})
	assert.Contains(t, body, "2024-05-01 09:00-09:45 Dr. Chen: a, b")
}
