package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundgate/internal/pkg/events"
	"fundgate/internal/service/notification/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type memRepo struct {
	saved map[string]*domain.Notification
	err   error
}

func (m *memRepo) Save(ctx context.Context, n *domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = map[string]*domain.Notification{}
	}
	if _, ok := m.saved[n.ID]; !ok {
		m.saved[n.ID] = n
	}
	return nil
}

func TestDeliverStoresNotification(t *testing.T) {
	repo := &memRepo{}
	svc := NewNotificationService(repo, noop.NewTracerProvider().Tracer("test"))
	e := events.New("deposit.approved", "user-1", "", "Your deposit was approved", nil, time.Now())

	require.NoError(t, svc.Deliver(context.Background(), e))
	require.NoError(t, svc.Deliver(context.Background(), e))

	require.Len(t, repo.saved, 1)
	n := repo.saved[e.ID]
	assert.Equal(t, "user-1", n.UserID)
	assert.Equal(t, "deposit.approved", n.Title, "title falls back to the event type")
	assert.False(t, n.IsRead)
}

func TestDeliverPropagatesStoreFailure(t *testing.T) {
	svc := NewNotificationService(&memRepo{err: errors.New("db down")}, noop.NewTracerProvider().Tracer("test"))
	err := svc.Deliver(context.Background(), events.New("withdrawal.requested", "u", "t", "m", nil, time.Now()))
	assert.EqualError(t, err, "db down")
}
