package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/helpers"
	"github.com/yigit/unimag/internal/pkg/websocket"
)

type fakeActivityStore struct {
	entries   []*models.ActivityLog
	err       error
	lastLimit int
}

func (s *fakeActivityStore) Create(_ context.Context, entry *models.ActivityLog) error {
	if s.err != nil {
		return s.err
	}
	entry.ID = int64(len(s.entries) + 1)
	entry.Timestamp = time.Now()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeActivityStore) Recent(_ context.Context, limit int) ([]*models.ActivityLog, error) {
	s.lastLimit = limit
	return s.entries, nil
}

type published struct {
	msgType  string
	data     interface{}
	channels []string
}

type fakePublisher struct {
	messages []published
}

func (p *fakePublisher) Publish(msgType string, data interface{}, channels ...string) {
	p.messages = append(p.messages, published{msgType: msgType, data: data, channels: channels})
}

func TestActivityRecordPublishes(t *testing.T) {
	store := &fakeActivityStore{}
	pub := &fakePublisher{}
	svc := NewActivityService(store, pub, zerolog.Nop())

	entry, err := svc.Record(context.Background(), int64Ptr(3), models.ActionLogin, "User logged in")
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.ID)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, MessageTypeActivity, pub.messages[0].msgType)
	assert.Equal(t, []string{websocket.ChannelAdmin, websocket.ChannelManager}, pub.messages[0].channels)
	assert.Same(t, entry, pub.messages[0].data)

	_, err = svc.Record(context.Background(), nil, "  ", "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestActivityLogSwallowsErrors(t *testing.T) {
	store := &fakeActivityStore{err: errors.New("db down")}
	pub := &fakePublisher{}
	svc := NewActivityService(store, pub, zerolog.Nop())

	id := svc.Log(context.Background(), int64Ptr(1), models.ActionView, "Viewed users")
	assert.Zero(t, id)
	assert.Empty(t, pub.messages)
}

func TestActivityRecentLimits(t *testing.T) {
	store := &fakeActivityStore{}
	svc := NewActivityService(store, nil, zerolog.Nop())

	_, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, store.lastLimit)

	_, err = svc.Recent(context.Background(), 10000)
	require.NoError(t, err)
	assert.Equal(t, helpers.MaxPageSize, store.lastLimit)
}
