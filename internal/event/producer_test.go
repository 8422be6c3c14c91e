package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/pkg/breaker"
	pkgkafka "github.com/nimson07/postFlow/pkg/kafka"
	"github.com/nimson07/postFlow/pkg/logger"
)

type sentEvent struct {
	topic string
	event *pkgkafka.Event
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEvent
	err  error
}

func (f *fakeSender) Publish(_ context.Context, topic string, event *pkgkafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEvent{topic: topic, event: event})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testUser() *domain.User {
	return &domain.User{
		ID:            "u-1",
		Email:         "alice@example.com",
		Name:          "Alice",
		Role:          domain.RoleUser,
		PasswordHash:  "secret-hash",
		IsPasswordSet: true,
	}
}

func TestTopics_FollowNamingScheme(t *testing.T) {
	assert.Equal(t, pkgkafka.Topic("user", "created"), TopicUserCreated)
	assert.Equal(t, pkgkafka.Topic("user", "updated"), TopicUserUpdated)
	assert.Equal(t, pkgkafka.Topic("user", "password_set"), TopicUserPasswordSet)
	assert.Equal(t, pkgkafka.Topic("post", "created"), TopicPostCreated)
	assert.Equal(t, pkgkafka.Topic("post", "status_changed"), TopicPostStatusChanged)
}

func TestProducer_PublishUserCreated(t *testing.T) {
	sender := &fakeSender{}
	p := NewProducer(sender, nil, testLogger())

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithUserID(ctx, "admin-1")

	require.NoError(t, p.PublishUserCreated(ctx, testUser()))

	require.Len(t, sender.sent, 1)
	got := sender.sent[0]
	assert.Equal(t, TopicUserCreated, got.topic)
	assert.Equal(t, TopicUserCreated, got.event.EventType)
	assert.Equal(t, "u-1", got.event.AggregateID)
	assert.Equal(t, AggregateTypeUser, got.event.AggregateType)
	assert.Equal(t, SourcePostFlowAPI, got.event.Source)
	assert.Equal(t, "corr-1", got.event.CorrelationID)
	assert.Equal(t, "admin-1", got.event.ActorID)

	var data UserData
	require.NoError(t, json.Unmarshal(got.event.Data, &data))
	assert.Equal(t, UserData{ID: "u-1", Email: "alice@example.com", Name: "Alice", Role: domain.RoleUser, IsPasswordSet: true}, data)
	assert.NotContains(t, string(got.event.Data), "secret-hash")
}

func TestProducer_PublishPasswordSet(t *testing.T) {
	sender := &fakeSender{}
	p := NewProducer(sender, nil, testLogger())

	require.NoError(t, p.PublishPasswordSet(context.Background(), testUser()))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, TopicUserPasswordSet, sender.sent[0].topic)
	assert.Empty(t, sender.sent[0].event.ActorID)

	var data PasswordSetData
	require.NoError(t, json.Unmarshal(sender.sent[0].event.Data, &data))
	assert.Equal(t, "u-1", data.UserID)
	assert.Equal(t, "alice@example.com", data.Email)
}

func TestProducer_PublishPostStatusChanged(t *testing.T) {
	sender := &fakeSender{}
	p := NewProducer(sender, nil, testLogger())

	reason := "spam"
	post := &domain.Post{ID: "p-1", Title: "Hi", Status: domain.PostStatusRejected, RejectionReason: &reason, UserID: "u-1"}

	require.NoError(t, p.PublishPostStatusChanged(context.Background(), post))
	require.NoError(t, p.PublishPostCreated(context.Background(), post))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, TopicPostStatusChanged, sender.sent[0].topic)
	assert.Equal(t, TopicPostCreated, sender.sent[1].topic)

	var data PostData
	require.NoError(t, json.Unmarshal(sender.sent[0].event.Data, &data))
	assert.Equal(t, domain.PostStatusRejected, data.Status)
	require.NotNil(t, data.RejectionReason)
	assert.Equal(t, "spam", *data.RejectionReason)
}

func TestProducer_SenderErrorIsWrapped(t *testing.T) {
	sender := &fakeSender{err: errors.New("leader not available")}
	p := NewProducer(sender, nil, testLogger())

	err := p.PublishUserUpdated(context.Background(), testUser())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish postflow.user.updated event")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_BreakerOpensAfterFailures(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: connection refused")}
	br := breaker.New(breaker.Config{
		Name:         "event-test",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}, testLogger())
	p := NewProducer(sender, br, testLogger())

	for i := 0; i < 2; i++ {
		require.Error(t, p.PublishUserCreated(context.Background(), testUser()))
	}

	sender.err = nil
	err := p.PublishUserCreated(context.Background(), testUser())
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Empty(t, sender.sent)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	ctx := context.Background()

	assert.NoError(t, p.PublishUserCreated(ctx, testUser()))
	assert.NoError(t, p.PublishUserUpdated(ctx, testUser()))
	assert.NoError(t, p.PublishPasswordSet(ctx, testUser()))
	assert.NoError(t, p.PublishPostCreated(ctx, &domain.Post{}))
	assert.NoError(t, p.PublishPostStatusChanged(ctx, &domain.Post{}))
}
