package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/pkg/breaker"
	pkgkafka "github.com/nimson07/postFlow/pkg/kafka"
	"github.com/nimson07/postFlow/pkg/logger"
)

// Kafka topic constants for PostFlow domain events.
const (
	TopicUserCreated       = "postflow.user.created"
	TopicUserUpdated       = "postflow.user.updated"
	TopicUserPasswordSet   = "postflow.user.password_set"
	TopicPostCreated       = "postflow.post.created"
	TopicPostStatusChanged = "postflow.post.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeUser = "user"
	AggregateTypePost = "post"
)

// SourcePostFlowAPI identifies events originating from this service.
const SourcePostFlowAPI = "postflow-api"

// UserData is the payload for user.created and user.updated events.
type UserData struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role"`
	IsPasswordSet bool   `json:"is_password_set"`
}

// PasswordSetData is the payload for a user.password_set event.
type PasswordSetData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// PostData is the payload for post.created and post.status_changed events.
type PostData struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	UserID          string  `json:"user_id"`
}

// Publisher is what services need from the event layer. Callers log a
// failed publish and carry on.
type Publisher interface {
	PublishUserCreated(ctx context.Context, user *domain.User) error
	PublishUserUpdated(ctx context.Context, user *domain.User) error
	PublishPasswordSet(ctx context.Context, user *domain.User) error
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishPostStatusChanged(ctx context.Context, post *domain.Post) error
}

// Sender delivers one event envelope to a topic. *pkgkafka.Producer
// satisfies it.
type Sender interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes PostFlow domain events to Kafka.
type Producer struct {
	sender  Sender
	breaker *breaker.Breaker
	logger  *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a new event producer. A nil breaker sends every event
// straight to the broker.
func NewProducer(sender Sender, br *breaker.Breaker, logger *slog.Logger) *Producer {
	return &Producer{
		sender:  sender,
		breaker: br,
		logger:  logger,
	}
}

// PublishUserCreated publishes a user.created event.
func (p *Producer) PublishUserCreated(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserCreated, user.ID, AggregateTypeUser, userData(user))
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserUpdated, user.ID, AggregateTypeUser, userData(user))
}

// PublishPasswordSet publishes a user.password_set event.
func (p *Producer) PublishPasswordSet(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserPasswordSet, user.ID, AggregateTypeUser, PasswordSetData{
		UserID: user.ID,
		Email:  user.Email,
	})
}

// PublishPostCreated publishes a post.created event.
func (p *Producer) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, TopicPostCreated, post.ID, AggregateTypePost, postData(post))
}

// PublishPostStatusChanged publishes a post.status_changed event.
func (p *Producer) PublishPostStatusChanged(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, TopicPostStatusChanged, post.ID, AggregateTypePost, postData(post))
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	var opts []pkgkafka.EventOption
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		opts = append(opts, pkgkafka.WithCorrelationID(id))
	}
	if id := logger.UserIDFromContext(ctx); id != "" {
		opts = append(opts, pkgkafka.WithActor(id))
	}
	event, err := pkgkafka.NewEvent(topic, aggregateType, aggregateID, SourcePostFlowAPI, data, opts...)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	send := func(ctx context.Context) error {
		return p.sender.Publish(ctx, topic, event)
	}
	if p.breaker != nil {
		err = p.breaker.Do(ctx, send)
	} else {
		err = send(ctx)
	}
	if err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

func userData(u *domain.User) UserData {
	return UserData{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		IsPasswordSet: u.IsPasswordSet,
	}
}

func postData(p *domain.Post) PostData {
	return PostData{
		ID:              p.ID,
		Title:           p.Title,
		Status:          p.Status,
		RejectionReason: p.RejectionReason,
		UserID:          p.UserID,
	}
}

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) PublishUserCreated(context.Context, *domain.User) error       { return nil }
func (Noop) PublishUserUpdated(context.Context, *domain.User) error       { return nil }
func (Noop) PublishPasswordSet(context.Context, *domain.User) error       { return nil }
func (Noop) PublishPostCreated(context.Context, *domain.Post) error       { return nil }
func (Noop) PublishPostStatusChanged(context.Context, *domain.Post) error { return nil }
