package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"harrys-team/backend/internal/datastore"
)

// ContactNotifier announces new contact form submissions.
type ContactNotifier interface {
	NotifyContactMessage(ctx context.Context, msg *datastore.ContactMessage) error
	Close() error
}

// ContactMessageEvent is the JSON value published for each submission.
type ContactMessageEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

const contactMessageCreated = "contact_message.created"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes one message per submission, keyed by message id.
// Writes are synchronous so the request sees the result.
type KafkaNotifier struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaNotifier(brokers []string, topic string, logger *zap.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	logger.Info("kafka notifier initialized", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &KafkaNotifier{writer: writer, logger: logger}
}

func (n *KafkaNotifier) NotifyContactMessage(ctx context.Context, msg *datastore.ContactMessage) error {
	value, err := json.Marshal(ContactMessageEvent{
		Type:      contactMessageCreated,
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode contact message event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := n.writer.WriteMessages(ctx, kafka.Message{Key: []byte(msg.ID), Value: value}); err != nil {
		return fmt.Errorf("failed to publish contact message %s: %w", msg.ID, err)
	}
	n.logger.Debug("contact message published", zap.String("id", msg.ID))
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) NotifyContactMessage(context.Context, *datastore.ContactMessage) error { return nil }

func (NopNotifier) Close() error { return nil }
