package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"vinsync/internal/logger"
)

// Event announces a canonical entity landing on the remote platform.
type Event struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	ShopifyID string    `json:"shopify_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits sync events onto the broker so downstream consumers can
// react to entities going live. A nil Publisher drops events silently,
// which is the configuration when no brokers are set.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers []string, topic string, log *logger.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
	}
	return &Publisher{writer: writer, logger: log}
}

// Publish is best effort: a broker failure is logged and never fails the
// sync that produced the event.
func (p *Publisher) Publish(entityType, key, shopifyID string) {
	if p == nil {
		return
	}

	event := Event{
		Type:      entityType + ".synced",
		Key:       key,
		ShopifyID: shopifyID,
		Timestamp: time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		p.logger.Error("Failed to publish event: %v", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
