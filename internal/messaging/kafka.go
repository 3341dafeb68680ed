// Package messaging consumes user-interaction events and invalidates the
// affected user's cached rankings, so a burst of likes shows up in the
// feed before the TTLs expire.
package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/pkg/models"
)

// InteractionEvent is the wire format published by the interaction
// ingestion service.
type InteractionEvent struct {
	UserID     uuid.UUID              `json:"user_id"`
	ItemID     uuid.UUID              `json:"item_id"`
	Kind       models.InteractionKind `json:"kind"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Invalidator drops a user's cached ranking artifacts.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

// debounceWindow collapses bursts: a user scrolling and liking fires many
// events, one invalidation per window is enough.
const debounceWindow = time.Minute

type InteractionConsumer struct {
	reader      *kafka.Reader
	invalidator Invalidator
	logger      *logrus.Logger

	mu       sync.Mutex
	lastSeen map[uuid.UUID]time.Time
}

func NewInteractionConsumer(cfg *config.Config, invalidator Invalidator, logger *logrus.Logger) *InteractionConsumer {
	return &InteractionConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topics.UserInteractions,
			GroupID:        cfg.Kafka.ConsumerGroup,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		invalidator: invalidator,
		logger:      logger,
		lastSeen:    make(map[uuid.UUID]time.Time),
	}
}

// Run consumes until the context is cancelled. Malformed messages and
// failed invalidations are logged and skipped; the next TTL expiry
// corrects anything missed.
func (c *InteractionConsumer) Run(ctx context.Context) error {
	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.WithError(err).Error("Failed to read interaction event")
			continue
		}
		c.handle(ctx, message.Value)
	}
}

func (c *InteractionConsumer) handle(ctx context.Context, payload []byte) {
	var event InteractionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.WithError(err).Warn("Discarding malformed interaction event")
		return
	}
	if event.UserID == uuid.Nil {
		c.logger.Warn("Discarding interaction event without user id")
		return
	}

	if !c.shouldInvalidate(event.UserID, time.Now()) {
		return
	}

	if err := c.invalidator.InvalidateUser(ctx, event.UserID); err != nil {
		c.logger.WithError(err).WithField("user_id", event.UserID).
			Warn("Interaction-driven invalidation failed")
		return
	}

	c.logger.WithFields(logrus.Fields{
		"user_id": event.UserID,
		"kind":    event.Kind,
	}).Debug("Invalidated cached rankings after interaction")
}

func (c *InteractionConsumer) shouldInvalidate(userID uuid.UUID, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.lastSeen[userID]; ok && now.Sub(last) < debounceWindow {
		return false
	}
	c.lastSeen[userID] = now

	// Trim stale entries opportunistically.
	if len(c.lastSeen) > 10000 {
		for id, last := range c.lastSeen {
			if now.Sub(last) >= debounceWindow {
				delete(c.lastSeen, id)
			}
		}
	}
	return true
}

func (c *InteractionConsumer) Close() error {
	return c.reader.Close()
}
