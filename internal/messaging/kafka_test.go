package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/veltra/mixfeed/pkg/models"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	users []uuid.UUID
	err   error
}

func (r *recordingInvalidator) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return r.err
}

func testConsumer(invalidator Invalidator) *InteractionConsumer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &InteractionConsumer{
		invalidator: invalidator,
		logger:      logger,
		lastSeen:    make(map[uuid.UUID]time.Time),
	}
}

func eventPayload(t *testing.T, userID uuid.UUID) []byte {
	t.Helper()
	payload, err := json.Marshal(InteractionEvent{
		UserID:     userID,
		ItemID:     uuid.New(),
		Kind:       models.InteractionLike,
		OccurredAt: time.Now(),
	})
	assert.NoError(t, err)
	return payload
}

func TestInteractionConsumer_InvalidatesOnEvent(t *testing.T) {
	invalidator := &recordingInvalidator{}
	c := testConsumer(invalidator)
	userID := uuid.New()

	c.handle(context.Background(), eventPayload(t, userID))

	assert.Equal(t, []uuid.UUID{userID}, invalidator.users)
}

func TestInteractionConsumer_DebouncesBursts(t *testing.T) {
	invalidator := &recordingInvalidator{}
	c := testConsumer(invalidator)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		c.handle(context.Background(), eventPayload(t, userID))
	}

	assert.Len(t, invalidator.users, 1)
}

func TestInteractionConsumer_DistinctUsersNotDebounced(t *testing.T) {
	invalidator := &recordingInvalidator{}
	c := testConsumer(invalidator)

	c.handle(context.Background(), eventPayload(t, uuid.New()))
	c.handle(context.Background(), eventPayload(t, uuid.New()))

	assert.Len(t, invalidator.users, 2)
}

func TestInteractionConsumer_MalformedPayloadSkipped(t *testing.T) {
	invalidator := &recordingInvalidator{}
	c := testConsumer(invalidator)

	c.handle(context.Background(), []byte("{not json"))
	c.handle(context.Background(), []byte(`{"item_id":"`+uuid.New().String()+`"}`))

	assert.Empty(t, invalidator.users)
}

func TestInteractionConsumer_DebounceWindowExpires(t *testing.T) {
	c := testConsumer(&recordingInvalidator{})
	userID := uuid.New()
	now := time.Now()

	assert.True(t, c.shouldInvalidate(userID, now))
	assert.False(t, c.shouldInvalidate(userID, now.Add(30*time.Second)))
	assert.True(t, c.shouldInvalidate(userID, now.Add(2*time.Minute)))
}
