package bm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"shop-admin/internal/admin-service/adapters/driven/cache"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker struct {
	routingKey string
	published  []any
	err        error
}

func (b *fakeBroker) PublishJSON(ctx context.Context, routingKey string, msg any) error {
	b.routingKey = routingKey
	b.published = append(b.published, msg)
	return b.err
}

func (b *fakeBroker) Consume(ctx context.Context, queueName, bindingKey string, opts ports.ConsumeOptions) (<-chan amqp.Delivery, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBroker) IsAlive() bool { return true }
func (b *fakeBroker) Close() error  { return nil }

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.UsersChangedEvent
}

func (n *recordingNotifier) PublishUsersChanged(ctx context.Context, event models.UsersChangedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// flakyBroker hands out a fresh delivery channel per Consume call and fails
// the calls listed in failOn.
type flakyBroker struct {
	fakeBroker
	mu       sync.Mutex
	calls    int
	failOn   map[int]bool
	channels []chan amqp.Delivery
}

func (b *flakyBroker) Consume(ctx context.Context, queueName, bindingKey string, opts ports.ConsumeOptions) (<-chan amqp.Delivery, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failOn[b.calls] {
		return nil, ErrBrokerClosed
	}
	ch := make(chan amqp.Delivery, 1)
	b.channels = append(b.channels, ch)
	return ch, nil
}

func (b *flakyBroker) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *flakyBroker) channel(i int) chan amqp.Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channels[i]
}

func quietLogger() mylogger.Logger {
	return mylogger.NewWithWriter(io.Discard, mylogger.LevelError)
}

func encode(t *testing.T, event models.UsersChangedEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestConsumerInvalidatesOnForeignEvent(t *testing.T) {
	ctx := context.Background()
	view := cache.NewMemory(time.Minute)
	notifier := &recordingNotifier{}
	c := NewConsumer(ctx, &fakeBroker{}, view, notifier, quietLogger())

	event := models.UsersChangedEvent{EventId: "e1", Type: models.EventUserPointsChanged, UserId: "u1", Points: 5, Origin: "other-instance"}
	require.NoError(t, c.Handle(ctx, encode(t, event)))

	v, _ := view.Version(ctx)
	assert.Equal(t, uint64(1), v)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "u1", notifier.events[0].UserId)
}

func TestConsumerSkipsOwnEvents(t *testing.T) {
	ctx := context.Background()
	view := cache.NewMemory(time.Minute)
	notifier := &recordingNotifier{}
	c := NewConsumer(ctx, &fakeBroker{}, view, notifier, quietLogger())

	event := models.UsersChangedEvent{EventId: "e1", Origin: mylogger.InstanceID()}
	require.NoError(t, c.Handle(ctx, encode(t, event)))

	v, _ := view.Version(ctx)
	assert.Zero(t, v)
	assert.Empty(t, notifier.events)
}

func TestConsumerRejectsGarbage(t *testing.T) {
	c := NewConsumer(context.Background(), &fakeBroker{}, cache.NewMemory(time.Minute), nil, quietLogger())
	assert.Error(t, c.Handle(context.Background(), []byte("{not json")))
}

func TestPublisherRoutesUsersChanged(t *testing.T) {
	broker := &fakeBroker{}
	p := NewPublisher(broker, quietLogger())

	event := models.UsersChangedEvent{EventId: "e1", UserId: "u1"}
	require.NoError(t, p.PublishUsersChanged(context.Background(), event))

	assert.Equal(t, models.RoutingUsersChanged, broker.routingKey)
	require.Len(t, broker.published, 1)
	assert.Equal(t, event, broker.published[0])
}

func TestPublisherReturnsBrokerError(t *testing.T) {
	p := NewPublisher(&fakeBroker{err: ErrBrokerClosed}, quietLogger())
	assert.ErrorIs(t, p.PublishUsersChanged(context.Background(), models.UsersChangedEvent{}), ErrBrokerClosed)
}

func TestConsumerResubscribesAfterChannelLoss(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := &flakyBroker{failOn: map[int]bool{2: true}}
	view := cache.NewMemory(time.Minute)
	notifier := &recordingNotifier{}
	c := NewConsumer(ctx, broker, view, notifier, quietLogger())
	c.retryInterval = 10 * time.Millisecond

	require.NoError(t, c.SubscribeForMessages())
	require.Equal(t, 1, broker.callCount())

	// broker restart: the delivery channel closes, the next attempt fails
	close(broker.channel(0))
	require.Eventually(t, func() bool { return broker.callCount() == 3 }, 2*time.Second, 5*time.Millisecond)

	// missed events are covered by dropping the local view
	require.Eventually(t, func() bool {
		v, _ := view.Version(ctx)
		return v == 1
	}, 2*time.Second, 5*time.Millisecond)

	event := models.UsersChangedEvent{EventId: "e2", UserId: "u1", Origin: "other-instance"}
	broker.channel(1) <- amqp.Delivery{Body: encode(t, event)}
	require.Eventually(t, func() bool { return notifier.count() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestConsumerStopsResubscribingWhenDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	broker := &flakyBroker{failOn: map[int]bool{2: true, 3: true, 4: true, 5: true}}
	c := NewConsumer(ctx, broker, cache.NewMemory(time.Minute), nil, quietLogger())
	c.retryInterval = 10 * time.Millisecond

	require.NoError(t, c.SubscribeForMessages())
	close(broker.channel(0))
	require.Eventually(t, func() bool { return broker.callCount() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)
	settled := broker.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, broker.callCount())
}
