package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/philly/postboard/internal/platform/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements the logger.Logger interface for testing
type mockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(ctx context.Context, msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) getErrors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}

func TestBusSubscribeAndPublish(t *testing.T) {
	bus := eventbus.NewBus(&mockLogger{})
	topic := eventbus.Topic("rows.posts.changed")

	var wg sync.WaitGroup
	wg.Add(2)
	received := make(chan any, 2)
	handler := func(ctx context.Context, event eventbus.Event) error {
		defer wg.Done()
		received <- event.Payload
		return nil
	}
	bus.Subscribe(topic, handler)
	bus.Subscribe(topic, handler)

	bus.Publish(context.Background(), eventbus.Event{Topic: topic, Payload: "INSERT"})
	wg.Wait()
	close(received)

	var payloads []any
	for p := range received {
		payloads = append(payloads, p)
	}
	assert.Equal(t, []any{"INSERT", "INSERT"}, payloads)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := eventbus.NewBus(&mockLogger{})
	topic := eventbus.Topic("rows.posts.changed")

	calls := make(chan struct{}, 4)
	sub := bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		calls <- struct{}{}
		return nil
	})
	require.Equal(t, 1, bus.SubscriberCount(topic))

	sub.Unsubscribe()
	sub.Unsubscribe() // second call is a no-op
	assert.Equal(t, 0, bus.SubscriberCount(topic))

	bus.Publish(context.Background(), eventbus.Event{Topic: topic})
	select {
	case <-calls:
		t.Fatal("handler ran after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusUnsubscribeKeepsOtherHandlers(t *testing.T) {
	bus := eventbus.NewBus(&mockLogger{})
	topic := eventbus.Topic("rows.posts.changed")

	first := bus.Subscribe(topic, func(context.Context, eventbus.Event) error { return nil })
	done := make(chan struct{})
	bus.Subscribe(topic, func(context.Context, eventbus.Event) error {
		close(done)
		return nil
	})

	first.Unsubscribe()
	assert.Equal(t, 1, bus.SubscriberCount(topic))

	bus.Publish(context.Background(), eventbus.Event{Topic: topic})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("remaining handler was not called")
	}
}

func TestBusPublishWithNoSubscribers(t *testing.T) {
	logger := &mockLogger{}
	bus := eventbus.NewBus(logger)

	bus.Publish(context.Background(), eventbus.Event{Topic: "nobody.listens"})

	assert.Empty(t, logger.getErrors())
}

func TestBusPublishWithHandlerError(t *testing.T) {
	logger := &mockLogger{}
	bus := eventbus.NewBus(logger)
	topic := eventbus.Topic("error.event")

	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		return errors.New("handler failed")
	})
	bus.Publish(context.Background(), eventbus.Event{Topic: topic})

	assert.Eventually(t, func() bool {
		errs := logger.getErrors()
		return len(errs) == 1 && errs[0] == "event handler failed"
	}, time.Second, 10*time.Millisecond)
}

func TestBusHandlerContextSurvivesPublisherCancel(t *testing.T) {
	bus := eventbus.NewBus(&mockLogger{})
	topic := eventbus.Topic("rows.posts.changed")

	ctxErr := make(chan error, 1)
	release := make(chan struct{})
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		<-release
		ctxErr <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, eventbus.Event{Topic: topic})
	cancel()
	close(release)

	select {
	case err := <-ctxErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler did not run")
	}
}

func TestBusConcurrentSubscribeAndPublish(t *testing.T) {
	bus := eventbus.NewBus(&mockLogger{})
	topic := eventbus.Topic("concurrent")

	var mu sync.Mutex
	count := 0
	var handled sync.WaitGroup

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(topic, func(context.Context, eventbus.Event) error {
				mu.Lock()
				count++
				mu.Unlock()
				handled.Done()
				return nil
			})
		}()
	}
	wg.Wait()

	handled.Add(10)
	bus.Publish(context.Background(), eventbus.Event{Topic: topic})
	handled.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, count)
}
