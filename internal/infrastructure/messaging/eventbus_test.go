package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
	})
}

func TestInMemoryEventBus_PublishRoutesByType(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var created, deleted int
	require.NoError(t, bus.Subscribe(shared.EventResultCreated, func(e shared.Event) error {
		created++
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventResultDeleted, func(e shared.Event) error {
		deleted++
		return nil
	}))

	event := shared.NewResultChangedEvent("res-1", "CSC/2020/041", "CSC301", "2023/2024", 72, 4, "B", true, "lect-1")
	require.NoError(t, bus.Publish(event))
	require.NoError(t, bus.Publish(event))

	assert.Equal(t, 2, created)
	assert.Equal(t, 0, deleted)
}

func TestInMemoryEventBus_SubscribeAll(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var seen []shared.EventType
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		seen = append(seen, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewResultChangedEvent("res-1", "CSC/2020/041", "CSC301", "2023/2024", 72, 4, "B", true, "lect-1")))
	require.NoError(t, bus.Publish(shared.NewCarryoverTransitionEvent(shared.EventCarryoverOpened, "co-1", "CSC/2020/041", "CSC301", "2023/2024", "")))

	assert.Equal(t, []shared.EventType{shared.EventResultCreated, shared.EventCarryoverOpened}, seen)
}

func TestInMemoryEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventResultCreated, func(e shared.Event) error {
		return errors.New("projection store down")
	}))

	event := shared.NewResultChangedEvent("res-1", "CSC/2020/041", "CSC301", "2023/2024", 72, 4, "B", true, "lect-1")
	assert.NoError(t, bus.Publish(event))

	snapshot := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalPublished)
	assert.Equal(t, int64(1), snapshot.TotalHandlerExecs)
	assert.Equal(t, 0.0, snapshot.HandlerSuccessRate)
}

func TestInMemoryEventBus_AsyncDeliveryCompletesOnClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 2,
		EnableMetrics:  true,
	})

	var mu sync.Mutex
	handled := 0
	require.NoError(t, bus.Subscribe(shared.EventResultCreated, func(e shared.Event) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	}))

	event := shared.NewResultChangedEvent("res-1", "CSC/2020/041", "CSC301", "2023/2024", 72, 4, "B", true, "lect-1")
	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(event))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 5
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Close())
}

func TestInMemoryEventBus_ClosedBusRejectsPublish(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewResultChangedEvent("res-1", "CSC/2020/041", "CSC301", "2023/2024", 72, 4, "B", true, "lect-1"))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}
