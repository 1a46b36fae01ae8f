package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handlers")
	}
}

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewWithConfig(2, 10)
	defer bus.Close(context.Background())

	var wg sync.WaitGroup
	var mu sync.Mutex
	var typed, all []EventType

	wg.Add(3)
	bus.Subscribe(EventTypeButtonTap, func(e Event) {
		mu.Lock()
		typed = append(typed, e.Type)
		mu.Unlock()
		wg.Done()
	})
	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		all = append(all, e.Type)
		mu.Unlock()
		wg.Done()
	})

	bus.Publish(NewEvent(EventTypeButtonTap, nil))
	bus.Publish(Event{Type: EventTypeBrightnessChanged, Data: map[string]interface{}{"brightness": 50}})
	waitFor(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	if len(typed) != 1 || typed[0] != EventTypeButtonTap {
		t.Errorf("typed handler got %v", typed)
	}
	if len(all) != 2 {
		t.Errorf("wildcard handler got %v", all)
	}
}

func TestBus_StampsTime(t *testing.T) {
	bus := NewWithConfig(1, 1)
	defer bus.Close(context.Background())

	got := make(chan Event, 1)
	bus.Subscribe(EventTypeColorModeChanged, func(e Event) { got <- e })
	bus.Publish(Event{Type: EventTypeColorModeChanged})

	select {
	case e := <-got:
		if e.Time.IsZero() {
			t.Error("event time should be set on publish")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_HandlerPanicDoesNotKillWorker(t *testing.T) {
	bus := NewWithConfig(1, 10)
	defer bus.Close(context.Background())

	got := make(chan struct{}, 1)
	bus.Subscribe(EventTypeButtonTap, func(Event) { panic("boom") })
	bus.Subscribe(EventTypeButtonLongPress, func(Event) { got <- struct{}{} })

	bus.Publish(NewEvent(EventTypeButtonTap, nil))
	bus.Publish(NewEvent(EventTypeButtonLongPress, nil))

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after panic")
	}
}

func TestBus_PublishAfterCloseIsDropped(t *testing.T) {
	bus := NewWithConfig(1, 1)
	called := false
	bus.Subscribe(EventTypeButtonTap, func(Event) { called = true })

	bus.Close(context.Background())
	bus.Close(context.Background())
	bus.Publish(NewEvent(EventTypeButtonTap, nil))

	if called {
		t.Error("handler ran after close")
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewWithConfig(1, 1)
	defer bus.Close(context.Background())

	bus.Subscribe(EventTypeButtonTap, func(Event) {})
	bus.SubscribeAll(func(Event) {})
	bus.Clear()

	bus.mu.RLock()
	defer bus.mu.RUnlock()
	if len(bus.handlers) != 0 || len(bus.any) != 0 {
		t.Error("Clear should remove all handlers")
	}
}
