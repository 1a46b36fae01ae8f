package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType represents the type of event
type EventType string

const (
	EventTypeTransitionStarted   EventType = "transition_started"
	EventTypeTransitionCompleted EventType = "transition_completed"
	EventTypeBrightnessChanged   EventType = "brightness_changed"
	EventTypeColorModeChanged    EventType = "color_mode_changed"
	EventTypeButtonTap           EventType = "button_tap"
	EventTypeButtonLongPress     EventType = "button_long_press"
)

// AllEventTypes lists every event type the clock publishes.
var AllEventTypes = []EventType{
	EventTypeTransitionStarted,
	EventTypeTransitionCompleted,
	EventTypeBrightnessChanged,
	EventTypeColorModeChanged,
	EventTypeButtonTap,
	EventTypeButtonLongPress,
}

// Default configuration
const (
	DefaultWorkerCount = 4
	DefaultQueueSize   = 100
)

// Event represents an event in the system
type Event struct {
	Type EventType
	Time time.Time
	Data map[string]interface{}
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, data map[string]interface{}) Event {
	return Event{Type: eventType, Time: time.Now(), Data: data}
}

// Handler is a function that handles events
type Handler func(Event)

// work represents a unit of work for the worker pool
type work struct {
	event   Event
	handler Handler
}

// Bus provides event routing with a bounded worker pool
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	any      []Handler

	// Worker pool
	workQueue chan work
	wg        sync.WaitGroup

	// sendMu is held for reading while publishing so Close never closes
	// the work queue under an in-flight send
	sendMu    sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// New creates a new event bus with default settings
func New() *Bus {
	return NewWithConfig(DefaultWorkerCount, DefaultQueueSize)
}

// NewWithConfig creates a new event bus with custom worker count and queue size
func NewWithConfig(workerCount, queueSize int) *Bus {
	b := &Bus{
		handlers:  make(map[EventType][]Handler),
		workQueue: make(chan work, queueSize),
	}

	// Start worker pool
	for i := 0; i < workerCount; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}

	log.Debug().Int("workers", workerCount).Int("queue_size", queueSize).Msg("Event bus worker pool started")
	return b
}

// worker processes events from the work queue
func (b *Bus) worker(id int) {
	defer b.wg.Done()

	for w := range b.workQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("event_type", string(w.event.Type)).
						Int("worker", id).
						Msg("Event handler panicked")
				}
			}()
			w.handler(w.event)
		}()
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler that receives every event.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.any = append(b.any, handler)
}

// Publish sends an event to all subscribed handlers.
// Non-blocking: if the work queue is full or bus is closed, events are dropped.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Type])+len(b.any))
	handlers = append(handlers, b.handlers[event.Type]...)
	handlers = append(handlers, b.any...)
	b.mu.RUnlock()

	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	b.sendMu.RLock()
	defer b.sendMu.RUnlock()

	if b.closed {
		log.Warn().Str("event_type", string(event.Type)).Msg("Event bus closed, dropping event")
		return
	}

	for _, handler := range handlers {
		select {
		case b.workQueue <- work{event: event, handler: handler}:
			// Successfully queued
		default:
			// Queue full - drop event with warning
			log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event bus queue full, dropping event")
		}
	}
}

// Close shuts down the worker pool gracefully.
// Publishers are stopped first, then the work queue is closed and drained.
// Calling Close more than once is safe.
func (b *Bus) Close(ctx context.Context) {
	b.closeOnce.Do(func() {
		b.sendMu.Lock()
		b.closed = true
		close(b.workQueue)
		b.sendMu.Unlock()
	})

	// Wait for workers to finish with timeout
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Debug().Msg("Event bus workers stopped gracefully")
	case <-ctx.Done():
		log.Warn().Msg("Event bus shutdown timed out, some events may be lost")
	}
}

// Clear removes all handlers
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = make(map[EventType][]Handler)
	b.any = nil
}
