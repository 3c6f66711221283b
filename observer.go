// Package plugkit provides Observer pattern interfaces for module lifecycle and
// instrumentation events. Events use the CloudEvents specification.
package plugkit

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEvent is an alias for the CloudEvents Event type for convenience
type CloudEvent = cloudevents.Event

// Event types emitted by modules.
const (
	EventTypeModuleLoaded    = "com.plugkit.module.loaded"
	EventTypeModuleUnloaded  = "com.plugkit.module.unloaded"
	EventTypeWrappingToggled = "com.plugkit.module.wrapping.toggled"
	EventTypeSettingsApplied = "com.plugkit.module.settings.applied"
	EventTypeGuardFailure    = "com.plugkit.guard.failure"
)

// Observer is notified of events it subscribed to.
type Observer interface {
	// OnEvent is called for each matching event. Observers should return
	// quickly; notification is synchronous.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier used for registration tracking.
	ObserverID() string
}

// Subject is something observers can subscribe to.
type Subject interface {
	// RegisterObserver subscribes observer to eventTypes, or to every event
	// when eventTypes is empty.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver is idempotent.
	UnregisterObserver(observer Observer) error

	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// FunctionalObserver adapts a function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer calling handler for each event.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements the Observer interface by calling the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements the Observer interface by returning the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// EventBus is a synchronous Subject. Observers run on the notifying
// goroutine, in registration order; a failing or panicking observer is
// reported to the error handler and does not stop the others.
type EventBus struct {
	mu        sync.RWMutex
	observers []*observerRegistration
	onError   func(observerID string, event cloudevents.Event, err error)
}

// NewEventBus creates an empty bus. onError may be nil.
func NewEventBus(onError func(observerID string, event cloudevents.Event, err error)) *EventBus {
	return &EventBus{onError: onError}
}

// RegisterObserver implements Subject. Registering an ID again replaces the
// earlier registration.
func (b *EventBus) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}
	types := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		types[eventType] = true
	}
	reg := &observerRegistration{observer: observer, eventTypes: types, registeredAt: time.Now()}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.observers {
		if existing.observer.ObserverID() == observer.ObserverID() {
			b.observers[i] = reg
			return nil
		}
	}
	b.observers = append(b.observers, reg)
	return nil
}

// UnregisterObserver implements Subject.
func (b *EventBus) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrObserverNil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = slices.DeleteFunc(b.observers, func(reg *observerRegistration) bool {
		return reg.observer.ObserverID() == observer.ObserverID()
	})
	return nil
}

// NotifyObservers implements Subject.
func (b *EventBus) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("CloudEvent validation failed: %w", err)
	}
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}

	b.mu.RLock()
	regs := slices.Clone(b.observers)
	b.mu.RUnlock()

	for _, reg := range regs {
		if len(reg.eventTypes) > 0 && !reg.eventTypes[event.Type()] {
			continue
		}
		b.deliver(ctx, reg.observer, event)
	}
	return nil
}

func (b *EventBus) deliver(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(observer.ObserverID(), event, fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()
	if err := observer.OnEvent(ctx, event); err != nil {
		b.fail(observer.ObserverID(), event, err)
	}
}

func (b *EventBus) fail(observerID string, event cloudevents.Event, err error) {
	if b.onError != nil {
		b.onError(observerID, event, err)
	}
}

// GetObservers implements Subject.
func (b *EventBus) GetObservers() []ObserverInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	info := make([]ObserverInfo, 0, len(b.observers))
	for _, reg := range b.observers {
		types := make([]string, 0, len(reg.eventTypes))
		for eventType := range reg.eventTypes {
			types = append(types, eventType)
		}
		slices.Sort(types)
		info = append(info, ObserverInfo{
			ID:           reg.observer.ObserverID(),
			EventTypes:   types,
			RegisteredAt: reg.registeredAt,
		})
	}
	return info
}

// NewCloudEvent creates a CloudEvent with a time-ordered id.
func NewCloudEvent(eventType, source string, data any, metadata map[string]any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	for key, value := range metadata {
		event.SetExtension(key, value)
	}
	return event
}

// generateEventID uses UUIDv7, falling back to v4.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
