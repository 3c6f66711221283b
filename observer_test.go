package plugkit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCloudEvent(t *testing.T) {
	event := NewCloudEvent(EventTypeModuleLoaded, "plugkit/sample", map[string]any{"module": "sample"}, map[string]any{"tenant": "t1"})

	require.NoError(t, event.Validate())
	assert.Equal(t, EventTypeModuleLoaded, event.Type())
	assert.Equal(t, "plugkit/sample", event.Source())
	assert.Equal(t, "t1", event.Extensions()["tenant"])

	id, err := uuid.Parse(event.ID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	var data map[string]any
	require.NoError(t, event.DataAs(&data))
	assert.Equal(t, "sample", data["module"])
}

func TestEventBusFiltersByType(t *testing.T) {
	bus := NewEventBus(nil)
	var all, loaded []string

	require.NoError(t, bus.RegisterObserver(NewFunctionalObserver("all", func(ctx context.Context, event CloudEvent) error {
		all = append(all, event.Type())
		return nil
	})))
	require.NoError(t, bus.RegisterObserver(NewFunctionalObserver("loaded", func(ctx context.Context, event CloudEvent) error {
		loaded = append(loaded, event.Type())
		return nil
	}), EventTypeModuleLoaded))

	require.NoError(t, bus.NotifyObservers(context.Background(), NewCloudEvent(EventTypeModuleLoaded, "test", nil, nil)))
	require.NoError(t, bus.NotifyObservers(context.Background(), NewCloudEvent(EventTypeModuleUnloaded, "test", nil, nil)))

	assert.Equal(t, []string{EventTypeModuleLoaded, EventTypeModuleUnloaded}, all)
	assert.Equal(t, []string{EventTypeModuleLoaded}, loaded)
}

func TestEventBusRecoversFailingObservers(t *testing.T) {
	var failures []string
	bus := NewEventBus(func(observerID string, event CloudEvent, err error) {
		failures = append(failures, observerID+": "+err.Error())
	})
	reached := false

	_ = bus.RegisterObserver(NewFunctionalObserver("panics", func(context.Context, CloudEvent) error { panic("bad observer") }))
	_ = bus.RegisterObserver(NewFunctionalObserver("errors", func(context.Context, CloudEvent) error { return errors.New("nope") }))
	_ = bus.RegisterObserver(NewFunctionalObserver("fine", func(context.Context, CloudEvent) error {
		reached = true
		return nil
	}))

	require.NoError(t, bus.NotifyObservers(context.Background(), NewCloudEvent(EventTypeGuardFailure, "test", nil, nil)))

	assert.True(t, reached)
	assert.Equal(t, []string{"panics: operation panicked: bad observer", "errors: nope"}, failures)
}

func TestEventBusRegistration(t *testing.T) {
	bus := NewEventBus(nil)
	observer := NewFunctionalObserver("o", func(context.Context, CloudEvent) error { return nil })

	require.NoError(t, bus.RegisterObserver(observer, EventTypeWrappingToggled, EventTypeModuleLoaded))
	require.NoError(t, bus.RegisterObserver(observer, EventTypeSettingsApplied))

	infos := bus.GetObservers()
	require.Len(t, infos, 1)
	assert.Equal(t, "o", infos[0].ID)
	assert.Equal(t, []string{EventTypeSettingsApplied}, infos[0].EventTypes)

	require.NoError(t, bus.UnregisterObserver(observer))
	require.NoError(t, bus.UnregisterObserver(observer))
	assert.Empty(t, bus.GetObservers())

	assert.ErrorIs(t, bus.RegisterObserver(nil), ErrObserverNil)
}

func TestEventBusRejectsInvalidEvents(t *testing.T) {
	bus := NewEventBus(nil)
	err := bus.NotifyObservers(context.Background(), CloudEvent{})
	assert.Error(t, err)
}
