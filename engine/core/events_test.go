package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDispatchOrder(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	first, second := "first", "second"
	require.True(t, bus.Register(EVENT_CODE_RESIZED, first, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string))
		assert.Equal(t, uint32(640), data.U32[0])
		return false
	}))
	require.True(t, bus.Register(EVENT_CODE_RESIZED, second, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string))
		return true
	}))

	handled := bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{U32: [4]uint32{640, 480}})
	assert.True(t, handled)
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.False(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}), "no listeners")
}

func TestEventBusRegistration(t *testing.T) {
	bus := NewEventBus()
	fn := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return true }

	require.True(t, bus.Register(EVENT_CODE_APPLICATION_QUIT, "a", fn))
	assert.False(t, bus.Register(EVENT_CODE_APPLICATION_QUIT, "a", fn), "duplicate listener")
	assert.False(t, bus.Register(EVENT_CODE_APPLICATION_QUIT, "b", nil), "nil callback")

	assert.True(t, bus.Unregister(EVENT_CODE_APPLICATION_QUIT, "a"))
	assert.False(t, bus.Unregister(EVENT_CODE_APPLICATION_QUIT, "a"))
	assert.False(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))

	require.True(t, bus.Register(EVENT_CODE_SHADERS_CHANGED, "a", fn))
	bus.Shutdown()
	assert.False(t, bus.Fire(EVENT_CODE_SHADERS_CHANGED, nil, EventContext{}))
}

func TestEventBusUnregisterDuringFire(t *testing.T) {
	bus := NewEventBus()
	var fired int
	require.True(t, bus.Register(EVENT_CODE_APPLICATION_QUIT, "self", func(code SystemEventCode, _, listener interface{}, _ EventContext) bool {
		fired++
		bus.Unregister(code, listener)
		return false
	}))

	bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{})
	bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{})
	assert.Equal(t, 1, fired)
}
