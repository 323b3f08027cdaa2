package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesEmittedEvents(t *testing.T) {
	b := New()
	_, sub := b.Subscribe()

	b.Emit(WindowCreated, 42)
	b.Emit(WindowFocused, 42)

	events := sub.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, WindowCreated, events[0].Kind)
	assert.Equal(t, WindowFocused, events[1].Kind)
	assert.Less(t, events[0].Seq, events[1].Seq)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	id, sub := b.Subscribe()
	b.Unsubscribe(id)

	b.Emit(WindowCreated, 1)
	assert.Empty(t, sub.Drain())
}

func TestDropsOldestWhenSaturated(t *testing.T) {
	b := New()
	_, sub := b.Subscribe()

	for i := 0; i < Capacity+10; i++ {
		b.Emit(WindowCreated, i)
	}

	events := sub.Drain()
	require.Len(t, events, Capacity)
	assert.Equal(t, 10, events[0].Payload)
	assert.Equal(t, Capacity+9, events[len(events)-1].Payload)
}

func TestWaitUnblocksOnEmit(t *testing.T) {
	b := New()
	_, sub := b.Subscribe()

	go func() {
		b.Emit(WindowCreated, 1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sub.Wait(ctx))
}

func TestEmitWithNoSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Emit(WindowCreated, nil) })
}
