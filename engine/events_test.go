package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisher_DeliversToSubscribers(t *testing.T) {
	p := NewEventPublisher()

	var got []Event
	unsub := p.Subscribe(func(ev Event) { got = append(got, ev) })
	defer unsub()

	p.publish(EventHit, "k1", 100)
	p.publish(EventMiss, "k2", 0)

	require.Len(t, got, 2)
	assert.Equal(t, EventHit, got[0].Type)
	assert.Equal(t, "k1", got[0].Key)
	assert.Equal(t, int64(100), got[0].SizeBytes)
	assert.False(t, got[0].At.IsZero())
	assert.Equal(t, EventMiss, got[1].Type)
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	p := NewEventPublisher()

	calls := 0
	unsub := p.Subscribe(func(Event) { calls++ })

	p.publish(EventHit, "k1", 0)
	unsub()
	p.publish(EventHit, "k2", 0)

	assert.Equal(t, 1, calls)
}

func TestEventPublisher_PanickingSubscriberIsolated(t *testing.T) {
	p := NewEventPublisher()

	p.Subscribe(func(Event) { panic("broken subscriber") })
	healthy := 0
	p.Subscribe(func(Event) { healthy++ })

	assert.NotPanics(t, func() { p.publish(EventStore, "k1", 10) })
	assert.Equal(t, 1, healthy)
}

func TestEventPublisher_RecentNewestLast(t *testing.T) {
	p := NewEventPublisher()

	p.publish(EventStore, "a", 1)
	p.publish(EventHit, "b", 2)
	p.publish(EventEvict, "c", 3)

	recent := p.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "a", recent[0].Key)
	assert.Equal(t, "c", recent[2].Key)
}

func TestEventPublisher_RingDropsOldest(t *testing.T) {
	p := NewEventPublisher()

	for i := 0; i < eventHistorySize+10; i++ {
		p.publish(EventHit, fmt.Sprintf("k%d", i), 0)
	}

	recent := p.Recent()
	require.Len(t, recent, eventHistorySize)
	assert.Equal(t, "k10", recent[0].Key)
	assert.Equal(t, fmt.Sprintf("k%d", eventHistorySize+9), recent[len(recent)-1].Key)
}
