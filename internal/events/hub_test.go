package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/minerdeck/internal/logging"
	"github.com/dm/minerdeck/internal/model"
)

func TestHub_PublishRoutesByName(t *testing.T) {
	h := NewHub(logging.Discard())

	var points, other int
	h.Subscribe(PointsUpdate, func(Event) { points++ })
	h.Subscribe("other", func(Event) { other++ })

	h.Publish(Event{Name: PointsUpdate, Payload: json.RawMessage(`{}`)})
	h.Publish(Event{Name: PointsUpdate, Payload: json.RawMessage(`{}`)})
	h.Publish(Event{Name: "unknown"})

	assert.Equal(t, 2, points)
	assert.Equal(t, 0, other)
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(logging.Discard())

	var n int
	sub := h.Subscribe(PointsUpdate, func(Event) { n++ })
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, 1, h.Subscribers(PointsUpdate))

	h.Publish(Event{Name: PointsUpdate})
	sub.Unsubscribe()
	h.Publish(Event{Name: PointsUpdate})

	assert.Equal(t, 1, n)
	assert.Equal(t, 0, h.Subscribers(PointsUpdate))

	// Second call is a no-op.
	sub.Unsubscribe()
}

func TestHub_UnsubscribeWaitsForInFlightHandler(t *testing.T) {
	h := NewHub(logging.Discard())

	entered := make(chan struct{})
	release := make(chan struct{})
	var after atomic.Int32
	var unsubscribed atomic.Bool

	sub := h.Subscribe(PointsUpdate, func(Event) {
		if unsubscribed.Load() {
			after.Add(1)
		}
		close(entered)
		<-release
	})

	go h.Publish(Event{Name: PointsUpdate})
	<-entered

	done := make(chan struct{})
	go func() {
		sub.Unsubscribe()
		unsubscribed.Store(true)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Unsubscribe returned while handler was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	h.Publish(Event{Name: PointsUpdate})
	assert.Equal(t, int32(0), after.Load())
}

func TestHub_ConcurrentPublishAndUnsubscribe(t *testing.T) {
	h := NewHub(logging.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		sub := h.Subscribe(PointsUpdate, func(Event) {})
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Publish(Event{Name: PointsUpdate})
		}()
		go func() {
			defer wg.Done()
			sub.Unsubscribe()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Subscribers(PointsUpdate))
}

func TestSubscribeJSON(t *testing.T) {
	h := NewHub(logging.Discard())

	var got []model.Points
	SubscribeJSON(h, PointsUpdate, func(p model.Points) { got = append(got, p) })

	h.Publish(Event{Name: PointsUpdate, Payload: json.RawMessage(`{"base":120,"gems":3}`)})
	h.Publish(Event{Name: PointsUpdate, Payload: json.RawMessage(`not json`)})

	require.Len(t, got, 1)
	assert.Equal(t, model.Points{Base: 120, Gems: 3}, got[0])
}
