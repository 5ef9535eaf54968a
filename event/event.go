// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	EventQueueSize = 20
)

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// EventBus fans instruction-processing events out to in-process
// subscribers. Delivery blocks per subscriber, so consumers are expected
// to drain their channels promptly.
type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]*channelSubscriber
	metrics     *eventMetrics
	lastSubId   EventSubscriberId
	mu          sync.RWMutex
}

// channelSubscriber wraps a subscriber channel with a close guard.
// Publish delivers outside the bus lock, so a concurrent Unsubscribe or
// Stop must not close the channel while a send is in flight.
// Close is idempotent and safe to call multiple times.
type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{
		ch: make(chan Event, buffer),
	}
}

// Deliver sends the event on the underlying channel, blocking until the
// consumer has room. Events delivered after Close are silently dropped.
func (c *channelSubscriber) Deliver(evt Event) {
	// Hold the read lock across the send so Close waits for in-flight
	// sends before closing the channel
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	c.ch <- evt
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

type eventMetrics struct {
	eventsTotal *prometheus.CounterVec
	subscribers *prometheus.GaugeVec
}

// NewEventBus creates a new EventBus
func NewEventBus(promRegistry prometheus.Registerer) *EventBus {
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]*channelSubscriber),
	}
	if promRegistry != nil {
		promautoFactory := promauto.With(promRegistry)
		e.metrics = &eventMetrics{
			eventsTotal: promautoFactory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "quill_events_total",
					Help: "total events published by type",
				},
				[]string{"type"},
			),
			subscribers: promautoFactory.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "quill_event_subscribers",
					Help: "current count of event subscribers by type",
				},
				[]string{"type"},
			),
		}
	}
	return e
}

// Subscribe allows a consumer to receive events of a particular type via a channel
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	chSub := newChannelSubscriber(EventQueueSize)
	subId := e.lastSubId + 1
	e.lastSubId = subId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]*channelSubscriber)
	}
	e.subscribers[eventType][subId] = chSub
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId, chSub.ch
}

// SubscribeFunc allows a consumer to receive events of a particular type via a callback function
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func(evtCh <-chan Event, handlerFunc EventHandlerFunc) {
		for {
			evt, ok := <-evtCh
			if !ok {
				return
			}
			handlerFunc(evt)
		}
	}(evtCh, handlerFunc)
	return subId
}

// Unsubscribe stops delivery of events for a particular type for an existing subscriber
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	var subToClose *channelSubscriber
	if evtTypeSubs, ok := e.subscribers[eventType]; ok {
		if chSub, ok2 := evtTypeSubs[subId]; ok2 {
			subToClose = chSub
			delete(evtTypeSubs, subId)
			if len(evtTypeSubs) == 0 {
				delete(e.subscribers, eventType)
			}
			if e.metrics != nil {
				e.metrics.subscribers.WithLabelValues(string(eventType)).
					Dec()
			}
		}
	}
	e.mu.Unlock()
	// Close outside the bus lock so an in-flight Publish can finish its
	// send before the channel closes
	if subToClose != nil {
		subToClose.Close()
	}
}

// Publish allows a producer to send an event of a particular type to all subscribers
func (e *EventBus) Publish(eventType EventType, evt Event) {
	// Gather subscribers inside the read lock to avoid a map race
	e.mu.RLock()
	subs := e.subscribers[eventType]
	chSubs := make([]*channelSubscriber, 0, len(subs))
	for _, chSub := range subs {
		chSubs = append(chSubs, chSub)
	}
	e.mu.RUnlock()
	for _, chSub := range chSubs {
		chSub.Deliver(evt)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

// Stop closes all subscriber channels and clears the subscribers map.
// This ensures that SubscribeFunc goroutines exit cleanly during shutdown.
func (e *EventBus) Stop() {
	e.mu.Lock()
	subsCopy := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]*channelSubscriber)
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
	e.mu.Unlock()
	// Close outside the bus lock for the same reason as Unsubscribe
	for _, evtTypeSubs := range subsCopy {
		for _, chSub := range evtTypeSubs {
			chSub.Close()
		}
	}
}
