// Package live fans delivery events out to real-time observers.
package live

import (
	"context"
	"sync"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/geo"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
)

// Event types
const (
	TypeLocation = "location-update"
	TypeStatus   = "status-update"
)

// Event is one message pushed to observers of a delivery.
type Event struct {
	Type           string        `json:"type"`
	DeliveryID     string        `json:"deliveryId"`
	Status         domain.Status `json:"status,omitempty"`
	DriverID       *int64        `json:"driverId,omitempty"`
	DriverLocation *geo.Point    `json:"driverLocation,omitempty"`
	Heading        *float64      `json:"heading,omitempty"`
	At             time.Time     `json:"at"`
}

// Sink receives status events outside the process, e.g. a message broker.
type Sink interface {
	Notify(ctx context.Context, e Event) error
}

const (
	defaultBuffer     = 16
	sinkQueueSize     = 256
	sinkNotifyTimeout = 3 * time.Second
)

// Hub keeps per-delivery subscriber sets. Sends never block: a full subscriber
// buffer drops the event for that subscriber only.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	closed bool

	buffer  int
	logger  logx.Logger
	metrics *metrics.Live

	sinks  []Sink
	sinkQ  chan Event
	sinkWG sync.WaitGroup

	// last driver point per observed delivery, for headings
	lastMu sync.Mutex
	last   map[string]geo.Point
}

// NewHub creates a Hub with the given per-subscriber buffer.
func NewHub(buffer int, logger logx.Logger, m *metrics.Live, sinks ...Sink) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if m == nil {
		m = metrics.NewLive()
	}
	h := &Hub{
		topics:  make(map[string]map[*Subscription]struct{}),
		last:    make(map[string]geo.Point),
		buffer:  buffer,
		logger:  logger,
		metrics: m,
	}
	for _, s := range sinks {
		if s != nil {
			h.sinks = append(h.sinks, s)
		}
	}
	if len(h.sinks) > 0 {
		h.sinkQ = make(chan Event, sinkQueueSize)
		h.sinkWG.Add(1)
		go h.runSinks()
	}
	return h
}

// Subscribe registers an observer of one delivery. Only events published after
// this call are delivered.
func (h *Hub) Subscribe(deliveryID string) *Subscription {
	sub := &Subscription{
		hub:        h,
		deliveryID: deliveryID,
		ch:         make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.closeOnce.Do(func() { close(sub.ch) })
		return sub
	}
	set, ok := h.topics[deliveryID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.topics[deliveryID] = set
	}
	set[sub] = struct{}{}
	h.metrics.Subscribers.Inc()
	return sub
}

// Subscribers returns the number of open subscriptions for a delivery.
func (h *Hub) Subscribers(deliveryID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[deliveryID])
}

// PublishLocation fans out a driver position. When the delivery had an earlier
// point while observed, the event carries the heading from it.
func (h *Hub) PublishLocation(deliveryID string, driverID int64, p geo.Point, at time.Time) {
	if h.Subscribers(deliveryID) == 0 {
		h.forget(deliveryID)
		return
	}
	point := p
	id := driverID
	h.publish(Event{
		Type:           TypeLocation,
		DeliveryID:     deliveryID,
		DriverID:       &id,
		DriverLocation: &point,
		Heading:        h.heading(deliveryID, p),
		At:             at,
	})
}

func (h *Hub) heading(deliveryID string, p geo.Point) *float64 {
	h.lastMu.Lock()
	defer h.lastMu.Unlock()
	prev, ok := h.last[deliveryID]
	h.last[deliveryID] = p
	if !ok || prev == p {
		return nil
	}
	deg := geo.BearingDeg(prev, p)
	return &deg
}

func (h *Hub) forget(deliveryID string) {
	h.lastMu.Lock()
	delete(h.last, deliveryID)
	h.lastMu.Unlock()
}

// PublishStatus fans out an accepted transition and forwards it to the sinks.
func (h *Hub) PublishStatus(d domain.Delivery) {
	e := Event{
		Type:       TypeStatus,
		DeliveryID: d.ID,
		Status:     d.Status,
		At:         statusTime(d),
	}
	if d.DriverID != nil {
		id := *d.DriverID
		e.DriverID = &id
	}
	if d.DriverLocation != nil {
		p := *d.DriverLocation
		e.DriverLocation = &p
	}
	h.publish(e)
	h.enqueueSink(e)
}

func (h *Hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	set := h.topics[e.DeliveryID]
	if len(set) == 0 {
		return
	}
	h.metrics.Published.WithLabelValues(e.Type).Inc()
	for sub := range set {
		select {
		case sub.ch <- e:
		default:
			h.metrics.Dropped.Inc()
		}
	}
}

func (h *Hub) enqueueSink(e Event) {
	if h.sinkQ == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.sinkQ <- e:
	default:
		h.metrics.SinkFailures.Inc()
		h.logger.Warn("sink queue full, status event dropped",
			logx.String("event", "live_sink_dropped"),
			logx.String("delivery_id", e.DeliveryID),
		)
	}
}

func (h *Hub) runSinks() {
	defer h.sinkWG.Done()
	for e := range h.sinkQ {
		for _, s := range h.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkNotifyTimeout)
			err := s.Notify(ctx, e)
			cancel()
			if err != nil {
				h.metrics.SinkFailures.Inc()
				h.logger.Warn("sink notify failed",
					logx.String("event", "live_sink_failed"),
					logx.String("delivery_id", e.DeliveryID),
					logx.Err(err),
				)
			}
		}
	}
}

// Close ends every subscription and drains queued sink events.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for id, set := range h.topics {
		for sub := range set {
			sub.closeOnce.Do(func() { close(sub.ch) })
			h.metrics.Subscribers.Dec()
		}
		delete(h.topics, id)
	}
	if h.sinkQ != nil {
		close(h.sinkQ)
	}
	h.mu.Unlock()
	h.sinkWG.Wait()
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.topics[sub.deliveryID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.topics, sub.deliveryID)
		h.forget(sub.deliveryID)
	}
	h.metrics.Subscribers.Dec()
	sub.closeOnce.Do(func() { close(sub.ch) })
}

// statusTime picks the stamp recorded for the delivery's current status.
func statusTime(d domain.Delivery) time.Time {
	if stamp := d.StampFor(d.Status); stamp != nil && *stamp != nil {
		return **stamp
	}
	if d.Status == domain.StatusPending {
		return d.CreatedAt
	}
	return time.Now().UTC()
}

// Subscription is one observer's stream of events.
type Subscription struct {
	hub        *Hub
	deliveryID string
	ch         chan Event
	closeOnce  sync.Once
}

// Events returns the stream. It is closed by Close or on hub shutdown.
func (s *Subscription) Events() <-chan Event { return s.ch }

// DeliveryID returns the observed delivery.
func (s *Subscription) DeliveryID() string { return s.deliveryID }

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() { s.hub.unsubscribe(s) }
